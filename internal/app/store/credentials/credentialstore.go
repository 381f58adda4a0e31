// Package credentialstore is the identity provider backed by the credentials
// collection: it owns email/password accounts and issues auth ids.
package credentialstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deskhubhq/deskhub/internal/app/system/authutil"
	"github.com/deskhubhq/deskhub/internal/app/system/identity"
	"github.com/deskhubhq/deskhub/internal/app/system/normalize"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

// New returns a Store; it satisfies identity.Provider.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("credentials")}
}

var _ identity.Provider = (*Store)(nil)

// CreateAccount registers an email/password account and returns its auth id.
// The unique index on email turns races into identity.ErrEmailInUse.
func (s *Store) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = normalize.Email(email)

	hash, err := authutil.HashPassword(password)
	if err != nil {
		return "", err
	}
	cred := models.Credential{
		AuthID:       uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, cred); err != nil {
		if wafflemongo.IsDup(err) {
			return "", identity.ErrEmailInUse
		}
		return "", err
	}
	return cred.AuthID, nil
}

// SignIn verifies the pair and returns the auth id. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Store) SignIn(ctx context.Context, email, password string) (string, error) {
	var cred models.Credential
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&cred)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", identity.ErrInvalidCredentials
		}
		return "", err
	}
	if !authutil.CheckPassword(password, cred.PasswordHash) {
		return "", identity.ErrInvalidCredentials
	}
	return cred.AuthID, nil
}

// MethodsForEmail reports the sign-in methods registered for an email; this
// provider only ever issues password credentials.
func (s *Store) MethodsForEmail(ctx context.Context, email string) ([]string, error) {
	err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return []string{"password"}, nil
}
