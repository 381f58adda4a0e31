// internal/app/store/users/fetcher.go
package userstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deskhubhq/deskhub/internal/app/system/auth"
)

// Fetcher adapts the store to auth.UserFetcher so the session middleware can
// re-read the user on every request. A deleted record (member removal) or a
// record re-keyed by sign-in migration yields a nil user, ending the session's
// authority immediately.
type Fetcher struct {
	store *Store
}

func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{store: New(db)}
}

func (f *Fetcher) FetchSessionUser(ctx context.Context, id string) (*auth.SessionUser, error) {
	u, err := f.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	su := &auth.SessionUser{
		ID:    u.ID,
		Name:  u.FullName(),
		Email: u.Email,
		Role:  u.Role,
	}
	if u.Project != nil {
		su.Project = *u.Project
	}
	return su, nil
}
