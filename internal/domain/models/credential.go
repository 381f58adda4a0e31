// internal/domain/models/credential.go
package models

import "time"

// Credential is an identity-provider account: the mapping from an email
// address to a stable auth id and a password hash. The auth id (_id) is
// assigned at creation and never changes for the life of the account.
type Credential struct {
	AuthID       string    `bson:"_id" json:"auth_id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}
