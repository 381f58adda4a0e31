// internal/domain/models/loginhistory.go
package models

import "time"

// SignInRecord captures one sign-in attempt, successful or not.
// Outcome mirrors the sign-in result: "success", "invalid_credentials",
// "activation_failed", or "error".
type SignInRecord struct {
	Email     string    `bson:"email"`
	UserID    string    `bson:"user_id,omitempty"`
	Outcome   string    `bson:"outcome"`
	IP        string    `bson:"ip"`
	UserAgent string    `bson:"user_agent,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}
