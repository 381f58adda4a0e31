// internal/domain/models/user.go
package models

import "time"

// User represents admins, employees, and clients.
//
// NOTE:
//   - The document _id is a string, not an ObjectID. A user created by an
//     admin gets a locally generated provisional id; on first sign-in the
//     record is migrated so that _id equals the identity provider's auth id.
//   - TempPassword exists only while Status is "pending" and is removed
//     when the account is activated.
type User struct {
	ID        string `bson:"_id" json:"id"`
	Email     string `bson:"email" json:"email"`
	FirstName string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string `bson:"last_name,omitempty" json:"last_name,omitempty"`

	Role     string `bson:"role" json:"role"`           // admin | employee | client | client_head | project_manager
	UserType string `bson:"user_type" json:"user_type"` // client | employee
	Status   string `bson:"status" json:"status"`       // pending | active

	TempPassword string `bson:"temp_password,omitempty" json:"-"`

	// Project is the single named project a client is scoped to (null for
	// employees). ProjectIDs is the set of project ids the user belongs to;
	// it is the authoritative side of the membership relation.
	Project    *string  `bson:"project" json:"project"`
	ProjectIDs []string `bson:"project_ids,omitempty" json:"project_ids,omitempty"`

	EmpID    string `bson:"emp_id,omitempty" json:"emp_id,omitempty"`
	ClientID string `bson:"client_id,omitempty" json:"client_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName joins the first and last name for display.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}
