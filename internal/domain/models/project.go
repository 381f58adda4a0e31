// internal/domain/models/project.go
package models

import "time"

// Project represents a client engagement that tickets and members attach to.
//
// NOTE:
//   - Members is a denormalized copy of membership kept for read convenience.
//     The authoritative relation lives on each User (Project / ProjectIDs).
//     The two are kept in step by the membership synchronizer; the store
//     offers no foreign keys or cascades.
type Project struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`

	Members []Member `bson:"members" json:"members"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Member is one embedded entry in a project's members list.
type Member struct {
	Email    string `bson:"email" json:"email"`
	Role     string `bson:"role" json:"role"`
	MemberID string `bson:"member_id" json:"member_id"` // the user document id
	UserType string `bson:"user_type" json:"user_type"` // client | employee
	Status   string `bson:"status" json:"status"`       // pending | active
}
