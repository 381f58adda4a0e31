// Package status defines the user/member account statuses.
//
// The lifecycle is one-way: a record is created "pending" by an admin and
// becomes "active" on the owner's first successful sign-in. There is no
// transition back, and no disabled state; removal is deletion.
package status

const (
	Pending = "pending"
	Active  = "active"
)

// IsValid reports whether s is a known status value.
func IsValid(s string) bool {
	return s == Pending || s == Active
}
