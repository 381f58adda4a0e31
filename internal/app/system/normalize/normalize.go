// Package normalize centralizes field normalization so every code path
// (handlers, stores, seeds, tests) stores and compares the same shape.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are the user-facing
// key for user records, so all lookups and writes must agree on case.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases and trims a role value for comparison.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// UserType lowercases and trims a member type ("client" or "employee").
func UserType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
