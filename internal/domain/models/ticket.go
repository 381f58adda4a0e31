// internal/domain/models/ticket.go
package models

import "time"

// Ticket statuses, in lifecycle order.
const (
	TicketOpen       = "Open"
	TicketInProgress = "In Progress"
	TicketResolved   = "Resolved"
	TicketClosed     = "Closed"
)

// Ticket is a support request submitted by a customer.
//
// AdminResponses and CustomerResponses are two independent append-only
// lists; a staff reply never lands in the customer list and vice versa.
type Ticket struct {
	ID           string `bson:"_id" json:"id"`
	TicketNumber string `bson:"ticket_number" json:"ticket_number"`

	Subject     string `bson:"subject" json:"subject"`
	Description string `bson:"description" json:"description"`
	Customer    string `bson:"customer" json:"customer"`
	Email       string `bson:"email" json:"email"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`
	Project     string `bson:"project" json:"project"`
	Category    string `bson:"category" json:"category"`
	Priority    string `bson:"priority" json:"priority"` // Low | Medium | High
	Status      string `bson:"status" json:"status"`
	Starred     bool   `bson:"starred" json:"starred"`

	Attachments       []Attachment     `bson:"attachments,omitempty" json:"attachments,omitempty"`
	AdminResponses    []TicketResponse `bson:"admin_responses,omitempty" json:"admin_responses,omitempty"`
	CustomerResponses []TicketResponse `bson:"customer_responses,omitempty" json:"customer_responses,omitempty"`

	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	LastUpdated time.Time `bson:"last_updated" json:"last_updated"`
}

// Attachment is an inlined file: the payload is carried base64-encoded in
// the document itself rather than in external blob storage.
type Attachment struct {
	Name        string `bson:"name" json:"name"`
	ContentType string `bson:"content_type" json:"content_type"`
	Size        int64  `bson:"size" json:"size"`
	Data        string `bson:"data" json:"data"` // base64
}

// TicketResponse is one reply on a ticket.
type TicketResponse struct {
	Message   string    `bson:"message" json:"message"`
	Author    string    `bson:"author" json:"author"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ValidTicketStatus reports whether s is one of the four ticket statuses.
func ValidTicketStatus(s string) bool {
	switch s {
	case TicketOpen, TicketInProgress, TicketResolved, TicketClosed:
		return true
	}
	return false
}
