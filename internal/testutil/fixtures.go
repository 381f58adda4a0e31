package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deskhubhq/deskhub/internal/app/system/status"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProject inserts a project and returns it with its generated ID.
func (f *Fixtures) CreateProject(ctx context.Context, name string) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("fixture project insert: %v", err)
	}
	return p
}

// CreatePendingUser inserts a pending user record keyed by a provisional id,
// the shape an admin membership action produces.
func (f *Fixtures) CreatePendingUser(ctx context.Context, email, tempPassword, role, userType string, project *models.Project) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         role,
		UserType:     userType,
		Status:       status.Pending,
		TempPassword: tempPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if project != nil {
		u.ProjectIDs = []string{project.ID}
		if userType == "client" {
			name := project.Name
			u.Project = &name
		}
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("fixture user insert: %v", err)
	}
	return u
}

// CreateTicket inserts a ticket with sane defaults, overridable via mutate.
func (f *Fixtures) CreateTicket(ctx context.Context, mutate func(*models.Ticket)) models.Ticket {
	f.t.Helper()

	now := time.Now().UTC()
	tk := models.Ticket{
		ID:           uuid.NewString(),
		TicketNumber: "TKT-" + uuid.NewString()[:8],
		Subject:      "Printer jam",
		Description:  "Floor 3 printer is jammed again.",
		Customer:     "Test Client",
		Email:        "client@test.com",
		Project:      "Acme",
		Category:     "Hardware",
		Priority:     "Medium",
		Status:       models.TicketOpen,
		CreatedAt:    now,
		LastUpdated:  now,
	}
	if mutate != nil {
		mutate(&tk)
	}
	if _, err := f.db.Collection("tickets").InsertOne(ctx, tk); err != nil {
		f.t.Fatalf("fixture ticket insert: %v", err)
	}
	return tk
}
