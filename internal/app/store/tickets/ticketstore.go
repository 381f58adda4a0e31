package ticketstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deskhubhq/deskhub/internal/app/system/normalize"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

// ErrNotFound is returned when a ticket lookup matches nothing.
var ErrNotFound = errors.New("ticket not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("tickets")}
}

// Filter narrows List. Zero values mean "no constraint".
type Filter struct {
	Project string // tickets belonging to one project
	Email   string // tickets submitted by one customer email
	Status  string
}

// Create inserts a ticket with a generated key and a sortable ticket number.
func (s *Store) Create(ctx context.Context, t models.Ticket) (models.Ticket, error) {
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.TicketNumber = "TKT-" + ulid.Make().String()
	t.Email = normalize.Email(t.Email)
	if t.Status == "" {
		t.Status = models.TicketOpen
	}
	t.CreatedAt = now
	t.LastUpdated = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Ticket{}, err
	}
	return t, nil
}

// Get loads a ticket by key. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (models.Ticket, error) {
	var t models.Ticket
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Ticket{}, ErrNotFound
		}
		return models.Ticket{}, err
	}
	return t, nil
}

// List returns tickets matching the filter, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Ticket, error) {
	q := bson.M{}
	if f.Project != "" {
		q["project"] = f.Project
	}
	if f.Email != "" {
		q["email"] = normalize.Email(f.Email)
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	cur, err := s.c.Find(ctx, q,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []models.Ticket{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of tickets.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// HasRecentDuplicate reports whether the same email already submitted a
// ticket with this subject within the window. Stops accidental double
// submissions of the public ticket form.
func (s *Store) HasRecentDuplicate(ctx context.Context, subject, email string, window time.Duration) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"subject":    subject,
		"email":      normalize.Email(email),
		"created_at": bson.M{"$gte": time.Now().UTC().Add(-window)},
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateStatus sets the ticket status.
func (s *Store) UpdateStatus(ctx context.Context, id, status string) error {
	return s.updateOne(ctx, id, bson.M{
		"$set": bson.M{"status": status, "last_updated": time.Now().UTC()},
	})
}

// SetStarred sets the starred flag.
func (s *Store) SetStarred(ctx context.Context, id string, starred bool) error {
	return s.updateOne(ctx, id, bson.M{
		"$set": bson.M{"starred": starred, "last_updated": time.Now().UTC()},
	})
}

// AppendAdminResponse appends a staff reply to the admin list.
func (s *Store) AppendAdminResponse(ctx context.Context, id string, r models.TicketResponse) error {
	return s.appendResponse(ctx, id, "admin_responses", r)
}

// AppendCustomerResponse appends a customer reply to the customer list.
func (s *Store) AppendCustomerResponse(ctx context.Context, id string, r models.TicketResponse) error {
	return s.appendResponse(ctx, id, "customer_responses", r)
}

func (s *Store) appendResponse(ctx context.Context, id, field string, r models.TicketResponse) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return s.updateOne(ctx, id, bson.M{
		"$push": bson.M{field: r},
		"$set":  bson.M{"last_updated": time.Now().UTC()},
	})
}

// Delete removes a ticket.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
