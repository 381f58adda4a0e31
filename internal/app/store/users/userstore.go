package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deskhubhq/deskhub/internal/app/system/normalize"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

var (
	// ErrDuplicateID is returned when inserting a record whose key exists.
	ErrDuplicateID = errors.New("a user with this id already exists")
	// ErrNotFound is returned when a point lookup matches no record.
	ErrNotFound = errors.New("user not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by document key. Returns ErrNotFound if absent.
func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindAllByEmail returns every record with the given email, in key order so
// callers taking "the first" are deterministic. Zero or one is the normal
// case; two can exist mid-migration.
func (s *Store) FindAllByEmail(ctx context.Context, email string) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{"email": normalize.Email(email)},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Insert creates a record under its pre-assigned key. The caller owns key
// generation (provisional uuid or provider auth id).
func (s *Store) Insert(ctx context.Context, u models.User) error {
	u.Email = normalize.Email(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// Delete removes a record. Deleting a missing record is an error so callers
// can distinguish "already gone" during migration cleanup.
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

// Activate transitions a record to active and drops its temporary password.
func (s *Store) Activate(ctx context.Context, id string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"status": "active", "updated_at": time.Now().UTC()},
		"$unset": bson.M{"temp_password": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateMembership sets the role, user type, and single-project scope on a
// record. When addProjectID is non-empty it is added to the project-id set
// with $addToSet, so repeated calls leave one entry.
func (s *Store) UpdateMembership(ctx context.Context, id, role, userType string, project *string, addProjectID string) error {
	update := bson.M{
		"$set": bson.M{
			"role":       normalize.Role(role),
			"user_type":  normalize.UserType(userType),
			"project":    project,
			"updated_at": time.Now().UTC(),
		},
	}
	if addProjectID != "" {
		update["$addToSet"] = bson.M{"project_ids": addProjectID}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveProjectLink pulls projectID from the record's project-id set and
// clears its single-project scope. A missing record is a no-op: the record
// is usually deleted before cleanup reaches this call.
func (s *Store) RemoveProjectLink(ctx context.Context, id, projectID string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{"project_ids": projectID},
		"$set":  bson.M{"project": nil, "updated_at": time.Now().UTC()},
	})
	return err
}

// CountByRole returns user counts grouped by role, for the dashboard.
func (s *Store) CountByRole(ctx context.Context) (map[string]int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$role", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Role string `bson:"_id"`
		N    int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Role] = r.N
	}
	return out, nil
}
