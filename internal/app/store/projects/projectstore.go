package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deskhubhq/deskhub/internal/app/system/normalize"
	"github.com/deskhubhq/deskhub/internal/domain/models"
)

// ErrNotFound is returned when a project lookup matches nothing.
var ErrNotFound = errors.New("project not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

// Create inserts a new project with a generated key and empty members list.
func (s *Store) Create(ctx context.Context, name, description string) (models.Project, error) {
	now := time.Now().UTC()
	p := models.Project{
		ID:          uuid.NewString(),
		Name:        normalize.Name(name),
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// Get loads a project by key. Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Project{}, ErrNotFound
		}
		return models.Project{}, err
	}
	return p, nil
}

// List returns all projects sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of projects.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// SetMembers replaces the project's members list wholesale. Concurrent
// editors of the same project overwrite each other; last writer wins.
func (s *Store) SetMembers(ctx context.Context, projectID string, members []models.Member) error {
	if members == nil {
		members = []models.Member{}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": projectID}, bson.M{
		"$set": bson.M{"members": members, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a project. The members' user records are untouched; tearing
// those down is the synchronizer's business, done member by member.
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
