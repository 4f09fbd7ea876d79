// internal/app/store/concerns/concernstore.go
package concernstore

import (
	"context"
	"time"

	"github.com/dalemusser/facultrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("concerns")}
}

func (s *Store) Create(ctx context.Context, c models.Concern) (models.Concern, error) {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Concern{}, err
	}
	return c, nil
}

// ListForSection returns the section's concerns, newest first.
func (s *Store) ListForSection(ctx context.Context, programID, sectionID primitive.ObjectID) ([]models.Concern, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"program_id": programID, "section_id": sectionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Concern{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteForSection removes the concerns raised in one section.
func (s *Store) DeleteForSection(ctx context.Context, programID, sectionID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"program_id": programID, "section_id": sectionID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteForProgram removes every concern raised in the program.
func (s *Store) DeleteForProgram(ctx context.Context, programID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"program_id": programID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByStudent removes the concerns a student raised.
func (s *Store) DeleteByStudent(ctx context.Context, studentID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"student_id": studentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
