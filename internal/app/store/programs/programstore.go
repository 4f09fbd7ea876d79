// internal/app/store/programs/programstore.go
package programstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/facultrack/internal/app/system/normalize"
	"github.com/dalemusser/facultrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateTitle = errors.New("a program with this title already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("programs")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Program, error) {
	var p models.Program
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Program{}, err
	}
	return p, nil
}

// GetBySectionID returns the program that embeds the section.
// Returns mongo.ErrNoDocuments if no program has it.
func (s *Store) GetBySectionID(ctx context.Context, sectionID primitive.ObjectID) (models.Program, error) {
	var p models.Program
	if err := s.c.FindOne(ctx, bson.M{"sections._id": sectionID}).Decode(&p); err != nil {
		return models.Program{}, err
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, p models.Program) (models.Program, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.Title = normalize.Title(p.Title)
	p.TitleCI = text.Fold(p.Title)
	if p.Sections == nil {
		p.Sections = []models.Section{}
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Program{}, ErrDuplicateTitle
		}
		return models.Program{}, err
	}
	return p, nil
}

// UpdateInfo sets title and description and returns the stored program.
// Returns mongo.ErrNoDocuments if the program does not exist.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, title, desc string) (models.Program, error) {
	title = normalize.Title(title)
	var out models.Program
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"title":       title,
			"title_ci":    text.Fold(title),
			"description": desc,
			"updated_at":  time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Program{}, ErrDuplicateTitle
		}
		return models.Program{}, err
	}
	return out, nil
}

// Delete removes a program by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Count returns the number of programs.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Program, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Program{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every program ordered by title.
func (s *Store) List(ctx context.Context) ([]models.Program, error) {
	return s.find(ctx, bson.M{})
}

// ListByIDs returns the programs among ids that still exist.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Program, error) {
	if len(ids) == 0 {
		return []models.Program{}, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// ListForMember returns programs having a section where userID is the
// faculty or one of the students.
func (s *Store) ListForMember(ctx context.Context, userID primitive.ObjectID) ([]models.Program, error) {
	return s.find(ctx, bson.M{"$or": []bson.M{
		{"sections.faculty_id": userID},
		{"sections.student_ids": userID},
	}})
}

// ListForFaculty returns programs having a section taught by facultyID.
func (s *Store) ListForFaculty(ctx context.Context, facultyID primitive.ObjectID) ([]models.Program, error) {
	return s.find(ctx, bson.M{"sections.faculty_id": facultyID})
}

// PushSection appends sec to the program. Returns false if the program does
// not exist.
func (s *Store) PushSection(ctx context.Context, programID primitive.ObjectID, sec models.Section) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": programID},
		bson.M{
			"$push": bson.M{"sections": sec},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// ReplaceSection overwrites the embedded section with sec.ID. Returns false
// if the program or section does not exist.
func (s *Store) ReplaceSection(ctx context.Context, programID primitive.ObjectID, sec models.Section) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": programID, "sections._id": sec.ID},
		bson.M{"$set": bson.M{
			"sections.$": sec,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// PullSection removes the embedded section. Returns false if the program or
// section does not exist.
func (s *Store) PullSection(ctx context.Context, programID, sectionID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": programID, "sections._id": sectionID},
		bson.M{
			"$pull": bson.M{"sections": bson.M{"_id": sectionID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// RemoveMember takes userID out of every section: it is pulled from
// student lists and cleared where it is the faculty. Returns the number of
// programs touched.
func (s *Store) RemoveMember(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := time.Now().UTC()

	stu, err := s.c.UpdateMany(ctx,
		bson.M{"sections.student_ids": userID},
		bson.M{
			"$pull": bson.M{"sections.$[].student_ids": userID},
			"$set":  bson.M{"updated_at": now},
		},
	)
	if err != nil {
		return 0, err
	}

	fac, err := s.c.UpdateMany(ctx,
		bson.M{"sections.faculty_id": userID},
		bson.M{"$set": bson.M{
			"sections.$[s].faculty_id": nil,
			"updated_at":               now,
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"s.faculty_id": userID}},
		}),
	)
	if err != nil {
		return 0, err
	}
	return stu.ModifiedCount + fac.ModifiedCount, nil
}
