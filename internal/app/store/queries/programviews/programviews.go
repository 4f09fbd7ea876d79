// Package programviews builds programs with their section members resolved
// to user summaries, and answers "who shares a section with whom".
package programviews

import (
	"context"
	"time"

	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SectionView struct {
	ID        primitive.ObjectID   `json:"id"`
	Name      string               `json:"name"`
	Faculty   *models.UserSummary  `json:"faculty"`
	Students  []models.UserSummary `json:"students"`
	CreatedAt time.Time            `json:"created_at"`
}

type ProgramView struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Sections    []SectionView      `json:"sections"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Options narrows what Build returns.
type Options struct {
	// Member keeps only sections that include this user, and drops programs
	// left without sections. Zero keeps everything.
	Member primitive.ObjectID
	// SkipOrphans drops sections whose faculty does not resolve to a user.
	SkipOrphans bool
}

// Build resolves members of every section with one user query. Student
// references that no longer resolve are dropped.
func Build(ctx context.Context, db *mongo.Database, programs []models.Program, opt Options) ([]ProgramView, error) {
	var ids []primitive.ObjectID
	for _, p := range programs {
		for _, s := range p.Sections {
			ids = append(ids, s.Members()...)
		}
	}
	sums, err := userstore.New(db).Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]ProgramView, 0, len(programs))
	for _, p := range programs {
		v := ProgramView{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Sections:    []SectionView{},
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		}
		for _, s := range p.Sections {
			if !opt.Member.IsZero() && !s.Includes(opt.Member) {
				continue
			}
			sv := SectionView{
				ID:        s.ID,
				Name:      s.Name,
				Students:  []models.UserSummary{},
				CreatedAt: s.CreatedAt,
			}
			if s.FacultyID != nil {
				if u, ok := sums[*s.FacultyID]; ok {
					sv.Faculty = &u
				}
			}
			if sv.Faculty == nil && opt.SkipOrphans {
				continue
			}
			for _, sid := range s.StudentIDs {
				if u, ok := sums[sid]; ok {
					sv.Students = append(sv.Students, u)
				}
			}
			v.Sections = append(v.Sections, sv)
		}
		if !opt.Member.IsZero() && len(v.Sections) == 0 {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// One builds a single program view with every section.
func One(ctx context.Context, db *mongo.Database, p models.Program) (ProgramView, error) {
	views, err := Build(ctx, db, []models.Program{p}, Options{})
	if err != nil {
		return ProgramView{}, err
	}
	return views[0], nil
}

// StudentsTaughtBy returns the students in sections taught by facultyID,
// ordered by name.
func StudentsTaughtBy(ctx context.Context, db *mongo.Database, facultyID primitive.ObjectID) ([]models.User, error) {
	programs, err := programstore.New(db).ListForFaculty(ctx, facultyID)
	if err != nil {
		return nil, err
	}
	var ids []primitive.ObjectID
	for _, p := range programs {
		for _, s := range p.Sections {
			if s.IsFaculty(facultyID) {
				ids = append(ids, s.StudentIDs...)
			}
		}
	}
	return usersWithRole(ctx, db, ids, models.RoleStudent)
}

// FacultyOf returns the faculty of every section the student is in,
// ordered by name.
func FacultyOf(ctx context.Context, db *mongo.Database, studentID primitive.ObjectID) ([]models.User, error) {
	programs, err := programstore.New(db).ListForMember(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var ids []primitive.ObjectID
	for _, p := range programs {
		for _, s := range p.Sections {
			if s.HasStudent(studentID) && s.FacultyID != nil {
				ids = append(ids, *s.FacultyID)
			}
		}
	}
	return usersWithRole(ctx, db, ids, models.RoleFaculty)
}

func usersWithRole(ctx context.Context, db *mongo.Database, ids []primitive.ObjectID, role string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return userstore.New(db).Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "role": role},
		options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}),
	)
}
