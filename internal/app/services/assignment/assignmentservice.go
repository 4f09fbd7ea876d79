// Package assignmentservice writes program sections and keeps each member's
// assigned_programs back-references in step with them.
//
// With cascade on, removing a section, a program or a section member also
// retracts the matching back-references. With it off, those entries are
// left in place (the historical behavior) and only additions are mirrored.
package assignmentservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	concernstore "github.com/dalemusser/facultrack/internal/app/store/concerns"
	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	"github.com/dalemusser/facultrack/internal/app/store/queries/programviews"
	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/normalize"
	"github.com/dalemusser/facultrack/internal/app/system/txn"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	ErrFacultyNotFound     = errors.New("faculty not found")
	ErrStudentsNotFound    = errors.New("one or more students not found")
	ErrProgramNotFound     = errors.New("program not found")
	ErrSectionNotFound     = errors.New("section not found")
	ErrSectionNameRequired = errors.New("section name is required")
)

// SectionInput is the writable part of a section.
type SectionInput struct {
	Name       string
	FacultyID  *primitive.ObjectID
	StudentIDs []primitive.ObjectID
}

type Service struct {
	db       *mongo.Database
	programs *programstore.Store
	users    *userstore.Store
	concerns *concernstore.Store
	cascade  bool
	log      *zap.Logger
}

func New(db *mongo.Database, cascade bool, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		programs: programstore.New(db),
		users:    userstore.New(db),
		concerns: concernstore.New(db),
		cascade:  cascade,
		log:      logger,
	}
}

// Cascade reports whether removals retract back-references.
func (s *Service) Cascade() bool { return s.cascade }

// dedupe keeps the first occurrence of each id. The result is never nil.
func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// minus returns the ids in a that are not in b.
func minus(a, b []primitive.ObjectID) []primitive.ObjectID {
	drop := make(map[primitive.ObjectID]bool, len(b))
	for _, id := range b {
		drop[id] = true
	}
	out := []primitive.ObjectID{}
	for _, id := range a {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s *Service) checkFaculty(ctx context.Context, id *primitive.ObjectID) error {
	if id == nil || id.IsZero() {
		return ErrFacultyNotFound
	}
	if _, err := s.users.GetByIDAndRole(ctx, *id, models.RoleFaculty); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrFacultyNotFound
		}
		return fmt.Errorf("load faculty: %w", err)
	}
	return nil
}

// checkStudents requires every id to be an existing student.
func (s *Service) checkStudents(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	ids = dedupe(ids)
	n, err := s.users.CountWithRole(ctx, ids, models.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	if n != int64(len(ids)) {
		return nil, ErrStudentsNotFound
	}
	return ids, nil
}

func (s *Service) loadProgram(ctx context.Context, id primitive.ObjectID) (models.Program, error) {
	p, err := s.programs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Program{}, ErrProgramNotFound
		}
		return models.Program{}, fmt.Errorf("load program: %w", err)
	}
	return p, nil
}

func (s *Service) loadSection(ctx context.Context, programID, sectionID primitive.ObjectID) (models.Section, error) {
	p, err := s.loadProgram(ctx, programID)
	if err != nil {
		return models.Section{}, err
	}
	sec, ok := p.Section(sectionID)
	if !ok {
		return models.Section{}, ErrSectionNotFound
	}
	return sec, nil
}

// validate runs the section checks in order: faculty, students, program,
// name. Nothing has been written when it fails.
func (s *Service) validate(ctx context.Context, programID primitive.ObjectID, in SectionInput) (SectionInput, models.Program, error) {
	if err := s.checkFaculty(ctx, in.FacultyID); err != nil {
		return in, models.Program{}, err
	}
	students, err := s.checkStudents(ctx, in.StudentIDs)
	if err != nil {
		return in, models.Program{}, err
	}
	p, err := s.loadProgram(ctx, programID)
	if err != nil {
		return in, models.Program{}, err
	}
	name := normalize.Name(in.Name)
	if name == "" {
		return in, models.Program{}, ErrSectionNameRequired
	}
	fid := *in.FacultyID
	return SectionInput{Name: name, FacultyID: &fid, StudentIDs: students}, p, nil
}

// AddSection appends a new section and assigns it to every member.
func (s *Service) AddSection(ctx context.Context, programID primitive.ObjectID, in SectionInput) (models.Section, error) {
	in, _, err := s.validate(ctx, programID, in)
	if err != nil {
		return models.Section{}, err
	}

	sec := models.Section{
		ID:         primitive.NewObjectID(),
		Name:       in.Name,
		FacultyID:  in.FacultyID,
		StudentIDs: in.StudentIDs,
		CreatedAt:  time.Now().UTC(),
	}
	err = txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		ok, err := s.programs.PushSection(ctx, programID, sec)
		if err != nil {
			return err
		}
		if !ok {
			return ErrProgramNotFound
		}
		_, err = s.users.AddAssignment(ctx, sec.Members(), programID, sec.ID)
		return err
	})
	if err != nil {
		return models.Section{}, err
	}
	return sec, nil
}

// UpdateSection replaces the section's name, faculty and students.
func (s *Service) UpdateSection(ctx context.Context, programID, sectionID primitive.ObjectID, in SectionInput) (models.Section, error) {
	in, p, err := s.validate(ctx, programID, in)
	if err != nil {
		return models.Section{}, err
	}
	old, ok := p.Section(sectionID)
	if !ok {
		return models.Section{}, ErrSectionNotFound
	}

	next := old
	next.Name = in.Name
	next.FacultyID = in.FacultyID
	next.StudentIDs = in.StudentIDs
	return next, s.replace(ctx, programID, old, next)
}

// AssignStudents replaces the section's students.
func (s *Service) AssignStudents(ctx context.Context, programID, sectionID primitive.ObjectID, studentIDs []primitive.ObjectID) (models.Section, error) {
	students, err := s.checkStudents(ctx, studentIDs)
	if err != nil {
		return models.Section{}, err
	}
	old, err := s.loadSection(ctx, programID, sectionID)
	if err != nil {
		return models.Section{}, err
	}

	next := old
	next.StudentIDs = students
	return next, s.replace(ctx, programID, old, next)
}

// AssignFaculty replaces the section's faculty.
func (s *Service) AssignFaculty(ctx context.Context, programID, sectionID, facultyID primitive.ObjectID) (models.Section, error) {
	if err := s.checkFaculty(ctx, &facultyID); err != nil {
		return models.Section{}, err
	}
	old, err := s.loadSection(ctx, programID, sectionID)
	if err != nil {
		return models.Section{}, err
	}

	next := old
	next.FacultyID = &facultyID
	return next, s.replace(ctx, programID, old, next)
}

// replace writes next over old, assigns new members and, with cascade on,
// unassigns members that left.
func (s *Service) replace(ctx context.Context, programID primitive.ObjectID, old, next models.Section) error {
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		ok, err := s.programs.ReplaceSection(ctx, programID, next)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSectionNotFound
		}
		if _, err := s.users.AddAssignment(ctx, next.Members(), programID, next.ID); err != nil {
			return err
		}
		if !s.cascade {
			return nil
		}
		_, err = s.users.RemoveAssignment(ctx, minus(old.Members(), next.Members()), programID, next.ID)
		return err
	})
}

// DeleteSection removes the section and its concerns. With cascade on, the
// back-references to it are retracted in the same transaction.
func (s *Service) DeleteSection(ctx context.Context, programID, sectionID primitive.ObjectID) error {
	if _, err := s.loadSection(ctx, programID, sectionID); err != nil {
		return err
	}

	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		ok, err := s.programs.PullSection(ctx, programID, sectionID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrSectionNotFound
		}
		if _, err := s.concerns.DeleteForSection(ctx, programID, sectionID); err != nil {
			return err
		}
		if !s.cascade {
			return nil
		}
		_, err = s.users.RemoveAssignment(ctx, nil, programID, sectionID)
		return err
	})
}

// DeleteProgram removes the program and its concerns. With cascade on,
// every back-reference to it is retracted.
func (s *Service) DeleteProgram(ctx context.Context, programID primitive.ObjectID) error {
	return txn.Run(ctx, s.db, s.log, func(ctx context.Context) error {
		n, err := s.programs.Delete(ctx, programID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrProgramNotFound
		}
		if _, err := s.concerns.DeleteForProgram(ctx, programID); err != nil {
			return err
		}
		if !s.cascade {
			return nil
		}
		_, err = s.users.RemoveProgramAssignments(ctx, programID)
		return err
	})
}

// GetAssigned returns the programs the user teaches or studies in, each
// carrying only that user's sections. Sections without a resolvable faculty
// are skipped.
func (s *Service) GetAssigned(ctx context.Context, userID primitive.ObjectID) ([]programviews.ProgramView, error) {
	programs, err := s.programs.ListForMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programviews.Build(ctx, s.db, programs, programviews.Options{
		Member:      userID,
		SkipOrphans: true,
	})
}
