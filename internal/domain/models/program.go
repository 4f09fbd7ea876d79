// internal/domain/models/program.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program is a course of study made of sections.
//
// NOTE:
//   - Sections are embedded; a section only exists inside its program.
//   - Membership written here is mirrored into User.AssignedPrograms.
type Program struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Sections    []Section          `bson:"sections" json:"sections"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Section is a named cohort within a Program with one faculty and a set of students.
type Section struct {
	ID         primitive.ObjectID   `bson:"_id" json:"id"`
	Name       string               `bson:"name" json:"name"`
	FacultyID  *primitive.ObjectID  `bson:"faculty_id" json:"faculty_id"`
	StudentIDs []primitive.ObjectID `bson:"student_ids" json:"student_ids"`
	CreatedAt  time.Time            `bson:"created_at" json:"created_at"`
}

// Section returns the embedded section with the given id.
func (p Program) Section(id primitive.ObjectID) (Section, bool) {
	for _, s := range p.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Members returns the faculty (if any) followed by the students.
func (s Section) Members() []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(s.StudentIDs)+1)
	if s.FacultyID != nil {
		out = append(out, *s.FacultyID)
	}
	return append(out, s.StudentIDs...)
}

// HasStudent reports whether id is one of the section's students.
func (s Section) HasStudent(id primitive.ObjectID) bool {
	for _, sid := range s.StudentIDs {
		if sid == id {
			return true
		}
	}
	return false
}

// IsFaculty reports whether id is the section's faculty.
func (s Section) IsFaculty(id primitive.ObjectID) bool {
	return s.FacultyID != nil && *s.FacultyID == id
}

// Includes reports whether id is the faculty or a student of the section.
func (s Section) Includes(id primitive.ObjectID) bool {
	return s.IsFaculty(id) || s.HasStudent(id)
}
