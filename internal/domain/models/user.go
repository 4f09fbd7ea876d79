// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

// Roles lists every role in display order.
var Roles = []string{RoleAdmin, RoleFaculty, RoleStudent}

// IsValidRole reports whether role is one of the known roles.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleFaculty, RoleStudent:
		return true
	}
	return false
}

// User represents admins, faculty, and students.
//
// NOTE:
//   - AssignedPrograms mirrors Program.Sections membership so a user's
//     programs can be listed without scanning every program. The writer in
//     services/assignment keeps it in step with the sections.
//   - Profile carries exactly one variant, and it matches Role.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // admin | faculty | student
	Profile      Profile            `bson:"profile" json:"profile"`

	AssignedPrograms []AssignedProgram `bson:"assigned_programs" json:"assigned_programs"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AssignedProgram is the back-reference from a user to a program+section pair
// the user participates in.
type AssignedProgram struct {
	ProgramID  primitive.ObjectID `bson:"program_id" json:"program_id"`
	SectionID  primitive.ObjectID `bson:"section_id" json:"section_id"`
	AssignedAt time.Time          `bson:"assigned_at" json:"assigned_at"`
}

// UserSummary is the public identity shown wherever a user is referenced
// (section rosters, chat participants, message senders).
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Role  string             `bson:"role" json:"role"`
}

// Summary returns the public identity of u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// HasAssignment reports whether u carries a back-reference to the given section.
func (u User) HasAssignment(programID, sectionID primitive.ObjectID) bool {
	for _, a := range u.AssignedPrograms {
		if a.ProgramID == programID && a.SectionID == sectionID {
			return true
		}
	}
	return false
}
