package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDefaultProfile_MatchesRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleFaculty, RoleStudent} {
		t.Run(role, func(t *testing.T) {
			p := DefaultProfile(role)
			if !p.Matches(role) {
				t.Errorf("DefaultProfile(%q) does not match its role", role)
			}
		})
	}
}

func TestProfile_Matches(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		role    string
		want    bool
	}{
		{"student variant for student", Profile{Student: &StudentProfile{}}, RoleStudent, true},
		{"student variant for faculty", Profile{Student: &StudentProfile{}}, RoleFaculty, false},
		{"empty profile", Profile{}, RoleAdmin, false},
		{"two variants", Profile{Student: &StudentProfile{}, Faculty: &FacultyProfile{}}, RoleStudent, false},
		{"unknown role", Profile{Admin: &AdminProfile{}}, "guest", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.Matches(tt.role); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestProfile_WithDefaults(t *testing.T) {
	p := Profile{}.WithDefaults(RoleStudent)
	if p.Student == nil {
		t.Fatal("expected student variant")
	}
	if p.Student.Courses == nil {
		t.Error("expected non-nil courses")
	}

	kept := Profile{Faculty: &FacultyProfile{FacultyID: "FAC-2024-0001"}}.WithDefaults(RoleFaculty)
	if kept.Faculty.FacultyID != "FAC-2024-0001" {
		t.Errorf("expected faculty id kept, got %q", kept.Faculty.FacultyID)
	}
}

func TestStudentProfilePatch_Apply(t *testing.T) {
	college := "Engineering"
	orig := StudentProfile{StudentID: "STU-2024-0001", Branch: "CSE", Courses: []string{"a"}}

	got := StudentProfilePatch{
		College:  &college,
		Courses:  []string{"b", "c"},
		Location: &Location{Floor: "2"},
	}.Apply(orig)

	if got.College != "Engineering" {
		t.Errorf("College = %q", got.College)
	}
	if got.Branch != "CSE" {
		t.Errorf("Branch should be unchanged, got %q", got.Branch)
	}
	if got.StudentID != "STU-2024-0001" {
		t.Errorf("StudentID should be unchanged, got %q", got.StudentID)
	}
	if len(got.Courses) != 2 {
		t.Errorf("expected 2 courses, got %d", len(got.Courses))
	}
	if got.Location.Floor != "2" {
		t.Errorf("Location.Floor = %q", got.Location.Floor)
	}
	if len(orig.Courses) != 1 {
		t.Error("original profile was modified")
	}
}

func TestPairKey_Unordered(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	if PairKey(a, b) != PairKey(b, a) {
		t.Errorf("PairKey should not depend on order")
	}
	if PairKey(a, b) == PairKey(a, a) {
		t.Errorf("different pairs should have different keys")
	}
}

func TestChat_UnreadFor(t *testing.T) {
	fac := primitive.NewObjectID()
	stu := primitive.NewObjectID()
	c := Chat{
		Participants: []primitive.ObjectID{fac, stu},
		Messages: []Message{
			{SenderID: fac, Read: false},
			{SenderID: fac, Read: true},
			{SenderID: stu, Read: false},
		},
	}

	if got := c.UnreadFor(stu); got != 1 {
		t.Errorf("UnreadFor(student) = %d, want 1", got)
	}
	if got := c.UnreadFor(fac); got != 1 {
		t.Errorf("UnreadFor(faculty) = %d, want 1", got)
	}
	if c.Other(fac) != stu {
		t.Error("Other(faculty) should be the student")
	}
}

func TestSection_Includes(t *testing.T) {
	fac := primitive.NewObjectID()
	stu := primitive.NewObjectID()
	s := Section{FacultyID: &fac, StudentIDs: []primitive.ObjectID{stu}}

	if !s.Includes(fac) || !s.Includes(stu) {
		t.Error("expected faculty and student included")
	}
	if s.Includes(primitive.NewObjectID()) {
		t.Error("stranger should not be included")
	}
	if got := len(s.Members()); got != 2 {
		t.Errorf("Members() len = %d, want 2", got)
	}
}
