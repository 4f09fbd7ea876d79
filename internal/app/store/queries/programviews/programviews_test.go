package programviews_test

import (
	"testing"

	"github.com/dalemusser/facultrack/internal/app/store/queries/programviews"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/dalemusser/facultrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestOne_ResolvesMembers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Grace", "grace@example.com")
	s1 := fixtures.CreateStudent(ctx, "Ada", "ada@example.com")
	s2 := fixtures.CreateStudent(ctx, "Gone", "gone@example.com")
	p := fixtures.CreateProgram(ctx, "Physics")
	fixtures.CreateSection(ctx, p.ID, "A", &fac.ID, s1.ID, s2.ID)

	if _, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": s2.ID}); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	v, err := programviews.One(ctx, db, fixtures.GetProgram(ctx, p.ID))
	if err != nil {
		t.Fatalf("One failed: %v", err)
	}
	if len(v.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(v.Sections))
	}
	sec := v.Sections[0]
	if sec.Faculty == nil || sec.Faculty.Name != "Grace" {
		t.Errorf("faculty = %+v", sec.Faculty)
	}
	if len(sec.Students) != 1 || sec.Students[0].ID != s1.ID {
		t.Errorf("students = %+v, want only Ada", sec.Students)
	}
}

func TestBuild_MemberAndOrphans(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Grace", "grace@example.com")
	stu := fixtures.CreateStudent(ctx, "Ada", "ada@example.com")
	missing := primitive.NewObjectID()

	chem := fixtures.CreateProgram(ctx, "Chemistry")
	fixtures.CreateSection(ctx, chem.ID, "Taught", &fac.ID, stu.ID)
	fixtures.CreateSection(ctx, chem.ID, "Orphan", &missing, stu.ID)
	fixtures.CreateSection(ctx, chem.ID, "Other", &fac.ID)
	bio := fixtures.CreateProgram(ctx, "Biology")
	fixtures.CreateSection(ctx, bio.ID, "Unrelated", &fac.ID)

	programs := []models.Program{fixtures.GetProgram(ctx, bio.ID), fixtures.GetProgram(ctx, chem.ID)}

	tests := []struct {
		name     string
		opt      programviews.Options
		programs int
		sections int
	}{
		{"everything", programviews.Options{}, 2, 4},
		{"member only", programviews.Options{Member: stu.ID}, 1, 2},
		{"member without orphans", programviews.Options{Member: stu.ID, SkipOrphans: true}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := programviews.Build(ctx, db, programs, tt.opt)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			if len(views) != tt.programs {
				t.Fatalf("programs = %d, want %d", len(views), tt.programs)
			}
			n := 0
			for _, v := range views {
				n += len(v.Sections)
			}
			if n != tt.sections {
				t.Errorf("sections = %d, want %d", n, tt.sections)
			}
		})
	}
}

func TestStudentsTaughtBy_And_FacultyOf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grace := fixtures.CreateFaculty(ctx, "Grace", "grace@example.com")
	alan := fixtures.CreateFaculty(ctx, "Alan", "alan@example.com")
	zed := fixtures.CreateStudent(ctx, "Zed", "zed@example.com")
	ada := fixtures.CreateStudent(ctx, "Ada", "ada@example.com")
	bob := fixtures.CreateStudent(ctx, "Bob", "bob@example.com")

	p := fixtures.CreateProgram(ctx, "Physics")
	fixtures.CreateSection(ctx, p.ID, "A", &grace.ID, zed.ID, ada.ID)
	fixtures.CreateSection(ctx, p.ID, "B", &alan.ID, bob.ID, ada.ID)

	students, err := programviews.StudentsTaughtBy(ctx, db, grace.ID)
	if err != nil {
		t.Fatalf("StudentsTaughtBy failed: %v", err)
	}
	if len(students) != 2 || students[0].Name != "Ada" || students[1].Name != "Zed" {
		t.Errorf("students = %+v, want Ada then Zed", students)
	}

	faculty, err := programviews.FacultyOf(ctx, db, ada.ID)
	if err != nil {
		t.Fatalf("FacultyOf failed: %v", err)
	}
	if len(faculty) != 2 || faculty[0].Name != "Alan" || faculty[1].Name != "Grace" {
		t.Errorf("faculty = %+v, want Alan then Grace", faculty)
	}

	none, err := programviews.FacultyOf(ctx, db, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("FacultyOf failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no faculty, got %d", len(none))
	}
}
