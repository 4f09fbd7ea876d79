package programstore_test

import (
	"errors"
	"testing"

	programstore "github.com/dalemusser/facultrack/internal/app/store/programs"
	"github.com/dalemusser/facultrack/internal/app/system/indexes"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/dalemusser/facultrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := programstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Program{Title: "  Data   Science ", Description: "desc"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Title != "Data Science" {
		t.Errorf("Title = %q", created.Title)
	}
	if created.TitleCI != "data science" {
		t.Errorf("TitleCI = %q", created.TitleCI)
	}
	if created.Sections == nil {
		t.Error("expected empty, non-nil sections")
	}
}

func TestStore_Create_DuplicateTitle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := programstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Program{Title: "Physics", Description: "d"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Program{Title: "PHYSICS", Description: "d"})
	if !errors.Is(err, programstore.ErrDuplicateTitle) {
		t.Errorf("expected ErrDuplicateTitle, got %v", err)
	}
}

func TestStore_UpdateInfo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := programstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreateProgram(ctx, "Old")

	got, err := store.UpdateInfo(ctx, p.ID, "New", "new desc")
	if err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}
	if got.Title != "New" || got.Description != "new desc" {
		t.Errorf("unexpected program: %+v", got)
	}

	if _, err := store.UpdateInfo(ctx, primitive.NewObjectID(), "x", "y"); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_SectionLifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := programstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreateProgram(ctx, "Math")
	sec := models.Section{ID: primitive.NewObjectID(), Name: "A", StudentIDs: []primitive.ObjectID{}}

	ok, err := store.PushSection(ctx, p.ID, sec)
	if err != nil || !ok {
		t.Fatalf("PushSection: ok=%v err=%v", ok, err)
	}

	sec.Name = "A2"
	ok, err = store.ReplaceSection(ctx, p.ID, sec)
	if err != nil || !ok {
		t.Fatalf("ReplaceSection: ok=%v err=%v", ok, err)
	}
	got := fixtures.GetProgram(ctx, p.ID)
	if s, found := got.Section(sec.ID); !found || s.Name != "A2" {
		t.Errorf("expected renamed section, got %+v", got.Sections)
	}

	ok, err = store.PullSection(ctx, p.ID, sec.ID)
	if err != nil || !ok {
		t.Fatalf("PullSection: ok=%v err=%v", ok, err)
	}
	if got := fixtures.GetProgram(ctx, p.ID); len(got.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(got.Sections))
	}

	ok, err = store.PullSection(ctx, p.ID, sec.ID)
	if err != nil || ok {
		t.Errorf("second PullSection should report missing: ok=%v err=%v", ok, err)
	}
	ok, err = store.PushSection(ctx, primitive.NewObjectID(), sec)
	if err != nil || ok {
		t.Errorf("PushSection on missing program: ok=%v err=%v", ok, err)
	}
}

func TestStore_ListForMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := programstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Fac", "fac@example.com")
	stu := fixtures.CreateStudent(ctx, "Stu", "stu@example.com")
	p1 := fixtures.CreateProgram(ctx, "Alpha")
	p2 := fixtures.CreateProgram(ctx, "Beta")
	fixtures.CreateProgram(ctx, "Gamma")
	fixtures.CreateSection(ctx, p1.ID, "S1", &fac.ID)
	fixtures.CreateSection(ctx, p2.ID, "S2", nil, stu.ID)

	forFac, err := store.ListForMember(ctx, fac.ID)
	if err != nil {
		t.Fatalf("ListForMember failed: %v", err)
	}
	if len(forFac) != 1 || forFac[0].ID != p1.ID {
		t.Errorf("faculty programs = %v", forFac)
	}

	forStu, err := store.ListForMember(ctx, stu.ID)
	if err != nil {
		t.Fatalf("ListForMember failed: %v", err)
	}
	if len(forStu) != 1 || forStu[0].ID != p2.ID {
		t.Errorf("student programs = %v", forStu)
	}

	taught, err := store.ListForFaculty(ctx, stu.ID)
	if err != nil {
		t.Fatalf("ListForFaculty failed: %v", err)
	}
	if len(taught) != 0 {
		t.Errorf("student should teach nothing, got %d", len(taught))
	}
}

func TestStore_RemoveMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := programstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Fac", "fac@example.com")
	stu := fixtures.CreateStudent(ctx, "Stu", "stu@example.com")
	other := fixtures.CreateStudent(ctx, "Other", "other@example.com")
	p := fixtures.CreateProgram(ctx, "Chem")
	s1 := fixtures.CreateSection(ctx, p.ID, "S1", &fac.ID, stu.ID, other.ID)
	s2 := fixtures.CreateSection(ctx, p.ID, "S2", nil, stu.ID)

	if _, err := store.RemoveMember(ctx, stu.ID); err != nil {
		t.Fatalf("RemoveMember(student) failed: %v", err)
	}
	if _, err := store.RemoveMember(ctx, fac.ID); err != nil {
		t.Fatalf("RemoveMember(faculty) failed: %v", err)
	}

	got := fixtures.GetProgram(ctx, p.ID)
	a, _ := got.Section(s1.ID)
	b, _ := got.Section(s2.ID)
	if a.HasStudent(stu.ID) || b.HasStudent(stu.ID) {
		t.Error("student should be removed from every section")
	}
	if !a.HasStudent(other.ID) {
		t.Error("other student should remain")
	}
	if a.FacultyID != nil {
		t.Error("faculty should be cleared")
	}
}

func TestStore_ListByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := programstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	phys := fixtures.CreateProgram(ctx, "Physics")
	chem := fixtures.CreateProgram(ctx, "Chemistry")
	fixtures.CreateProgram(ctx, "Biology")

	got, err := store.ListByIDs(ctx, []primitive.ObjectID{phys.ID, chem.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("ListByIDs failed: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Chemistry" || got[1].Title != "Physics" {
		t.Errorf("got %+v, want Chemistry then Physics", got)
	}

	empty, err := store.ListByIDs(ctx, nil)
	if err != nil {
		t.Fatalf("ListByIDs(nil) failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestStore_GetBySectionID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := programstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Fran", "fran@example.com")
	fixtures.CreateProgram(ctx, "Chemistry")
	phys := fixtures.CreateProgram(ctx, "Physics")
	sec := fixtures.CreateSection(ctx, phys.ID, "A", &fac.ID)

	got, err := store.GetBySectionID(ctx, sec.ID)
	if err != nil {
		t.Fatalf("GetBySectionID failed: %v", err)
	}
	if got.ID != phys.ID {
		t.Errorf("got program %q, want Physics", got.Title)
	}

	if _, err := store.GetBySectionID(ctx, primitive.NewObjectID()); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}
