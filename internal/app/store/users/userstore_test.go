package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/facultrack/internal/app/store/users"
	"github.com/dalemusser/facultrack/internal/app/system/indexes"
	"github.com/dalemusser/facultrack/internal/app/system/rosterid"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/dalemusser/facultrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_Student(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Name:         "  Ana   Souza ",
		Email:        "Ana@Example.com",
		PasswordHash: "hash",
		Role:         "Student",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "Ana Souza" {
		t.Errorf("Name = %q, want %q", created.Name, "Ana Souza")
	}
	if created.Email != "ana@example.com" {
		t.Errorf("Email = %q, want lowercase", created.Email)
	}
	if created.Role != models.RoleStudent {
		t.Errorf("Role = %q, want student", created.Role)
	}
	if !created.Profile.Matches(models.RoleStudent) {
		t.Fatal("expected student profile variant")
	}
	if !rosterid.Valid(created.Profile.Student.StudentID) {
		t.Errorf("StudentID = %q, want STU-YYYY-NNNN", created.Profile.Student.StudentID)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_FacultyGetsFacultyID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{Name: "Prof", Email: "prof@example.com", Role: "faculty"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Profile.Faculty == nil || !rosterid.Valid(created.Profile.Faculty.FacultyID) {
		t.Errorf("expected generated faculty id, got %+v", created.Profile)
	}
	if created.Profile.Student != nil {
		t.Error("faculty should not carry a student profile")
	}
}

func TestStore_Create_MismatchedProfileReplaced(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		Name:    "Admin",
		Email:   "admin@example.com",
		Role:    "admin",
		Profile: models.Profile{Student: &models.StudentProfile{College: "x"}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !created.Profile.Matches(models.RoleAdmin) {
		t.Errorf("expected admin profile, got %+v", created.Profile)
	}
}

func TestStore_Create_BadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.User{Name: "X", Email: "x@example.com", Role: "guest"})
	if !errors.Is(err, userstore.ErrBadRole) {
		t.Errorf("expected ErrBadRole, got %v", err)
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.User{Name: "One", Email: "dup@example.com", Role: "student"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Name: "Two", Email: "DUP@example.com", Role: "faculty"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateStudent(ctx, "Sam", "sam@example.com")

	got, err := store.GetByEmail(ctx, "  SAM@example.COM ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("got %s, want %s", got.ID.Hex(), u.ID.Hex())
	}

	_, err = store.GetByEmail(ctx, "nobody@example.com")
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_GetByIDAndRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	stu := fixtures.CreateStudent(ctx, "Stu", "stu@example.com")

	if _, err := store.GetByIDAndRole(ctx, stu.ID, models.RoleStudent); err != nil {
		t.Errorf("expected student found, got %v", err)
	}
	if _, err := store.GetByIDAndRole(ctx, stu.ID, models.RoleFaculty); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for wrong role, got %v", err)
	}
}

func TestStore_Update_RoleChangeResetsProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateStudent(ctx, "Switcher", "switch@example.com")
	role := "faculty"
	name := "New Name"

	got, err := store.Update(ctx, u.ID, userstore.Update{Role: &role, Name: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Role != models.RoleFaculty {
		t.Errorf("Role = %q, want faculty", got.Role)
	}
	if got.Name != "New Name" {
		t.Errorf("Name = %q", got.Name)
	}
	if !got.Profile.Matches(models.RoleFaculty) {
		t.Fatalf("expected faculty profile, got %+v", got.Profile)
	}
	if !rosterid.Valid(got.Profile.Faculty.FacultyID) {
		t.Errorf("FacultyID = %q", got.Profile.Faculty.FacultyID)
	}
	if got.PasswordHash != "" {
		t.Error("Update should not return the password hash")
	}
}

func TestStore_Update_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	name := "x"
	if _, err := store.Update(ctx, primitive.NewObjectID(), userstore.Update{Name: &name}); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestUpdate_Fields(t *testing.T) {
	s := "x"
	got := userstore.Update{Name: &s, Role: &s}.Fields()
	if len(got) != 2 || got[0] != "name" || got[1] != "role" {
		t.Errorf("Fields() = %v", got)
	}
}

func TestStore_UpdateStudentProfile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	stu := fixtures.CreateStudent(ctx, "Stu", "stu@example.com")
	fac := fixtures.CreateFaculty(ctx, "Fac", "fac@example.com")
	branch := "CSE"

	got, err := store.UpdateStudentProfile(ctx, stu.ID, models.StudentProfilePatch{Branch: &branch})
	if err != nil {
		t.Fatalf("UpdateStudentProfile failed: %v", err)
	}
	if got.Profile.Student.Branch != "CSE" {
		t.Errorf("Branch = %q", got.Profile.Student.Branch)
	}
	if got.Profile.Student.StudentID != stu.Profile.Student.StudentID {
		t.Error("student id should be preserved")
	}

	if _, err := store.UpdateStudentProfile(ctx, fac.ID, models.StudentProfilePatch{Branch: &branch}); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for faculty, got %v", err)
	}
}

func TestStore_ListPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateStudent(ctx, "Alice", "alice@example.com")
	fixtures.CreateStudent(ctx, "Albert", "albert@example.com")
	fixtures.CreateStudent(ctx, "Bob", "bob@example.com")
	fixtures.CreateFaculty(ctx, "Alvarez", "alvarez@example.com")

	users, res, err := store.ListPage(ctx, userstore.ListFilter{Role: "student", Query: "al"}, "", "")
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Name != "Albert" || users[1].Name != "Alice" {
		t.Errorf("unexpected order: %s, %s", users[0].Name, users[1].Name)
	}
	if res.HasNext || res.HasPrev {
		t.Errorf("expected single page, got %+v", res)
	}
}

func TestStore_SummariesAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateStudent(ctx, "A", "a@example.com")
	b := fixtures.CreateStudent(ctx, "B", "b@example.com")
	f := fixtures.CreateFaculty(ctx, "F", "f@example.com")
	missing := primitive.NewObjectID()

	sums, err := store.Summaries(ctx, []primitive.ObjectID{a.ID, f.ID, missing})
	if err != nil {
		t.Fatalf("Summaries failed: %v", err)
	}
	if len(sums) != 2 {
		t.Errorf("expected 2 summaries, got %d", len(sums))
	}
	if sums[f.ID].Role != models.RoleFaculty {
		t.Errorf("faculty summary role = %q", sums[f.ID].Role)
	}

	n, err := store.CountWithRole(ctx, []primitive.ObjectID{a.ID, b.ID, f.ID, missing}, models.RoleStudent)
	if err != nil {
		t.Fatalf("CountWithRole failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountWithRole = %d, want 2", n)
	}
}

func TestStore_EmailExistsForOther(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateStudent(ctx, "A", "a@example.com")
	b := fixtures.CreateStudent(ctx, "B", "b@example.com")

	exists, err := store.EmailExistsForOther(ctx, "a@example.com", a.ID)
	if err != nil || exists {
		t.Errorf("own email should not count: exists=%v err=%v", exists, err)
	}
	exists, err = store.EmailExistsForOther(ctx, "A@example.com", b.ID)
	if err != nil || !exists {
		t.Errorf("expected email taken: exists=%v err=%v", exists, err)
	}
}

func TestStore_InvalidIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	good := fixtures.CreateStudent(ctx, "Good", "good@example.com")
	noName := primitive.NewObjectID()
	badRole := primitive.NewObjectID()
	_, err := db.Collection("users").InsertMany(ctx, []interface{}{
		bson.M{"_id": noName, "email": "n@example.com", "role": "student"},
		bson.M{"_id": badRole, "name": "R", "email": "r@example.com", "role": "guest"},
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	ids, err := store.InvalidIDs(ctx)
	if err != nil {
		t.Fatalf("InvalidIDs failed: %v", err)
	}
	found := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		found[id] = true
	}
	if !found[noName] || !found[badRole] {
		t.Errorf("expected both invalid users, got %v", ids)
	}
	if found[good.ID] {
		t.Error("valid user reported as invalid")
	}
}

func TestFetcher_FetchSessionUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	fetcher := userstore.NewFetcher(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateFaculty(ctx, "Fac", "fac@example.com")

	su, err := fetcher.FetchSessionUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("FetchSessionUser failed: %v", err)
	}
	if su == nil || su.ID != u.ID.Hex() || su.Role != models.RoleFaculty {
		t.Errorf("unexpected session user: %+v", su)
	}

	su, err = fetcher.FetchSessionUser(ctx, primitive.NewObjectID())
	if err != nil || su != nil {
		t.Errorf("expected (nil, nil) for missing user, got (%v, %v)", su, err)
	}
}

func TestStore_AddAssignment_SetSemantics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateStudent(ctx, "Stu", "stu@example.com")
	programID := primitive.NewObjectID()
	sectionID := primitive.NewObjectID()

	for i := 0; i < 2; i++ {
		if _, err := store.AddAssignment(ctx, []primitive.ObjectID{u.ID}, programID, sectionID); err != nil {
			t.Fatalf("AddAssignment failed: %v", err)
		}
	}
	got := fixtures.GetUser(ctx, u.ID)
	if len(got.AssignedPrograms) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(got.AssignedPrograms))
	}
	if !got.HasAssignment(programID, sectionID) {
		t.Error("expected assignment to be recorded")
	}

	if _, err := store.RemoveAssignment(ctx, nil, programID, sectionID); err != nil {
		t.Fatalf("RemoveAssignment failed: %v", err)
	}
	if got := fixtures.GetUser(ctx, u.ID); len(got.AssignedPrograms) != 0 {
		t.Errorf("expected assignment removed, got %d", len(got.AssignedPrograms))
	}
}

func TestStore_RemoveProgramAssignments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateStudent(ctx, "Stu", "stu@example.com")
	keep := primitive.NewObjectID()
	drop := primitive.NewObjectID()
	fixtures.Assign(ctx, u.ID, drop, primitive.NewObjectID())
	fixtures.Assign(ctx, u.ID, drop, primitive.NewObjectID())
	fixtures.Assign(ctx, u.ID, keep, primitive.NewObjectID())

	if _, err := store.RemoveProgramAssignments(ctx, drop); err != nil {
		t.Fatalf("RemoveProgramAssignments failed: %v", err)
	}
	got := fixtures.GetUser(ctx, u.ID)
	if len(got.AssignedPrograms) != 1 || got.AssignedPrograms[0].ProgramID != keep {
		t.Errorf("unexpected assignments: %+v", got.AssignedPrograms)
	}
}
