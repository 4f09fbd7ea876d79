package concerns_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/facultrack/internal/app/features/concerns"
	uierrors "github.com/dalemusser/facultrack/internal/app/features/errors"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/dalemusser/facultrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*concerns.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return concerns.NewHandler(db, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func create(t *testing.T, h *concerns.Handler, as models.User, pid, sid primitive.ObjectID, title string) *testutil.ResponseRecorder {
	t.Helper()
	body := map[string]string{
		"program_id":  pid.Hex(),
		"section_id":  sid.Hex(),
		"title":       title,
		"description": "The lab is locked when x<y",
	}
	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewAuthenticatedJSONRequest(t, "POST", "/", testutil.AsTestUser(as), body))
	return rec
}

func TestHandleCreate(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Fran Faculty", "fran@example.com")
	stu := fixtures.CreateStudent(ctx, "Sam Student", "sam@example.com")
	p := fixtures.CreateProgram(ctx, "Physics")
	sec := fixtures.CreateSection(ctx, p.ID, "Lab A", &fac.ID, stu.ID)

	rec := create(t, h, stu, p.ID, sec.ID, "  Lab   access ")

	rec.AssertStatus(t, http.StatusCreated)
	var got models.Concern
	rec.DecodeJSON(t, &got)
	if got.Title != "Lab access" {
		t.Errorf("title: got %q", got.Title)
	}
	if got.Description != "The lab is locked when x<y" {
		t.Errorf("description: got %q", got.Description)
	}
	if got.SectionName != "Lab A" || got.StudentID != stu.ID || got.StudentName != "Sam Student" {
		t.Errorf("unexpected concern %+v", got)
	}
}

func TestHandleCreate_NotInSection(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Fran Faculty", "fran@example.com")
	stu := fixtures.CreateStudent(ctx, "Sam Student", "sam@example.com")
	p := fixtures.CreateProgram(ctx, "Physics")
	sec := fixtures.CreateSection(ctx, p.ID, "Lab A", &fac.ID)

	rec := create(t, h, stu, p.ID, sec.ID, "Lab access")
	rec.AssertStatus(t, http.StatusForbidden)

	missing := create(t, h, stu, p.ID, primitive.NewObjectID(), "Lab access")
	missing.AssertStatus(t, http.StatusNotFound)
	missing.AssertMessage(t, "Section not found")
}

func TestHandleCreate_Validation(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	stu := fixtures.CreateStudent(ctx, "Sam Student", "sam@example.com")

	rec := create(t, h, stu, primitive.NewObjectID(), primitive.NewObjectID(), "   ")

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, "Title is required.")
}

func TestServeList_NewestFirstAndAccess(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Fran Faculty", "fran@example.com")
	other := fixtures.CreateFaculty(ctx, "Olga Other", "olga@example.com")
	stu := fixtures.CreateStudent(ctx, "Sam Student", "sam@example.com")
	p := fixtures.CreateProgram(ctx, "Physics")
	sec := fixtures.CreateSection(ctx, p.ID, "Lab A", &fac.ID, stu.ID)

	create(t, h, stu, p.ID, sec.ID, "First").AssertStatus(t, http.StatusCreated)
	time.Sleep(5 * time.Millisecond)
	create(t, h, stu, p.ID, sec.ID, "Second").AssertStatus(t, http.StatusCreated)

	tests := []struct {
		name string
		user testutil.TestUser
		want int
	}{
		{"section faculty", testutil.AsTestUser(fac), http.StatusOK},
		{"section student", testutil.AsTestUser(stu), http.StatusOK},
		{"admin", testutil.AdminUser(), http.StatusOK},
		{"other faculty", testutil.AsTestUser(other), http.StatusForbidden},
		{"other student", testutil.StudentUser(), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewAuthenticatedRequest("GET", "/x", tt.user)
			req = testutil.WithChiURLParam(req, "programId", p.ID.Hex())
			req = testutil.WithChiURLParam(req, "sectionId", sec.ID.Hex())
			rec := testutil.NewRecorder()
			h.ServeList(rec, req)
			rec.AssertStatus(t, tt.want)
			if tt.want != http.StatusOK {
				return
			}
			var got []models.Concern
			rec.DecodeJSON(t, &got)
			if len(got) != 2 || got[0].Title != "Second" {
				t.Errorf("expected newest first, got %+v", got)
			}
		})
	}
}

func TestRoutes_CreateRequiresStudent(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	concerns.Routes(h).ServeHTTP(rec, testutil.NewAuthenticatedJSONRequest(t, "POST", "/", testutil.FacultyUser(), map[string]string{}))

	rec.AssertStatus(t, http.StatusForbidden)
}
