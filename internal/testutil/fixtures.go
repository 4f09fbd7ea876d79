package testutil

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the password of every user created by Fixtures.
const TestPassword = "password123"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calling it again on the same request adds to the existing params.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
// Documents are inserted directly; no service invariants are applied, so
// tests can also build inconsistent states on purpose.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

var (
	hashOnce sync.Once
	testHash string
)

func passwordHash() string {
	hashOnce.Do(func() {
		b, _ := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
		testHash = string(b)
	})
	return testHash
}

// CreateUser inserts a user with the default profile for role and
// TestPassword as password.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:               primitive.NewObjectID(),
		Name:             name,
		NameCI:           text.Fold(name),
		Email:            email,
		PasswordHash:     passwordHash(),
		Role:             role,
		Profile:          models.DefaultProfile(role),
		AssignedPrograms: []models.AssignedProgram{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	switch role {
	case models.RoleStudent:
		u.Profile.Student.StudentID = "STU-TEST-" + u.ID.Hex()[16:]
	case models.RoleFaculty:
		u.Profile.Faculty.FacultyID = "FAC-TEST-" + u.ID.Hex()[16:]
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateAdmin creates a test admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleAdmin)
}

// CreateFaculty creates a test faculty member.
func (f *Fixtures) CreateFaculty(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleFaculty)
}

// CreateStudent creates a test student.
func (f *Fixtures) CreateStudent(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleStudent)
}

// CreateProgram inserts a program with no sections.
func (f *Fixtures) CreateProgram(ctx context.Context, title string) models.Program {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Program{
		ID:          primitive.NewObjectID(),
		Title:       title,
		TitleCI:     text.Fold(title),
		Description: title + " description",
		Sections:    []models.Section{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("programs").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test program: %v", err)
	}
	return p
}

// CreateSection appends a section to a program without touching
// assigned_programs. Use Assign to add the back-references.
func (f *Fixtures) CreateSection(ctx context.Context, programID primitive.ObjectID, name string, facultyID *primitive.ObjectID, studentIDs ...primitive.ObjectID) models.Section {
	f.t.Helper()

	if studentIDs == nil {
		studentIDs = []primitive.ObjectID{}
	}
	s := models.Section{
		ID:         primitive.NewObjectID(),
		Name:       name,
		FacultyID:  facultyID,
		StudentIDs: studentIDs,
		CreatedAt:  time.Now().UTC(),
	}
	res, err := f.db.Collection("programs").UpdateOne(ctx,
		bson.M{"_id": programID},
		bson.M{"$push": bson.M{"sections": s}},
	)
	if err != nil {
		f.t.Fatalf("failed to create test section: %v", err)
	}
	if res.MatchedCount != 1 {
		f.t.Fatalf("failed to create test section: program %s not found", programID.Hex())
	}
	return s
}

// Assign pushes a program+section back-reference onto a user.
func (f *Fixtures) Assign(ctx context.Context, userID, programID, sectionID primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"assigned_programs": models.AssignedProgram{
			ProgramID:  programID,
			SectionID:  sectionID,
			AssignedAt: time.Now().UTC(),
		}}},
	)
	if err != nil {
		f.t.Fatalf("failed to assign test user: %v", err)
	}
}

// CreateChat inserts a chat between a and b with the given messages.
func (f *Fixtures) CreateChat(ctx context.Context, a, b primitive.ObjectID, msgs ...models.Message) models.Chat {
	f.t.Helper()

	now := time.Now().UTC()
	pair := models.SortedPair(a, b)
	if msgs == nil {
		msgs = []models.Message{}
	}
	c := models.Chat{
		ID:           primitive.NewObjectID(),
		Participants: pair[:],
		PairKey:      models.PairKey(a, b),
		Messages:     msgs,
		LastMessage:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i := range c.Messages {
		if c.Messages[i].ID.IsZero() {
			c.Messages[i].ID = primitive.NewObjectID()
		}
		if c.Messages[i].Timestamp.IsZero() {
			c.Messages[i].Timestamp = now
		}
	}
	if n := len(c.Messages); n > 0 {
		c.LastMessage = c.Messages[n-1].Timestamp
		c.LastMessageContent = c.Messages[n-1].Content
	}
	if _, err := f.db.Collection("chats").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test chat: %v", err)
	}
	return c
}

// GetUser reloads a user by id.
func (f *Fixtures) GetUser(ctx context.Context, id primitive.ObjectID) models.User {
	f.t.Helper()

	var u models.User
	if err := f.db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		f.t.Fatalf("failed to load user %s: %v", id.Hex(), err)
	}
	return u
}

// GetProgram reloads a program by id.
func (f *Fixtures) GetProgram(ctx context.Context, id primitive.ObjectID) models.Program {
	f.t.Helper()

	var p models.Program
	if err := f.db.Collection("programs").FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		f.t.Fatalf("failed to load program %s: %v", id.Hex(), err)
	}
	return p
}

// GetChat reloads a chat by id.
func (f *Fixtures) GetChat(ctx context.Context, id primitive.ObjectID) models.Chat {
	f.t.Helper()

	var c models.Chat
	if err := f.db.Collection("chats").FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		f.t.Fatalf("failed to load chat %s: %v", id.Hex(), err)
	}
	return c
}
