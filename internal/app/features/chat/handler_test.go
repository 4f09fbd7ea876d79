package chat_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/facultrack/internal/app/features/chat"
	uierrors "github.com/dalemusser/facultrack/internal/app/features/errors"
	chatservice "github.com/dalemusser/facultrack/internal/app/services/chat"
	"github.com/dalemusser/facultrack/internal/domain/models"
	"github.com/dalemusser/facultrack/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*chat.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := chat.NewHandler(chatservice.New(db, nil, logger), nil, uierrors.NewErrorLogger(logger), logger)
	return h, testutil.NewFixtures(t, db)
}

func TestServeChat_CreatesOnce(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Fran Faculty", "fran@example.com")
	stu := fixtures.CreateStudent(ctx, "Sam Student", "sam@example.com")

	open := func(as models.User, other primitive.ObjectID) chatservice.ChatView {
		req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("GET", "/x", testutil.AsTestUser(as)), "userId", other.Hex())
		rec := testutil.NewRecorder()
		h.ServeChat(rec, req)
		rec.AssertStatus(t, http.StatusOK)
		var v chatservice.ChatView
		rec.DecodeJSON(t, &v)
		return v
	}

	first := open(stu, fac.ID)
	second := open(fac, stu.ID)
	if first.ID != second.ID {
		t.Errorf("expected one chat per pair, got %s and %s", first.ID.Hex(), second.ID.Hex())
	}
}

func TestServeChat_Errors(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s1 := fixtures.CreateStudent(ctx, "S1", "s1@example.com")
	s2 := fixtures.CreateStudent(ctx, "S2", "s2@example.com")

	tests := []struct {
		name  string
		other string
		want  int
	}{
		{"student to student", s2.ID.Hex(), http.StatusForbidden},
		{"unknown user", primitive.NewObjectID().Hex(), http.StatusNotFound},
		{"bad id", "nope", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("GET", "/x", testutil.AsTestUser(s1)), "userId", tt.other)
			rec := testutil.NewRecorder()
			h.ServeChat(rec, req)
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestPostMessageAndMarkRead(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Fran Faculty", "fran@example.com")
	stu := fixtures.CreateStudent(ctx, "Sam Student", "sam@example.com")
	c := fixtures.CreateChat(ctx, fac.ID, stu.ID)

	post := testutil.NewAuthenticatedJSONRequest(t, "POST", "/x", testutil.AsTestUser(fac), map[string]string{"content": " Hello there "})
	rec := testutil.NewRecorder()
	h.HandlePostMessage(rec, testutil.WithChiURLParam(post, "chatId", c.ID.Hex()))

	rec.AssertStatus(t, http.StatusCreated)
	var msg chatservice.MessageView
	rec.DecodeJSON(t, &msg)
	if msg.Content != "Hello there" {
		t.Errorf("content: got %q", msg.Content)
	}
	if msg.Sender.ID != fac.ID {
		t.Errorf("sender not resolved: %+v", msg.Sender)
	}

	list := testutil.NewRecorder()
	h.ServeList(list, testutil.NewAuthenticatedRequest("GET", "/", testutil.AsTestUser(stu)))
	list.AssertStatus(t, http.StatusOK)
	var chats []chatservice.ChatView
	list.DecodeJSON(t, &chats)
	if len(chats) != 1 || chats[0].Unread != 1 {
		t.Fatalf("expected one chat with one unread, got %+v", chats)
	}

	read := testutil.WithChiURLParam(testutil.NewAuthenticatedRequest("PUT", "/x", testutil.AsTestUser(stu)), "chatId", c.ID.Hex())
	rrec := testutil.NewRecorder()
	h.HandleMarkRead(rrec, read)
	rrec.AssertStatus(t, http.StatusOK)

	if got := fixtures.GetChat(ctx, c.ID); got.UnreadFor(stu.ID) != 0 {
		t.Error("messages should be read")
	}
}

func TestPostMessage_Errors(t *testing.T) {
	h, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fac := fixtures.CreateFaculty(ctx, "Fran Faculty", "fran@example.com")
	stu := fixtures.CreateStudent(ctx, "Sam Student", "sam@example.com")
	outsider := fixtures.CreateStudent(ctx, "Olive Outsider", "olive@example.com")
	c := fixtures.CreateChat(ctx, fac.ID, stu.ID)

	tests := []struct {
		name    string
		as      models.User
		chatID  string
		content string
		want    int
	}{
		{"empty content", fac, c.ID.Hex(), "   ", http.StatusBadRequest},
		{"not a participant", outsider, c.ID.Hex(), "hi", http.StatusForbidden},
		{"missing chat", fac, primitive.NewObjectID().Hex(), "hi", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewAuthenticatedJSONRequest(t, "POST", "/x", testutil.AsTestUser(tt.as), map[string]string{"content": tt.content})
			rec := testutil.NewRecorder()
			h.HandlePostMessage(rec, testutil.WithChiURLParam(req, "chatId", tt.chatID))
			rec.AssertStatus(t, tt.want)
		})
	}
}

func TestRoutes_WebSocketWithoutHub(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	chat.Routes(h).ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/ws", testutil.StudentUser()))

	rec.AssertStatus(t, http.StatusNotFound)
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	chat.Routes(h).ServeHTTP(rec, testutil.NewRequest("GET", "/"))

	rec.AssertStatus(t, http.StatusUnauthorized)
}
