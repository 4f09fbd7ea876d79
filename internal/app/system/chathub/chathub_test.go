package chathub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/facultrack/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

func newTestServer(t *testing.T, hub *Hub, users map[string]*auth.SessionUser) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := users[r.URL.Query().Get("token")]; ok {
			r = auth.WithTestUser(r, u)
		}
		hub.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/?token="+token, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") })
	return conn
}

func waitFor(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("timeout waiting for condition")
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	return ev
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := New(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestServeHTTP_RequiresUser(t *testing.T) {
	hub := New(nil, zap.NewNop())
	rec := httptest.NewRecorder()
	hub.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/ws", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestPublish_DeliversToUser(t *testing.T) {
	hub, _ := startHub(t)
	me := primitive.NewObjectID()
	other := primitive.NewObjectID()
	srv := newTestServer(t, hub, map[string]*auth.SessionUser{
		"tok": {ID: me.Hex(), Role: "student"},
	})

	conn := dial(t, srv, "tok")
	waitFor(t, time.Second, func() bool { return hub.ClientCount() == 1 })

	hub.Publish([]primitive.ObjectID{other}, Event{Type: EventMessage, ChatID: "not-mine"})
	hub.Publish([]primitive.ObjectID{me}, Event{Type: EventRead, ChatID: "c1", ReaderID: other.Hex()})

	ev := readEvent(t, conn)
	if ev.Type != EventRead || ev.ChatID != "c1" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestPing_Pong(t *testing.T) {
	hub, _ := startHub(t)
	me := primitive.NewObjectID()
	srv := newTestServer(t, hub, map[string]*auth.SessionUser{
		"tok": {ID: me.Hex(), Role: "faculty"},
	})

	conn := dial(t, srv, "tok")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	if ev := readEvent(t, conn); ev.Type != EventPong {
		t.Errorf("expected pong, got %+v", ev)
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"send"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ev := readEvent(t, conn); ev.Type != EventError {
		t.Errorf("expected error event, got %+v", ev)
	}
}

func TestRun_ShutdownClosesClients(t *testing.T) {
	hub, cancel := startHub(t)
	me := primitive.NewObjectID()
	srv := newTestServer(t, hub, map[string]*auth.SessionUser{
		"tok": {ID: me.Hex(), Role: "student"},
	})

	dial(t, srv, "tok")
	waitFor(t, time.Second, func() bool { return hub.ClientCount() == 1 })

	cancel()
	waitFor(t, time.Second, func() bool { return hub.ClientCount() == 0 })
}

func TestParseOrigins(t *testing.T) {
	got := ParseOrigins(" app.example.com , ,localhost:5173")
	want := []string{"app.example.com", "localhost:5173"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseOrigins = %v, want %v", got, want)
	}
	if ParseOrigins("") != nil {
		t.Error("expected nil for empty input")
	}
}
