package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/facultrack/internal/app/system/limits"
	"go.uber.org/zap"
)

func TestMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	Message(rec, http.StatusNotFound, "Chat not found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if body["message"] != "Chat not found" {
		t.Errorf("expected message 'Chat not found', got %v", body["message"])
	}
	if _, ok := body["errors"]; ok {
		t.Error("expected no errors field")
	}
}

func TestInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	Invalid(rec, []string{"Name is required.", "Email is required."})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	var body struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse body: %v", err)
	}
	if body.Message != "Name is required." || len(body.Errors) != 2 {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestServerError_HidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	ServerError(rec, zap.NewNop(), "db failed", errors.New("connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Error("internal error leaked into response")
	}
}

func TestDecode_Malformed(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	var v struct{ Name string }
	if Decode(rec, req, &v) {
		t.Fatal("expected Decode to fail")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", limits.MaxJSONBody) + `"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	var v struct{ Name string }
	if Decode(rec, req, &v) {
		t.Fatal("expected Decode to fail")
	}
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected status 413, got %d", rec.Code)
	}
}
