package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	l := New(2, time.Minute)
	defer l.Stop()

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatal("first two requests should be allowed")
	}
	if l.Allow("a") {
		t.Error("third request should be blocked")
	}
	if !l.Allow("b") {
		t.Error("other keys should be independent")
	}
	if got := l.Remaining("a"); got != 0 {
		t.Errorf("Remaining(a) = %d, want 0", got)
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("second request in window should be blocked")
	}

	now = now.Add(2 * time.Minute)
	if !l.Allow("k") {
		t.Error("request after window should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()

	l.Allow("k")
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("request after Reset should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Errorf("ClientIP = %q, want 10.0.0.1", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.5" {
		t.Errorf("ClientIP = %q, want 203.0.113.5", got)
	}
}

func TestLoginLimiter_PerEmail(t *testing.T) {
	ll := NewLoginLimiter(2, time.Minute)
	defer ll.Stop()

	r1 := httptest.NewRequest("POST", "/api/auth/login", nil)
	r1.RemoteAddr = "10.0.0.1:1"
	r2 := httptest.NewRequest("POST", "/api/auth/login", nil)
	r2.RemoteAddr = "10.0.0.2:1"
	r3 := httptest.NewRequest("POST", "/api/auth/login", nil)
	r3.RemoteAddr = "10.0.0.3:1"

	if ok, _ := ll.Check(r1, "a@example.com"); !ok {
		t.Fatal("first attempt should pass")
	}
	if ok, _ := ll.Check(r2, "A@example.com"); !ok {
		t.Fatal("second attempt should pass")
	}
	if ok, reason := ll.Check(r3, "a@example.com"); ok || reason == "" {
		t.Error("third attempt for same email should be blocked with a reason")
	}

	ll.Succeeded("a@example.com")
	if ok, _ := ll.Check(r3, "a@example.com"); !ok {
		t.Error("attempt after success reset should pass")
	}
}
