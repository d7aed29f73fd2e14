package utils

import (
	"context"
	"errors"
	"net/http/httptest"
	"regexp"
	"testing"
)

func TestGenerateAgentIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^AGENT-[A-Z0-9]{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateAgentID()
		if !pattern.MatchString(id) {
			t.Fatalf("unexpected agent id %q", id)
		}
		seen[id] = true
	}
	if len(seen) < 45 {
		t.Fatalf("agent ids collide too often: %d unique of 50", len(seen))
	}
}

func TestRealClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	if ip := RealClientIP(r); ip != "10.0.0.1" {
		t.Fatalf("expected remote host, got %s", ip)
	}
	r.Header.Set("X-Real-IP", "198.51.100.2")
	if ip := RealClientIP(r); ip != "198.51.100.2" {
		t.Fatalf("expected real ip header, got %s", ip)
	}
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.9")
	if ip := RealClientIP(r); ip != "203.0.113.7" {
		t.Fatalf("expected first forwarded hop, got %s", ip)
	}
}

func TestShutdownRunsTasksInOrder(t *testing.T) {
	ctx, sm := NewShutdownManager(context.Background())

	var order []int
	sm.Register(func(context.Context) error { order = append(order, 1); return nil })
	sm.Register(func(context.Context) error { order = append(order, 2); return errors.New("ignored") })
	sm.Register(func(context.Context) error { order = append(order, 3); return nil })

	sm.Shutdown(context.Background())

	if ctx.Err() == nil {
		t.Fatal("expected root context to be cancelled")
	}
	if len(order) != 3 || order[0] != 1 || order[2] != 3 {
		t.Fatalf("unexpected task order %v", order)
	}
}

func TestOriginAllowed(t *testing.T) {
	allowed := []string{"https://desk.example.com"}
	if !OriginAllowed(allowed, "https://DESK.example.com") {
		t.Fatal("expected case-insensitive match")
	}
	if OriginAllowed(allowed, "https://evil.example.com") {
		t.Fatal("unexpected match")
	}
	if !OriginAllowed([]string{"*"}, "https://anything.test") {
		t.Fatal("wildcard should match")
	}
}

func TestNewRefreshTokenIsUnique(t *testing.T) {
	a, err := NewRefreshToken()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewRefreshToken()
	if len(a) != 64 || a == b {
		t.Fatalf("unexpected tokens %q %q", a, b)
	}
}
