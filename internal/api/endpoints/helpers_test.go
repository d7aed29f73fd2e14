package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"support-desk/internal/api"
	internaljwt "support-desk/internal/jwt"
	"support-desk/internal/queue"
	adminsvc "support-desk/internal/service/admin"
	agentsvc "support-desk/internal/service/agent"
)

func fixedTime() time.Time {
	return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
}

func accessOnlyIssuer(user internaljwt.User, role internaljwt.Role, validUntil int64) (internaljwt.TokenResponse, error) {
	token, err := internaljwt.CreateToken(user, role, validUntil)
	if err != nil {
		return internaljwt.TokenResponse{}, err
	}
	return internaljwt.TokenResponse{AccessToken: token}, nil
}

func setupTestJWT(t *testing.T) {
	t.Helper()
	internaljwt.Configure(internaljwt.Settings{AgentSecret: "agent-test-secret", AdminSecret: "admin-test-secret"})
	agentsvc.SetTokenIssuer(accessOnlyIssuer)
	adminsvc.SetTokenIssuer(accessOnlyIssuer)
	t.Cleanup(func() {
		agentsvc.SetTokenIssuer(nil)
		adminsvc.SetTokenIssuer(nil)
	})
}

func bearer(t *testing.T, id string, role internaljwt.Role) map[string]string {
	t.Helper()
	token, err := internaljwt.CreateToken(internaljwt.User{Id: id, Username: id}, role, 0)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// newTestServer returns an APIServer backed by a small queue plus its cleanup.
func newTestServer(t *testing.T) (*api.APIServer, func()) {
	t.Helper()
	queueManager := queue.NewRequestQueueManager(10, 1)
	server := api.NewAPIServer(":0", queueManager, nil, nil)
	return server, func() {
		queueManager.Shutdown()
	}
}

func doJSONRequest[T any](t *testing.T, handler http.Handler, method, target string, body interface{}, headers map[string]string, expectedStatus int) T {
	t.Helper()

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		payload = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, target, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != expectedStatus {
		t.Fatalf("expected status %d, got %d: %s", expectedStatus, rec.Code, rec.Body.String())
	}

	var result T
	if expectedStatus != http.StatusNoContent {
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}

	return result
}

type published struct {
	room  string
	event string
	data  interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, room, event string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{room: room, event: event, data: data})
	return nil
}

func (p *recordingPublisher) snapshot() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.events...)
}
