package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"support-desk/internal/queue"
)

func TestMakeHTTPHandleFuncRendersErrors(t *testing.T) {
	queueManager := queue.NewRequestQueueManager(4, 1)
	defer queueManager.Shutdown()
	server := NewAPIServer(":0", queueManager, nil, nil)

	cases := []struct {
		name    string
		err     error
		status  int
		message string
		errors  int
	}{
		{"http error", &HTTPError{StatusCode: http.StatusNotFound, Message: "Chat not found"}, http.StatusNotFound, "Chat not found", 0},
		{"validation error", &ValidationError{StatusCode: http.StatusBadRequest, Message: "Validation failed", Errors: []string{"Name is required"}}, http.StatusBadRequest, "Validation failed", 1},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "Internal server error", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := server.MakeHTTPHandleFunc(func(w http.ResponseWriter, r *http.Request) error {
				return tc.err
			})
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body struct {
				Message string   `json:"message"`
				Errors  []string `json:"errors"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Message != tc.message || len(body.Errors) != tc.errors {
				t.Fatalf("unexpected body %#v", body)
			}
		})
	}
}

func TestNewAPIServerSharesMetrics(t *testing.T) {
	queueManager := queue.NewRequestQueueManager(4, 1)
	defer queueManager.Shutdown()

	first := NewAPIServer(":9999", queueManager, nil, nil)
	second := NewAPIServer(":9999", queueManager, nil, nil)
	if first.metrics.requests != second.metrics.requests {
		t.Fatal("expected servers on one address to share collectors")
	}
}

func TestSanitizePath(t *testing.T) {
	cases := map[string]string{
		"":                                 "/",
		"/api/chat/abc":                    "/api/chat/abc",
		"/api/agents/AGENT-ABC123/stats/x": "/api/agents/AGENT-ABC123/...",
	}
	for in, want := range cases {
		if got := sanitizePath(in); got != want {
			t.Fatalf("sanitizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
