package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

type hijackableRecorder struct {
	http.ResponseWriter
	hijacked bool
	err      error
}

func (h *hijackableRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, h.err
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	flags := log.Flags()
	log.SetOutput(buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return buf
}

func TestLoggingWritesAccessEntry(t *testing.T) {
	buf := captureLog(t)

	handler := Logging()(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true}`))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/tickets?src=widget", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}

	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("access log is not JSON: %v (%s)", err, buf.String())
	}
	if entry.Status != http.StatusCreated || entry.Size != len(`{"success":true}`) {
		t.Fatalf("unexpected status/size: %+v", entry)
	}
	if entry.URI != "/api/tickets?src=widget" || entry.ClientIP != "203.0.113.7" || entry.RequestID != "req-42" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestLoggingMintsRequestID(t *testing.T) {
	captureLog(t)

	handler := Logging()(func(w http.ResponseWriter, r *http.Request) {})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if id := rec.Header().Get(requestIDHeader); len(id) != 36 || strings.Count(id, "-") != 4 {
		t.Fatalf("expected a generated uuid, got %q", id)
	}
}

func TestLoggingMiddlewarePreservesHijacker(t *testing.T) {
	captureLog(t)

	expectedErr := errors.New("hijack invoked")
	recorder := &hijackableRecorder{
		ResponseWriter: httptest.NewRecorder(),
		err:            expectedErr,
	}

	handler := Logging()(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Fatalf("response writer should implement http.Hijacker")
		}
		if _, _, err := hj.Hijack(); !errors.Is(err, expectedErr) {
			t.Fatalf("unexpected hijack error: %v", err)
		}
	})

	handler(recorder, httptest.NewRequest(http.MethodGet, "/api/ws", nil))

	if !recorder.hijacked {
		t.Fatal("underlying Hijack was not called")
	}
}

func TestCORSWildcardWithoutCredentials(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 600})(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	h(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected handler to run, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" || rec.Header().Get("Access-Control-Max-Age") != "600" {
		t.Fatalf("unexpected headers: %v", rec.Header())
	}
}
