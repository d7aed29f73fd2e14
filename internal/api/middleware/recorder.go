package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// StatusRecorder remembers the status code and body size written through it.
// It passes Flush and Hijack through so websocket upgrades keep working.
type StatusRecorder struct {
	http.ResponseWriter
	Status int
	Size   int
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	if rec, ok := w.(*StatusRecorder); ok {
		return rec
	}
	return &StatusRecorder{ResponseWriter: w}
}

func (r *StatusRecorder) WriteHeader(code int) {
	if r.Status == 0 {
		r.Status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *StatusRecorder) Write(b []byte) (int, error) {
	if r.Status == 0 {
		r.Status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.Size += n
	return n, err
}

// Code is the status sent so far; an untouched response counts as 200.
func (r *StatusRecorder) Code() int {
	if r.Status == 0 {
		return http.StatusOK
	}
	return r.Status
}

func (r *StatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *StatusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("middleware: response writer cannot be hijacked")
	}
	if r.Status == 0 {
		r.Status = http.StatusSwitchingProtocols
	}
	return h.Hijack()
}
