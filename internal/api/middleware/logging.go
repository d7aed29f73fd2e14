package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"support-desk/utils"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// LogEntry is one line of the JSON access log.
type LogEntry struct {
	Time      string `json:"time"`
	Method    string `json:"method"`
	URI       string `json:"uri"`
	Status    int    `json:"status"`
	Size      int    `json:"size"`
	Duration  string `json:"duration"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent"`
	Referer   string `json:"referer,omitempty"`
	RequestID string `json:"request_id"`
}

// Logging writes a LogEntry per request and echoes X-Request-ID, minting one
// when the caller sent none.
func Logging() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			rec := NewStatusRecorder(w)
			start := time.Now()
			next(rec, r)

			writeLogEntry(LogEntry{
				Time:      start.UTC().Format(time.RFC3339),
				Method:    r.Method,
				URI:       r.URL.RequestURI(),
				Status:    rec.Code(),
				Size:      rec.Size,
				Duration:  time.Since(start).Round(time.Microsecond).String(),
				ClientIP:  utils.RealClientIP(r),
				UserAgent: r.UserAgent(),
				Referer:   r.Referer(),
				RequestID: reqID,
			})
		}
	}
}

func writeLogEntry(entry LogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		log.Printf("[ACCESS] marshal log entry: %v", err)
		return
	}
	log.Println(string(data))
}
