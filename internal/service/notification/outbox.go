package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// OutboxEntry is the JSON document written for an e-mail that could not be sent.
type OutboxEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Mail      Email     `json:"mailOptions"`
	Error     string    `json:"error"`
}

// Outbox stores unsent e-mails as ${timestamp}_${category}.json files.
type Outbox struct {
	dir string
	now func() time.Time
}

type RetryResult struct {
	Sent   int
	Failed int
}

func NewOutbox(dir string, now func() time.Time) *Outbox {
	if now == nil {
		now = time.Now
	}
	return &Outbox{dir: dir, now: now}
}

func (o *Outbox) Dir() string {
	return o.dir
}

func (o *Outbox) Write(category string, email Email, cause error) (string, error) {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return "", fmt.Errorf("outbox: create dir: %w", err)
	}

	now := o.now().UTC()
	entry := OutboxEntry{
		Timestamp: now,
		Category:  category,
		Mail:      email,
		Error:     "Email sending failed, saved as fallback",
	}
	if cause != nil {
		entry.Error = cause.Error()
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return "", fmt.Errorf("outbox: encode: %w", err)
	}

	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(now.Format("2006-01-02T15:04:05.000Z07:00"))
	name := fmt.Sprintf("%s_%s.json", stamp, strings.Join(strings.Fields(category), "_"))
	name = strings.ReplaceAll(name, "/", "-")
	path := filepath.Join(o.dir, name)
	// Same-millisecond failures for one category must not overwrite each other.
	for i := 1; fileExists(path); i++ {
		path = filepath.Join(o.dir, fmt.Sprintf("%s_%d.json", strings.TrimSuffix(name, ".json"), i))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("outbox: write %s: %w", path, err)
	}
	return path, nil
}

// Pending lists outbox files, oldest first.
func (o *Outbox) Pending() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(o.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Retry resends every pending entry and deletes the file of each one that succeeds.
func (o *Outbox) Retry(ctx context.Context, mailer Mailer) (RetryResult, error) {
	paths, err := o.Pending()
	if err != nil {
		return RetryResult{}, fmt.Errorf("outbox: list: %w", err)
	}

	var result RetryResult
	var errs []error
	for _, path := range paths {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		entry, err := readEntry(path)
		if err != nil {
			result.Failed++
			errs = append(errs, err)
			continue
		}
		if err := mailer.Send(ctx, entry.Mail); err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("outbox: resend %s: %w", filepath.Base(path), err))
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("outbox: remove %s: %w", path, err))
		}
		result.Sent++
		countEmail(resultResent)
	}
	return result, errors.Join(errs...)
}

func readEntry(path string) (OutboxEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("outbox: read %s: %w", path, err)
	}
	var entry OutboxEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return OutboxEntry{}, fmt.Errorf("outbox: decode %s: %w", path, err)
	}
	if entry.Mail.To == "" {
		return OutboxEntry{}, fmt.Errorf("outbox: %s has no recipient", path)
	}
	return entry, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
