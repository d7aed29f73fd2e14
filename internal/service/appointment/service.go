// Package appointment books callback slots. A date/time pair can be booked once.
package appointment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"support-desk/internal/database"
	"support-desk/internal/model"
	"support-desk/internal/validation"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeNotFound   ErrorCode = "not_found"
	ErrorCodeConflict   ErrorCode = "conflict"
	ErrorCodeInternal   ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error, details ...string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Details: details,
		Err:     err,
	}
}

const (
	MessageBooked          = "Appointment booked successfully. Confirmation emails sent."
	MessageBookedNoEmail   = "Appointment booked successfully, but there was an error sending confirmation emails."
	duplicateSlotMessage   = "An appointment with this date and time already exists"
	pastDateMessage        = "Appointment date cannot be in the past"
	invalidDateMessage     = "Invalid appointment date. Use YYYY-MM-DD"
	validationFailedHeader = "Validation failed"
)

// Notifier sends the booking confirmations.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appointment model.AppointmentItem) error
}

type BookParams struct {
	Name    string `label:"Name" validate:"required"`
	Email   string `label:"Email" validate:"required,support_email"`
	Mobile  string `label:"Mobile number" validate:"required,mobile_range"`
	Date    string `label:"Appointment date" validate:"required"`
	Time    string `label:"Appointment time" validate:"required,clock_time"`
	Purpose string `label:"Purpose" validate:"required,min=3"`
}

type BookResult struct {
	Appointment model.AppointmentItem
	EmailsSent  bool
	Message     string
	// EmailErr is set when the confirmation could not be sent.
	EmailErr error
}

type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

func New(db *database.Database, notifier Notifier) *Service {
	svc := NewWithRepository(NewRepository(db), time.Now)
	svc.notifier = notifier
	return svc
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

func (s *Service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// Book validates and stores an appointment, then sends the confirmations.
// A failed confirmation does not undo the booking.
func (s *Service) Book(ctx context.Context, params BookParams) (BookResult, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.ToLower(strings.TrimSpace(params.Email))
	params.Mobile = strings.TrimSpace(params.Mobile)
	params.Date = strings.TrimSpace(params.Date)
	params.Time = strings.TrimSpace(params.Time)
	params.Purpose = strings.TrimSpace(params.Purpose)

	var problems []string
	if err := validation.Struct(params); err != nil {
		problems = validation.ParseErrors(err)
	}

	var date time.Time
	if params.Date != "" {
		var err error
		date, err = parseDate(params.Date)
		switch {
		case err != nil:
			problems = append(problems, invalidDateMessage)
		case date.Before(startOfDay(s.now().UTC())):
			problems = append(problems, pastDateMessage)
		}
	}
	if len(problems) > 0 {
		return BookResult{}, newError(ErrorCodeValidation, validationFailedHeader, nil, problems...)
	}

	now := s.now().UTC()
	appointment := model.AppointmentItem{
		ID:        uuid.NewString(),
		Name:      params.Name,
		Email:     params.Email,
		Mobile:    params.Mobile,
		Date:      date.Format(model.AppointmentDateLayout),
		Time:      normalizeClock(params.Time),
		Purpose:   params.Purpose,
		Status:    model.AppointmentStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateAppointment(ctx, appointment); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return BookResult{}, newError(ErrorCodeConflict, "Duplicate appointment", err, duplicateSlotMessage)
		}
		return BookResult{}, newError(ErrorCodeInternal, "Error creating appointment", err)
	}

	result := BookResult{Appointment: appointment, Message: MessageBookedNoEmail}
	if s.notifier == nil {
		result.EmailErr = errors.New("no notifier configured")
		return result, nil
	}
	if err := s.notifier.AppointmentBooked(ctx, appointment); err != nil {
		result.EmailErr = err
		return result, nil
	}
	result.EmailsSent = true
	result.Message = MessageBooked
	return result, nil
}

// List returns appointments ordered by date, then time.
func (s *Service) List(ctx context.Context) ([]model.AppointmentItem, error) {
	appointments, err := s.repo.ListAppointments(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "Error fetching appointments", err)
	}
	sort.SliceStable(appointments, func(i, j int) bool {
		if appointments[i].Date != appointments[j].Date {
			return appointments[i].Date < appointments[j].Date
		}
		return appointments[i].Time < appointments[j].Time
	})
	return appointments, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (model.AppointmentItem, error) {
	next := model.AppointmentStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return model.AppointmentItem{}, newError(ErrorCodeValidation, "Invalid status", nil)
	}
	appointment, err := s.repo.UpdateAppointmentStatus(ctx, id, next, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.AppointmentItem{}, newError(ErrorCodeNotFound, "Appointment not found", err)
		}
		return model.AppointmentItem{}, newError(ErrorCodeInternal, "Error updating appointment", err)
	}
	return appointment, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(model.AppointmentDateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return startOfDay(t.UTC()), nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// normalizeClock zero-pads the hour so 9:30 and 09:30 name the same slot.
func normalizeClock(clock string) string {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return clock
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
