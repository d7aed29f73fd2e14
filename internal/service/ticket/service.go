package ticket

import (
	"context"
	"errors"
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
	ErrorCodeInternal   ErrorCode = "internal_error"
)

// Error is a ticket service failure. Details lists per-field messages for
// validation errors.
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

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

type CreateParams struct {
	Name        string `label:"Name" validate:"required"`
	Email       string `label:"Email" validate:"required,support_email"`
	Phone       string `label:"Phone" validate:"required"`
	Subject     string `label:"Subject" validate:"required"`
	Category    string `label:"Category" validate:"required"`
	Description string `label:"Description" validate:"required"`
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(db *database.Database) *Service {
	return NewWithRepository(NewRepository(db), time.Now)
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (model.TicketItem, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)
	params.Phone = strings.TrimSpace(params.Phone)
	params.Subject = strings.TrimSpace(params.Subject)
	params.Category = strings.TrimSpace(params.Category)
	params.Description = strings.TrimSpace(params.Description)

	if err := validation.Struct(params); err != nil {
		verr := newError(ErrorCodeValidation, "Validation failed", err)
		verr.Details = validation.ParseErrors(err)
		return model.TicketItem{}, verr
	}

	now := s.now().UTC()
	ticket := model.TicketItem{
		ID:          uuid.NewString(),
		Name:        params.Name,
		Email:       params.Email,
		Phone:       params.Phone,
		Subject:     params.Subject,
		Category:    params.Category,
		Description: params.Description,
		Status:      model.TicketStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateTicket(ctx, ticket); err != nil {
		return model.TicketItem{}, newError(ErrorCodeInternal, "Error creating ticket", err)
	}
	return ticket, nil
}

// List returns every ticket, newest first.
func (s *Service) List(ctx context.Context) ([]model.TicketItem, error) {
	tickets, err := s.repo.ListTickets(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "Error fetching tickets", err)
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
	return tickets, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.TicketItem, error) {
	ticket, err := s.repo.GetTicket(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.TicketItem{}, newError(ErrorCodeNotFound, "Ticket not found", err)
		}
		return model.TicketItem{}, newError(ErrorCodeInternal, "Error fetching ticket", err)
	}
	return ticket, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (model.TicketItem, error) {
	next := model.TicketStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return model.TicketItem{}, newError(ErrorCodeValidation, "Invalid status", nil)
	}
	ticket, err := s.repo.UpdateTicketStatus(ctx, id, next, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.TicketItem{}, newError(ErrorCodeNotFound, "Ticket not found", err)
		}
		return model.TicketItem{}, newError(ErrorCodeInternal, "Error updating ticket", err)
	}
	return ticket, nil
}
