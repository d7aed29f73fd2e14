package ticket

import (
	"context"
	"errors"
	"testing"
	"time"

	"support-desk/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func validTicket() CreateParams {
	return CreateParams{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		Phone:       "9876543210",
		Subject:     "Invoice",
		Category:    "billing",
		Description: "I was charged twice",
	}
}

func TestCreateTicket(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewWithRepository(repo, fixedNow)

	ticket, err := svc.Create(context.Background(), validTicket())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Status != model.TicketStatusOpen {
		t.Fatalf("expected open ticket, got %s", ticket.Status)
	}
	if _, ok := repo.tickets[ticket.ID]; !ok {
		t.Fatal("ticket was not stored")
	}
}

func TestCreateTicketValidation(t *testing.T) {
	svc := NewWithRepository(NewMemoryRepository(), fixedNow)
	params := validTicket()
	params.Subject = ""
	params.Email = "nope"

	_, err := svc.Create(context.Background(), params)
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(svcErr.Details) != 2 || svcErr.Details[0] != "Invalid email format" || svcErr.Details[1] != "Subject is required" {
		t.Fatalf("unexpected details: %v", svcErr.Details)
	}
}

func TestListNewestFirstAndUpdateStatus(t *testing.T) {
	repo := NewMemoryRepository()
	base := fixedNow()
	repo.tickets["old"] = model.TicketItem{ID: "old", Status: model.TicketStatusOpen, CreatedAt: base.Add(-time.Hour)}
	repo.tickets["new"] = model.TicketItem{ID: "new", Status: model.TicketStatusOpen, CreatedAt: base}
	svc := NewWithRepository(repo, fixedNow)

	tickets, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 2 || tickets[0].ID != "new" {
		t.Fatalf("unexpected order: %#v", tickets)
	}

	updated, err := svc.UpdateStatus(context.Background(), "old", "in-progress")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != model.TicketStatusInProgress {
		t.Fatalf("unexpected status %s", updated.Status)
	}

	_, err = svc.UpdateStatus(context.Background(), "old", "archived")
	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Message != "Invalid status" {
		t.Fatalf("expected invalid status, got %v", err)
	}

	_, err = svc.Get(context.Background(), "missing")
	if !errors.As(err, &svcErr) || svcErr.Code != ErrorCodeNotFound || svcErr.Message != "Ticket not found" {
		t.Fatalf("expected not found, got %v", err)
	}
}
