package agent

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	internaljwt "support-desk/internal/jwt"
	"support-desk/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func setupTestJWT(t *testing.T) {
	t.Helper()
	internaljwt.Configure(internaljwt.Settings{AgentSecret: "agent-test-secret", AdminSecret: "admin-test-secret"})
	SetTokenIssuer(func(user internaljwt.User, role internaljwt.Role, validUntil int64) (internaljwt.TokenResponse, error) {
		token, err := internaljwt.CreateToken(user, role, validUntil)
		if err != nil {
			return internaljwt.TokenResponse{}, err
		}
		return internaljwt.TokenResponse{AccessToken: token}, nil
	})
	t.Cleanup(func() {
		SetTokenIssuer(nil)
	})
}

func expectCode(t *testing.T, err error, code ErrorCode, message string) {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if svcErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, svcErr.Code, svcErr.Message)
	}
	if message != "" && svcErr.Message != message {
		t.Fatalf("expected message %q, got %q", message, svcErr.Message)
	}
}

func createAgent(t *testing.T, svc *Service, username string) model.AgentItem {
	t.Helper()
	agent, err := svc.Create(context.Background(), CreateParams{Name: "Agent " + username, Username: username, Password: "s3cret!"})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	return agent
}

func TestCreateAgentHashesPasswordAndAssignsID(t *testing.T) {
	svc := NewWithRepository(NewMemoryRepository(), fixedNow)

	agent := createAgent(t, svc, "alice")

	if !regexp.MustCompile(`^AGENT-[A-Z0-9]{6}$`).MatchString(agent.AgentID) {
		t.Fatalf("unexpected agent id %q", agent.AgentID)
	}
	if !strings.HasPrefix(agent.PasswordHash, "$2a$10$") {
		t.Fatalf("expected bcrypt hash, got %q", agent.PasswordHash)
	}
	if agent.Status != model.AgentStatusOffline || agent.Role != model.RoleAgent {
		t.Fatalf("unexpected defaults: %s %s", agent.Status, agent.Role)
	}
	if !agent.CreatedAt.Equal(fixedNow()) {
		t.Fatalf("expected fixed clock, got %s", agent.CreatedAt)
	}
}

func TestCreateAgentValidation(t *testing.T) {
	svc := NewWithRepository(NewMemoryRepository(), fixedNow)

	_, err := svc.Create(context.Background(), CreateParams{Name: "Bob", Username: "  "})
	expectCode(t, err, ErrorCodeValidation, "Name, username, and password are required.")

	createAgent(t, svc, "bob")
	_, err = svc.Create(context.Background(), CreateParams{Name: "Other", Username: "bob", Password: "x"})
	expectCode(t, err, ErrorCodeValidation, "Username already exists.")
}

func TestLoginIssuesTokenAndSetsOnline(t *testing.T) {
	setupTestJWT(t)
	svc := NewWithRepository(NewMemoryRepository(), fixedNow)
	created := createAgent(t, svc, "carol")

	result, err := svc.Login(context.Background(), LoginParams{Username: "carol", Password: "s3cret!"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Agent.Status != model.AgentStatusOnline {
		t.Fatalf("expected online, got %s", result.Agent.Status)
	}

	claims, err := internaljwt.ParseToken(result.Tokens.AccessToken, internaljwt.RoleAgent)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims["id"] != created.AgentID {
		t.Fatalf("expected agent id claim %s, got %v", created.AgentID, claims["id"])
	}
	if _, err := internaljwt.ParseToken(result.Tokens.AccessToken, internaljwt.RoleAdmin); err == nil {
		t.Fatal("agent token must not pass as admin")
	}

	_, err = svc.Login(context.Background(), LoginParams{Username: "carol", Password: "wrong"})
	expectCode(t, err, ErrorCodeUnauthorized, "Invalid credentials")

	_, err = svc.Login(context.Background(), LoginParams{Username: "nobody", Password: "wrong"})
	expectCode(t, err, ErrorCodeUnauthorized, "Invalid credentials")
}

func TestDeleteAndChangePassword(t *testing.T) {
	svc := NewWithRepository(NewMemoryRepository(), fixedNow)
	agent := createAgent(t, svc, "dave")

	expectCode(t, svc.ChangePassword(context.Background(), agent.ID, ""), ErrorCodeValidation, "Password is required.")
	expectCode(t, svc.ChangePassword(context.Background(), "missing", "new"), ErrorCodeNotFound, "Agent not found.")

	if err := svc.ChangePassword(context.Background(), agent.ID, "n3w-pass"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	updated, _ := svc.GetByAgentID(context.Background(), agent.AgentID)
	if !internaljwt.ValidatePassword(updated.PasswordHash, "n3w-pass") {
		t.Fatal("expected new password to validate")
	}

	if err := svc.Delete(context.Background(), agent.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	expectCode(t, svc.Delete(context.Background(), agent.ID), ErrorCodeNotFound, "Agent not found.")
}

func TestStatusTransitions(t *testing.T) {
	svc := NewWithRepository(NewMemoryRepository(), fixedNow)
	agent := createAgent(t, svc, "erin")
	ctx := context.Background()

	connected, err := svc.Connect(ctx, agent.AgentID)
	if err != nil || connected.Status != model.AgentStatusOnline {
		t.Fatalf("connect: %v %s", err, connected.Status)
	}

	busy, err := svc.AssignChat(ctx, agent.AgentID, "chat-1")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if busy.Status != model.AgentStatusBusy || len(busy.ActiveChats) != 1 || busy.ActiveChats[0] != "chat-1" {
		t.Fatalf("unexpected agent after assign: %#v", busy)
	}

	_, err = svc.SetStatus(ctx, agent.AgentID, "away")
	expectCode(t, err, ErrorCodeValidation, "Invalid status")

	gone, err := svc.Disconnect(ctx, agent.AgentID)
	if err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if gone.Status != model.AgentStatusOffline || len(gone.ActiveChats) != 0 {
		t.Fatalf("unexpected agent after disconnect: %#v", gone)
	}

	_, err = svc.Connect(ctx, "AGENT-NOPE00")
	expectCode(t, err, ErrorCodeNotFound, "Agent not found.")
}

func TestMarkIdleOffline(t *testing.T) {
	repo := NewMemoryRepository()
	base := fixedNow()
	repo.agents["1"] = model.AgentItem{ID: "1", AgentID: "AGENT-AAAAA1", Username: "idle", Status: model.AgentStatusOnline, LastActive: base.Add(-time.Hour)}
	repo.agents["2"] = model.AgentItem{ID: "2", AgentID: "AGENT-AAAAA2", Username: "live", Status: model.AgentStatusBusy, LastActive: base.Add(-time.Hour)}
	repo.agents["3"] = model.AgentItem{ID: "3", AgentID: "AGENT-AAAAA3", Username: "fresh", Status: model.AgentStatusOnline, LastActive: base.Add(-time.Minute)}
	svc := NewWithRepository(repo, fixedNow)

	swept, err := svc.MarkIdleOffline(context.Background(), 30*time.Minute, func(agentID string) bool {
		return agentID == "AGENT-AAAAA2"
	})
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if swept != 1 {
		t.Fatalf("expected 1 agent swept, got %d", swept)
	}
	if repo.agents["1"].Status != model.AgentStatusOffline {
		t.Fatal("expected idle agent offline")
	}
	if repo.agents["2"].Status != model.AgentStatusBusy || repo.agents["3"].Status != model.AgentStatusOnline {
		t.Fatal("live and fresh agents must keep their status")
	}
}
