package endpoints

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"support-desk/internal/api/middleware"
	"support-desk/internal/dto"
	internaljwt "support-desk/internal/jwt"
	adminsvc "support-desk/internal/service/admin"
	agentsvc "support-desk/internal/service/agent"
	chatsvc "support-desk/internal/service/chat"
)

type agentFixture struct {
	handler http.Handler
	agents  *agentsvc.Service
	admins  *adminsvc.Service
	chats   *chatsvc.Service
}

func setupAgentHandler(t *testing.T) (agentFixture, func()) {
	t.Helper()
	setupTestJWT(t)

	fx := agentFixture{
		agents: agentsvc.NewWithRepository(agentsvc.NewMemoryRepository(), fixedTime),
		admins: adminsvc.NewWithRepository(adminsvc.NewMemoryRepository(), fixedTime),
		chats:  chatsvc.NewWithRepository(chatsvc.NewMemoryRepository(), fixedTime),
	}
	agentEndpoints := &agentEndpoints{service: fx.agents, chats: fx.chats}
	adminEndpoints := &adminEndpoints{service: fx.admins}
	server, cleanup := newTestServer(t)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/login", server.MakeHTTPHandleFunc(adminEndpoints.Login))
	mux.HandleFunc("/api/admin/verify-token", server.MakeHTTPHandleFunc(adminEndpoints.VerifyToken, middleware.ValidateAdminJWT))
	mux.HandleFunc("/api/admin/refresh", server.MakeHTTPHandleFunc(adminEndpoints.Refresh))
	mux.HandleFunc("/api/agent/login", server.MakeHTTPHandleFunc(agentEndpoints.Login))
	mux.HandleFunc("/api/agent/logout", server.MakeHTTPHandleFunc(agentEndpoints.Logout, middleware.ValidateAgentJWT))
	mux.HandleFunc("/api/agent/profile", server.MakeHTTPHandleFunc(agentEndpoints.Profile, middleware.ValidateAgentJWT))
	mux.HandleFunc("/api/agent/status", server.MakeHTTPHandleFunc(agentEndpoints.Status, middleware.ValidateAgentJWT))
	mux.HandleFunc("/api/agent/chats", server.MakeHTTPHandleFunc(agentEndpoints.Chats, middleware.ValidateAgentJWT))
	mux.HandleFunc("/api/agents", server.MakeHTTPHandleFunc(agentEndpoints.List, middleware.ValidateAdminJWT))
	mux.HandleFunc("/api/agent", server.MakeHTTPHandleFunc(agentEndpoints.Create, middleware.ValidateAdminJWT))
	mux.HandleFunc("/api/agent/{id}", server.MakeHTTPHandleFunc(agentEndpoints.Delete, middleware.ValidateAdminJWT))
	mux.HandleFunc("/api/agent/{id}/password", server.MakeHTTPHandleFunc(agentEndpoints.Password, middleware.ValidateAdminJWT))
	mux.HandleFunc("/api/agents/{agentId}/stats", server.MakeHTTPHandleFunc(agentEndpoints.Stats, middleware.ValidateAnyJWT))

	fx.handler = mux
	return fx, cleanup
}

func (fx agentFixture) adminHeaders(t *testing.T) map[string]string {
	t.Helper()
	if _, err := fx.admins.Create(context.Background(), adminsvc.CreateParams{Username: "root", Password: "Adm1nPass!", Name: "Root"}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	resp := doJSONRequest[dto.AdminLoginResponse](t, fx.handler, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "root",
		"password": "Adm1nPass!",
	}, nil, http.StatusOK)
	return map[string]string{"Authorization": "Bearer " + resp.Token}
}

func TestAdminLoginAndVerify(t *testing.T) {
	fx, cleanup := setupAgentHandler(t)
	defer cleanup()

	headers := fx.adminHeaders(t)
	verify := doJSONRequest[dto.VerifyTokenResponse](t, fx.handler, http.MethodGet, "/api/admin/verify-token", nil, headers, http.StatusOK)
	if !verify.Valid || verify.Admin.Username != "root" || verify.Admin.Role != "admin" {
		t.Fatalf("unexpected verify response %#v", verify)
	}

	resp := doJSONRequest[ApiMessageResponse](t, fx.handler, http.MethodPost, "/api/admin/login", map[string]string{
		"username": "root",
		"password": "wrong",
	}, nil, http.StatusUnauthorized)
	if resp.Message != "Invalid credentials" {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	doJSONRequest[ApiMessageResponse](t, fx.handler, http.MethodGet, "/api/admin/verify-token", nil, nil, http.StatusUnauthorized)
	doJSONRequest[ApiMessageResponse](t, fx.handler, http.MethodGet, "/api/admin/verify-token", nil, bearer(t, "a1", internaljwt.RoleAgent), http.StatusUnauthorized)
}

func TestRefreshWithoutStoreIsUnauthorized(t *testing.T) {
	fx, cleanup := setupAgentHandler(t)
	defer cleanup()

	resp := doJSONRequest[ApiMessageResponse](t, fx.handler, http.MethodPost, "/api/admin/refresh", map[string]string{"refreshToken": "nope"}, nil, http.StatusUnauthorized)
	if resp.Message != "Invalid refresh token" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
}

func TestAgentLifecycle(t *testing.T) {
	fx, cleanup := setupAgentHandler(t)
	defer cleanup()

	admin := fx.adminHeaders(t)

	created := doJSONRequest[dto.CreateAgentResponse](t, fx.handler, http.MethodPost, "/api/agent", map[string]string{
		"name":     "Ravi Kumar",
		"username": "ravi",
		"password": "Agent123!",
	}, admin, http.StatusCreated)
	if !created.Success || !strings.HasPrefix(created.Agent.AgentID, "AGENT-") {
		t.Fatalf("unexpected create response %#v", created)
	}

	dup := doJSONRequest[ApiMessageResponse](t, fx.handler, http.MethodPost, "/api/agent", map[string]string{
		"name":     "Ravi Again",
		"username": "ravi",
		"password": "Agent123!",
	}, admin, http.StatusBadRequest)
	if dup.Message != "Username already exists." {
		t.Fatalf("unexpected duplicate message %q", dup.Message)
	}

	missing := doJSONRequest[ApiMessageResponse](t, fx.handler, http.MethodPost, "/api/agent", map[string]string{"name": "X"}, admin, http.StatusBadRequest)
	if missing.Message != "Name, username, and password are required." {
		t.Fatalf("unexpected missing message %q", missing.Message)
	}

	login := doJSONRequest[dto.AgentLoginResponse](t, fx.handler, http.MethodPost, "/api/agent/login", map[string]string{
		"username": "ravi",
		"password": "Agent123!",
	}, nil, http.StatusOK)
	if login.Token == "" || login.Agent.Status != "online" {
		t.Fatalf("unexpected login response %#v", login)
	}
	agentHeaders := map[string]string{"Authorization": "Bearer " + login.Token}

	profile := doJSONRequest[dto.AgentResponse](t, fx.handler, http.MethodGet, "/api/agent/profile", nil, agentHeaders, http.StatusOK)
	if profile.AgentID != created.Agent.AgentID {
		t.Fatalf("expected agent %s, got %s", created.Agent.AgentID, profile.AgentID)
	}

	busy := doJSONRequest[dto.AgentResponse](t, fx.handler, http.MethodPatch, "/api/agent/status", map[string]string{"status": "busy"}, agentHeaders, http.StatusOK)
	if busy.Status != "busy" {
		t.Fatalf("expected busy, got %s", busy.Status)
	}
	invalid := doJSONRequest[ApiMessageResponse](t, fx.handler, http.MethodPatch, "/api/agent/status", map[string]string{"status": "away"}, agentHeaders, http.StatusBadRequest)
	if invalid.Message != "Invalid status" {
		t.Fatalf("unexpected message %q", invalid.Message)
	}

	chats := doJSONRequest[[]dto.ChatResponse](t, fx.handler, http.MethodGet, "/api/agent/chats", nil, agentHeaders, http.StatusOK)
	if len(chats) != 0 {
		t.Fatalf("expected no chats, got %d", len(chats))
	}

	stats := doJSONRequest[dto.AgentStatsResponse](t, fx.handler, http.MethodGet, "/api/agents/"+created.Agent.AgentID+"/stats", nil, agentHeaders, http.StatusOK)
	if stats.Agent.Username != "ravi" || stats.TotalChats != 0 {
		t.Fatalf("unexpected stats %#v", stats)
	}

	doJSONRequest[ApiMessageResponse](t, fx.handler, http.MethodGet, "/api/agents", nil, agentHeaders, http.StatusUnauthorized)
	agents := doJSONRequest[[]dto.AgentResponse](t, fx.handler, http.MethodGet, "/api/agents", nil, admin, http.StatusOK)
	if len(agents) != 1 {
		t.Fatalf("expected 1 agent, got %d", len(agents))
	}

	doJSONRequest[dto.SuccessResponse](t, fx.handler, http.MethodPut, "/api/agent/"+created.Agent.ID+"/password", map[string]string{"password": "N3wPass!"}, admin, http.StatusOK)
	doJSONRequest[dto.AgentLoginResponse](t, fx.handler, http.MethodPost, "/api/agent/login", map[string]string{
		"username": "ravi",
		"password": "N3wPass!",
	}, nil, http.StatusOK)
	noPassword := doJSONRequest[ApiMessageResponse](t, fx.handler, http.MethodPut, "/api/agent/"+created.Agent.ID+"/password", map[string]string{}, admin, http.StatusBadRequest)
	if noPassword.Message != "Password is required." {
		t.Fatalf("unexpected message %q", noPassword.Message)
	}

	logout := doJSONRequest[dto.SuccessResponse](t, fx.handler, http.MethodPost, "/api/agent/logout", nil, agentHeaders, http.StatusOK)
	if !logout.Success {
		t.Fatal("expected logout success")
	}
	profile = doJSONRequest[dto.AgentResponse](t, fx.handler, http.MethodGet, "/api/agent/profile", nil, agentHeaders, http.StatusOK)
	if profile.Status != "offline" {
		t.Fatalf("expected offline after logout, got %s", profile.Status)
	}

	deleted := doJSONRequest[dto.SuccessResponse](t, fx.handler, http.MethodDelete, "/api/agent/"+created.Agent.ID, nil, admin, http.StatusOK)
	if !deleted.Success {
		t.Fatal("expected delete success")
	}
	gone := doJSONRequest[ApiMessageResponse](t, fx.handler, http.MethodDelete, "/api/agent/"+created.Agent.ID, nil, admin, http.StatusNotFound)
	if gone.Message != "Agent not found." {
		t.Fatalf("unexpected message %q", gone.Message)
	}
}

func TestAgentResponsesNeverCarryPasswords(t *testing.T) {
	fx, cleanup := setupAgentHandler(t)
	defer cleanup()

	admin := fx.adminHeaders(t)
	doJSONRequest[dto.CreateAgentResponse](t, fx.handler, http.MethodPost, "/api/agent", map[string]string{
		"name":     "Meera",
		"username": "meera",
		"password": "Agent123!",
	}, admin, http.StatusCreated)

	req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
	for k, v := range admin {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	body := strings.ToLower(rec.Body.String())
	if rec.Code != http.StatusOK || strings.Contains(body, "password") {
		t.Fatalf("unexpected agents body (%d): %s", rec.Code, body)
	}
}
