package endpoints

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"support-desk/internal/database"
	"support-desk/internal/dto"
	internaljwt "support-desk/internal/jwt"
	agentsvc "support-desk/internal/service/agent"
	chatsvc "support-desk/internal/service/chat"
)

type AgentEndpoints interface {
	Login(http.ResponseWriter, *http.Request) error
	Logout(http.ResponseWriter, *http.Request) error
	Refresh(http.ResponseWriter, *http.Request) error
	Profile(http.ResponseWriter, *http.Request) error
	Status(http.ResponseWriter, *http.Request) error
	Chats(http.ResponseWriter, *http.Request) error
	List(http.ResponseWriter, *http.Request) error
	Create(http.ResponseWriter, *http.Request) error
	Delete(http.ResponseWriter, *http.Request) error
	Password(http.ResponseWriter, *http.Request) error
	Stats(http.ResponseWriter, *http.Request) error
}

type agentEndpoints struct {
	service *agentsvc.Service
	chats   *chatsvc.Service
}

func NewAgentEndpoints(db *database.Database) AgentEndpoints {
	return &agentEndpoints{
		service: agentsvc.New(db),
		chats:   chatsvc.New(db),
	}
}

func (h *agentEndpoints) Login(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleLogin,
	})
}

func (h *agentEndpoints) Logout(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleLogout,
	})
}

func (h *agentEndpoints) Refresh(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleRefresh,
	})
}

func (h *agentEndpoints) Profile(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleProfile,
	})
}

func (h *agentEndpoints) Status(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPatch: h.handleStatus,
	})
}

func (h *agentEndpoints) Chats(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleChats,
	})
}

func (h *agentEndpoints) List(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleList,
	})
}

func (h *agentEndpoints) Create(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleCreate,
	})
}

func (h *agentEndpoints) Delete(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodDelete: h.handleDelete,
	})
}

func (h *agentEndpoints) Password(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPut: h.handlePassword,
	})
}

func (h *agentEndpoints) Stats(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleStats,
	})
}

func (h *agentEndpoints) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req dto.LoginRequest
	if err := decodeBody(r, &req, "agent login"); err != nil {
		return err
	}

	result, err := h.service.Login(r.Context(), agentsvc.LoginParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.AgentLoginResponse{
		Token:        result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		Agent:        dto.ToAgentResponse(result.Agent),
	})
}

// handleLogout sets the agent offline. A refresh token in the body is revoked.
func (h *agentEndpoints) handleLogout(w http.ResponseWriter, r *http.Request) error {
	agentID, err := callerID(r)
	if err != nil {
		return err
	}

	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Invalid request payload",
			ErrorLog:   err,
		}
	}

	if err := h.service.Logout(r.Context(), agentID); err != nil {
		return serviceError(err)
	}

	if req.RefreshToken != "" {
		if err := internaljwt.RevokeRefreshToken(req.RefreshToken); err != nil && !errors.Is(err, internaljwt.ErrRefreshUnavailable) {
			log.Printf("[AGENT] revoke refresh token for %s: %v", agentID, err)
		}
	}

	return WriteJSON(w, http.StatusOK, dto.SuccessResponse{Success: true, Message: "Logged out successfully"})
}

func (h *agentEndpoints) handleRefresh(w http.ResponseWriter, r *http.Request) error {
	var req dto.RefreshRequest
	if err := decodeBody(r, &req, "agent refresh"); err != nil {
		return err
	}

	token, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.RefreshResponse{Token: token})
}

func (h *agentEndpoints) handleProfile(w http.ResponseWriter, r *http.Request) error {
	agentID, err := callerID(r)
	if err != nil {
		return err
	}

	agent, err := h.service.Profile(r.Context(), agentID)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.ToAgentResponse(agent))
}

func (h *agentEndpoints) handleStatus(w http.ResponseWriter, r *http.Request) error {
	agentID, err := callerID(r)
	if err != nil {
		return err
	}

	var req dto.StatusRequest
	if err := decodeBody(r, &req, "agent status"); err != nil {
		return err
	}

	agent, err := h.service.SetStatus(r.Context(), agentID, req.Status)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.ToAgentResponse(agent))
}

func (h *agentEndpoints) handleChats(w http.ResponseWriter, r *http.Request) error {
	agentID, err := callerID(r)
	if err != nil {
		return err
	}

	chats, err := h.chats.AgentChats(r.Context(), agentID)
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.ToChatResponses(chats))
}

func (h *agentEndpoints) handleList(w http.ResponseWriter, r *http.Request) error {
	agents, err := h.service.List(r.Context())
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.ToAgentResponses(agents))
}

func (h *agentEndpoints) handleCreate(w http.ResponseWriter, r *http.Request) error {
	var req dto.CreateAgentRequest
	if err := decodeBody(r, &req, "create agent"); err != nil {
		return err
	}

	agent, err := h.service.Create(r.Context(), agentsvc.CreateParams{
		Name:     req.Name,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusCreated, dto.CreateAgentResponse{Success: true, Agent: dto.ToAgentResponse(agent)})
}

func (h *agentEndpoints) handleDelete(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *agentEndpoints) handlePassword(w http.ResponseWriter, r *http.Request) error {
	var req dto.ChangePasswordRequest
	if err := decodeBody(r, &req, "change password"); err != nil {
		return err
	}

	if err := h.service.ChangePassword(r.Context(), r.PathValue("id"), req.Password); err != nil {
		return serviceError(err)
	}
	return WriteJSON(w, http.StatusOK, dto.SuccessResponse{Success: true, Message: "Password updated successfully"})
}

func (h *agentEndpoints) handleStats(w http.ResponseWriter, r *http.Request) error {
	agent, err := h.service.GetByAgentID(r.Context(), r.PathValue("agentId"))
	if err != nil {
		return serviceError(err)
	}

	counts, err := h.chats.CountAgentChats(r.Context(), agent.AgentID)
	if err != nil {
		return serviceError(err)
	}

	return WriteJSON(w, http.StatusOK, dto.AgentStatsResponse{
		Agent:       dto.ToAgentResponse(agent),
		ActiveChats: counts.Active,
		TotalChats:  counts.Total,
	})
}
