package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"support-desk/internal/database"
	internaljwt "support-desk/internal/jwt"
	"support-desk/internal/model"
	"support-desk/utils"

	"github.com/google/uuid"
)

type Service struct {
	repo       Repository
	now        func() time.Time
	newAgentID func() string
}

var createTokenWithRefresh = internaljwt.CreateTokenWithRefresh

func SetTokenIssuer(issuer func(internaljwt.User, internaljwt.Role, int64) (internaljwt.TokenResponse, error)) {
	if issuer == nil {
		createTokenWithRefresh = internaljwt.CreateTokenWithRefresh
		return
	}
	createTokenWithRefresh = issuer
}

func New(db *database.Database) *Service {
	return NewWithRepository(NewRepository(db), time.Now)
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:       repo,
		now:        now,
		newAgentID: utils.GenerateAgentID,
	}
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Service) Create(ctx context.Context, params CreateParams) (model.AgentItem, error) {
	name := strings.TrimSpace(params.Name)
	username := strings.TrimSpace(params.Username)
	if name == "" || username == "" || params.Password == "" {
		return model.AgentItem{}, newError(ErrorCodeValidation, "Name, username, and password are required.", nil)
	}

	if _, err := s.repo.GetAgentByUsername(ctx, username); err == nil {
		return model.AgentItem{}, newError(ErrorCodeValidation, "Username already exists.", nil)
	} else if !errors.Is(err, ErrNotFound) {
		return model.AgentItem{}, newError(ErrorCodeInternal, "failed to look up agent", err)
	}

	hash, err := internaljwt.HashPassword(params.Password)
	if err != nil {
		return model.AgentItem{}, newError(ErrorCodeInternal, "failed to hash password", err)
	}

	now := s.timestamp()
	agent := model.AgentItem{
		ID:           uuid.NewString(),
		AgentID:      s.newAgentID(),
		Name:         name,
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleAgent,
		Status:       model.AgentStatusOffline,
		ActiveChats:  []string{},
		LastActive:   now,
		CreatedAt:    now,
	}

	if err := s.repo.CreateAgent(ctx, agent); err != nil {
		if errors.Is(err, ErrConflict) {
			return model.AgentItem{}, newError(ErrorCodeValidation, "Username already exists.", err)
		}
		return model.AgentItem{}, newError(ErrorCodeInternal, "failed to create agent", err)
	}
	return agent, nil
}

func (s *Service) List(ctx context.Context) ([]model.AgentItem, error) {
	agents, err := s.repo.ListAgents(ctx)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list agents", err)
	}
	return agents, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteAgent(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "Agent not found.", err)
		}
		return newError(ErrorCodeInternal, "failed to delete agent", err)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, id, password string) error {
	if password == "" {
		return newError(ErrorCodeValidation, "Password is required.", nil)
	}
	hash, err := internaljwt.HashPassword(password)
	if err != nil {
		return newError(ErrorCodeInternal, "failed to hash password", err)
	}
	if _, err := s.repo.UpdateAgent(ctx, id, AgentUpdate{PasswordHash: &hash}); err != nil {
		if errors.Is(err, ErrNotFound) {
			return newError(ErrorCodeNotFound, "Agent not found.", err)
		}
		return newError(ErrorCodeInternal, "failed to update password", err)
	}
	return nil
}

// Login checks the credentials, marks the agent online and issues tokens.
// The token id claim carries the public agent id.
func (s *Service) Login(ctx context.Context, params LoginParams) (LoginResult, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" || params.Password == "" {
		return LoginResult{}, newError(ErrorCodeUnauthorized, "Invalid credentials", nil)
	}

	agent, err := s.repo.GetAgentByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoginResult{}, newError(ErrorCodeUnauthorized, "Invalid credentials", err)
		}
		return LoginResult{}, newError(ErrorCodeInternal, "failed to look up agent", err)
	}
	if !internaljwt.ValidatePassword(agent.PasswordHash, params.Password) {
		return LoginResult{}, newError(ErrorCodeUnauthorized, "Invalid credentials", nil)
	}

	online := model.AgentStatusOnline
	now := s.timestamp()
	agent, err = s.repo.UpdateAgent(ctx, agent.ID, AgentUpdate{Status: &online, LastActive: &now})
	if err != nil {
		return LoginResult{}, newError(ErrorCodeInternal, "failed to update agent status", err)
	}

	tokens, err := createTokenWithRefresh(internaljwt.User{
		Id:       agent.AgentID,
		Username: agent.Username,
		Name:     agent.Name,
		Role:     agent.Role,
	}, internaljwt.RoleAgent, 0)
	if err != nil {
		return LoginResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}

	return LoginResult{Agent: agent, Tokens: tokens}, nil
}

func (s *Service) Refresh(refreshToken string) (string, error) {
	token, err := internaljwt.RefreshToken(strings.TrimSpace(refreshToken), internaljwt.RoleAgent)
	if err != nil {
		return "", newError(ErrorCodeUnauthorized, "Invalid refresh token", err)
	}
	return token, nil
}

func (s *Service) Logout(ctx context.Context, agentID string) error {
	offline := model.AgentStatusOffline
	_, err := s.updateByAgentID(ctx, agentID, AgentUpdate{Status: &offline})
	return err
}

func (s *Service) Profile(ctx context.Context, agentID string) (model.AgentItem, error) {
	return s.GetByAgentID(ctx, agentID)
}

func (s *Service) GetByAgentID(ctx context.Context, agentID string) (model.AgentItem, error) {
	agent, err := s.repo.GetAgentByAgentID(ctx, strings.TrimSpace(agentID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.AgentItem{}, newError(ErrorCodeNotFound, "Agent not found.", err)
		}
		return model.AgentItem{}, newError(ErrorCodeInternal, "failed to load agent", err)
	}
	return agent, nil
}

func (s *Service) SetStatus(ctx context.Context, agentID, status string) (model.AgentItem, error) {
	next := model.AgentStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return model.AgentItem{}, newError(ErrorCodeValidation, "Invalid status", nil)
	}
	now := s.timestamp()
	return s.updateByAgentID(ctx, agentID, AgentUpdate{Status: &next, LastActive: &now})
}

// Connect marks the agent online when its socket registers.
func (s *Service) Connect(ctx context.Context, agentID string) (model.AgentItem, error) {
	online := model.AgentStatusOnline
	now := s.timestamp()
	return s.updateByAgentID(ctx, agentID, AgentUpdate{Status: &online, LastActive: &now})
}

// Disconnect marks the agent offline and forgets its active chats, which the
// caller closes.
func (s *Service) Disconnect(ctx context.Context, agentID string) (model.AgentItem, error) {
	offline := model.AgentStatusOffline
	now := s.timestamp()
	return s.updateByAgentID(ctx, agentID, AgentUpdate{Status: &offline, LastActive: &now, ClearActiveChats: true})
}

// AssignChat records chatID as one of the agent's active chats and marks it busy.
func (s *Service) AssignChat(ctx context.Context, agentID, chatID string) (model.AgentItem, error) {
	busy := model.AgentStatusBusy
	now := s.timestamp()
	return s.updateByAgentID(ctx, agentID, AgentUpdate{Status: &busy, LastActive: &now, PushActiveChat: chatID})
}

// MarkIdleOffline sets offline every agent that is not offline yet, was last
// active before now-idleAfter and has no live socket according to isLive.
func (s *Service) MarkIdleOffline(ctx context.Context, idleAfter time.Duration, isLive func(agentID string) bool) (int, error) {
	agents, err := s.repo.ListAgents(ctx)
	if err != nil {
		return 0, newError(ErrorCodeInternal, "failed to list agents", err)
	}

	cutoff := s.timestamp().Add(-idleAfter)
	offline := model.AgentStatusOffline
	var swept int
	var errs []error
	for _, agent := range agents {
		if agent.Status == model.AgentStatusOffline || !agent.LastActive.Before(cutoff) {
			continue
		}
		if isLive != nil && isLive(agent.AgentID) {
			continue
		}
		if _, err := s.repo.UpdateAgent(ctx, agent.ID, AgentUpdate{Status: &offline}); err != nil {
			errs = append(errs, err)
			continue
		}
		swept++
	}
	if len(errs) > 0 {
		return swept, newError(ErrorCodeInternal, "failed to sweep idle agents", errors.Join(errs...))
	}
	return swept, nil
}

func (s *Service) updateByAgentID(ctx context.Context, agentID string, update AgentUpdate) (model.AgentItem, error) {
	agent, err := s.GetByAgentID(ctx, agentID)
	if err != nil {
		return model.AgentItem{}, err
	}
	updated, err := s.repo.UpdateAgent(ctx, agent.ID, update)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.AgentItem{}, newError(ErrorCodeNotFound, "Agent not found.", err)
		}
		return model.AgentItem{}, newError(ErrorCodeInternal, "failed to update agent", err)
	}
	return updated, nil
}
