package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"support-desk/internal/database"
	internaljwt "support-desk/internal/jwt"
	"support-desk/internal/model"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorCodeValidation   ErrorCode = "validation_error"
	ErrorCodeUnauthorized ErrorCode = "unauthorized"
	ErrorCodeNotFound     ErrorCode = "not_found"
	ErrorCodeConflict     ErrorCode = "conflict"
	ErrorCodeInternal     ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
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
	Username string
	Password string
	Name     string
}

type LoginResult struct {
	Admin  model.AdminItem
	Tokens internaljwt.TokenResponse
}

type Service struct {
	repo Repository
	now  func() time.Time
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
	return &Service{repo: repo, now: now}
}

// Create seeds an admin account. It is only reachable from the operator CLI.
func (s *Service) Create(ctx context.Context, params CreateParams) (model.AdminItem, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" || params.Password == "" {
		return model.AdminItem{}, newError(ErrorCodeValidation, "username and password are required", nil)
	}

	hash, err := internaljwt.HashPassword(params.Password)
	if err != nil {
		return model.AdminItem{}, newError(ErrorCodeInternal, "failed to hash password", err)
	}

	admin := model.AdminItem{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         strings.TrimSpace(params.Name),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, ErrConflict) {
			return model.AdminItem{}, newError(ErrorCodeConflict, "Username already exists.", err)
		}
		return model.AdminItem{}, newError(ErrorCodeInternal, "failed to create admin", err)
	}
	return admin, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, newError(ErrorCodeUnauthorized, "Invalid credentials", nil)
	}

	admin, err := s.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoginResult{}, newError(ErrorCodeUnauthorized, "Invalid credentials", err)
		}
		return LoginResult{}, newError(ErrorCodeInternal, "failed to look up admin", err)
	}
	if !internaljwt.ValidatePassword(admin.PasswordHash, password) {
		return LoginResult{}, newError(ErrorCodeUnauthorized, "Invalid credentials", nil)
	}

	tokens, err := createTokenWithRefresh(internaljwt.User{
		Id:       admin.ID,
		Username: admin.Username,
		Name:     admin.Name,
		Role:     admin.Role,
	}, internaljwt.RoleAdmin, 0)
	if err != nil {
		return LoginResult{}, newError(ErrorCodeInternal, "failed to issue tokens", err)
	}
	return LoginResult{Admin: admin, Tokens: tokens}, nil
}

// Verify loads the admin a validated token belongs to.
func (s *Service) Verify(ctx context.Context, adminID string) (model.AdminItem, error) {
	admin, err := s.repo.GetAdmin(ctx, adminID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.AdminItem{}, newError(ErrorCodeUnauthorized, "Invalid token", err)
		}
		return model.AdminItem{}, newError(ErrorCodeInternal, "failed to load admin", err)
	}
	return admin, nil
}

func (s *Service) Refresh(refreshToken string) (string, error) {
	token, err := internaljwt.RefreshToken(strings.TrimSpace(refreshToken), internaljwt.RoleAdmin)
	if err != nil {
		return "", newError(ErrorCodeUnauthorized, "Invalid refresh token", err)
	}
	return token, nil
}
