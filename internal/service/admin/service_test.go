package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	internaljwt "support-desk/internal/jwt"
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

func expectCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if svcErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, svcErr.Code, svcErr.Message)
	}
}

func TestLoginAndVerify(t *testing.T) {
	setupTestJWT(t)
	svc := NewWithRepository(NewMemoryRepository(), fixedNow)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateParams{Username: "root", Password: "pa55", Name: "Root"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	result, err := svc.Login(ctx, "root", "pa55")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := internaljwt.ParseToken(result.Tokens.AccessToken, internaljwt.RoleAdmin)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["id"] != created.ID || claims["role"] != "admin" {
		t.Fatalf("unexpected claims: %v", claims)
	}

	admin, err := svc.Verify(ctx, created.ID)
	if err != nil || admin.Username != "root" {
		t.Fatalf("verify: %v %#v", err, admin)
	}

	_, err = svc.Verify(ctx, "missing")
	expectCode(t, err, ErrorCodeUnauthorized)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	setupTestJWT(t)
	svc := NewWithRepository(NewMemoryRepository(), fixedNow)
	if _, err := svc.Create(context.Background(), CreateParams{Username: "root", Password: "pa55"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.Login(context.Background(), "root", "nope")
	expectCode(t, err, ErrorCodeUnauthorized)

	_, err = svc.Login(context.Background(), "", "")
	expectCode(t, err, ErrorCodeUnauthorized)
}

func TestCreateDuplicateUsername(t *testing.T) {
	svc := NewWithRepository(NewMemoryRepository(), fixedNow)
	if _, err := svc.Create(context.Background(), CreateParams{Username: "root", Password: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(context.Background(), CreateParams{Username: "root", Password: "b"})
	expectCode(t, err, ErrorCodeConflict)
}

func TestRefreshWithoutStore(t *testing.T) {
	svc := NewWithRepository(NewMemoryRepository(), fixedNow)
	_, err := svc.Refresh("whatever2")
	expectCode(t, err, ErrorCodeUnauthorized)
}
