package jwt

import (
	"strings"
	"testing"
	"time"
)

func setupSecrets(t *testing.T) {
	t.Helper()
	Configure(Settings{AgentSecret: "agent-secret", AdminSecret: "admin-secret"})
}

func TestCreateAndParseAgentToken(t *testing.T) {
	setupSecrets(t)

	token, err := CreateToken(User{Id: "a1", Username: "jane", Name: "Jane"}, RoleAgent, 0)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if !strings.HasSuffix(token, "1") {
		t.Fatalf("expected agent role suffix, got %q", token[len(token)-1:])
	}

	claims, err := ParseToken(token, RoleAgent)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims["id"] != "a1" || claims["username"] != "jane" || claims["role"] != "agent" {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestAgentTokenRejectedAsAdmin(t *testing.T) {
	setupSecrets(t)

	token, err := CreateToken(User{Id: "a1", Username: "jane"}, RoleAgent, 0)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if _, err := ParseToken(token, RoleAdmin); err == nil {
		t.Fatal("expected agent token to be rejected for admin role")
	}

	// Swapping the suffix must still fail on the signature.
	forged := token[:len(token)-1] + "2"
	if _, err := ParseToken(forged, RoleAdmin); err == nil {
		t.Fatal("expected forged admin token to be rejected")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	setupSecrets(t)

	token, err := CreateToken(User{Id: "x"}, RoleAdmin, time.Now().Add(-time.Minute).Unix())
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	if _, err := ParseToken(token, RoleAdmin); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseAnyToken(t *testing.T) {
	setupSecrets(t)

	token, err := CreateToken(User{Id: "root"}, RoleAdmin, 0)
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	_, role, err := ParseAnyToken(token, RoleAgent, RoleAdmin)
	if err != nil {
		t.Fatalf("parse any: %v", err)
	}
	if role != RoleAdmin {
		t.Fatalf("expected admin role, got %s", role)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if hash == "s3cret" || !strings.HasPrefix(hash, "$2a$10$") {
		t.Fatalf("expected bcrypt cost 10 hash, got %q", hash)
	}
	if !ValidatePassword(hash, "s3cret") {
		t.Fatal("expected password to validate")
	}
	if ValidatePassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}

func TestRefreshWithoutStore(t *testing.T) {
	if RedisClient != nil {
		t.Skip("redis client configured")
	}
	if _, err := CreateTokenWithRefresh(User{Id: "a"}, RoleAgent, 0); err != ErrRefreshUnavailable {
		t.Fatalf("expected ErrRefreshUnavailable, got %v", err)
	}
}
