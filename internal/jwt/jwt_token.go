package jwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"support-desk/utils"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt"
)

var ErrRefreshUnavailable = errors.New("refresh token store not configured")

func appendRoleChar(token string, role Role) string {
	return token + expectedRoleChar(role)
}

func expectedRoleChar(role Role) string {
	switch role {
	case RoleAgent:
		return "1"
	case RoleAdmin:
		return "2"
	}
	return ""
}

func CreateToken(user User, role Role, validUntil int64) (string, error) {
	secret, ok := secretFor(role)
	if !ok {
		return "", fmt.Errorf("invalid role specified")
	}

	if validUntil == 0 {
		validUntil = time.Now().Add(accessTTL()).Unix()
	}

	claims := jwt.MapClaims{
		"id":       user.Id,
		"username": user.Username,
		"role":     role.String(),
		"exp":      validUntil,
	}
	if user.Name != "" {
		claims["name"] = user.Name
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return appendRoleChar(tokenString, role), nil
}

func CreateTokenWithRefresh(user User, role Role, validUntil int64) (TokenResponse, error) {
	if RedisClient == nil {
		return TokenResponse{}, ErrRefreshUnavailable
	}

	accessToken, err := CreateToken(user, role, validUntil)
	if err != nil {
		return TokenResponse{}, err
	}

	refreshTokenRaw, err := utils.NewRefreshToken()
	if err != nil {
		return TokenResponse{}, err
	}
	refreshToken := appendRoleChar(refreshTokenRaw, role)

	userData := map[string]string{
		"id":       user.Id,
		"username": user.Username,
		"name":     user.Name,
	}
	userDataJSON, _ := json.Marshal(userData)

	err = RedisClient.Set(context.Background(), refreshKeyPrefix+refreshTokenRaw, userDataJSON, RefreshTokenTTL).Err()
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ParseToken validates an access token issued for role and returns its claims.
func ParseToken(tokenString string, role Role) (jwt.MapClaims, error) {
	if len(tokenString) == 0 {
		return nil, fmt.Errorf("token string is empty")
	}

	if tokenString[len(tokenString)-1:] != expectedRoleChar(role) {
		return nil, fmt.Errorf("invalid role character in token")
	}
	tokenString = tokenString[:len(tokenString)-1]

	secret, ok := secretFor(role)
	if !ok {
		return nil, fmt.Errorf("invalid role specified")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("unauthorized: %v", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid - unauthorized")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("claims of unauthorized type")
	}

	return claims, nil
}

// ParseAnyToken tries every role in turn and returns the first that validates.
func ParseAnyToken(tokenString string, roles ...Role) (jwt.MapClaims, Role, error) {
	var lastErr error
	for _, role := range roles {
		claims, err := ParseToken(tokenString, role)
		if err == nil {
			return claims, role, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no roles to check")
	}
	return nil, 0, lastErr
}

func RefreshToken(refreshToken string, role Role) (string, error) {
	if RedisClient == nil {
		return "", ErrRefreshUnavailable
	}
	if len(refreshToken) == 0 {
		return "", fmt.Errorf("refresh token is empty")
	}
	if refreshToken[len(refreshToken)-1:] != expectedRoleChar(role) {
		return "", fmt.Errorf("invalid role character in refresh token")
	}
	key := refreshKeyPrefix + refreshToken[:len(refreshToken)-1]

	val, err := RedisClient.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("invalid refresh token")
	} else if err != nil {
		return "", err
	}

	var userData map[string]string
	if err := json.Unmarshal([]byte(val), &userData); err != nil {
		return "", fmt.Errorf("invalid token data")
	}

	user := User{
		Id:       userData["id"],
		Username: userData["username"],
		Name:     userData["name"],
	}

	err = RedisClient.Expire(context.Background(), key, RefreshTokenTTL).Err()
	if err != nil {
		return "", fmt.Errorf("failed to update refresh token expiration: %v", err)
	}

	return CreateToken(user, role, 0)
}

// RevokeRefreshToken drops a refresh token so it can no longer mint access tokens.
func RevokeRefreshToken(refreshToken string) error {
	if RedisClient == nil || len(refreshToken) < 2 {
		return nil
	}
	return RedisClient.Del(context.Background(), refreshKeyPrefix+refreshToken[:len(refreshToken)-1]).Err()
}
