package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"welearn/internal/config"
	"welearn/internal/domain"
	"welearn/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthCfg = config.AuthConfig{
	JWTSecret: "testsecretkeydontuseinproduction32bytes!",
	Issuer:    "welearn",
}

func TestNewAuthService_ShortSecret(t *testing.T) {
	_, err := NewAuthService(config.AuthConfig{JWTSecret: "short"})
	assert.Error(t, err)
}

func TestAuthService_RoundTrip(t *testing.T) {
	svc, err := NewAuthService(testAuthCfg)
	require.NoError(t, err)

	token, err := svc.CreateJWT(context.Background(), "01HZY3K6W8V3N1R9T5Q2M4B7XA", domain.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateJWT(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "01HZY3K6W8V3N1R9T5Q2M4B7XA", claims.UserID)
	assert.Equal(t, string(domain.RoleAdmin), claims.Role)
	assert.Equal(t, "welearn", claims.Issuer)
}

func TestAuthService_ValidateJWT_Rejects(t *testing.T) {
	svc, err := NewAuthService(testAuthCfg)
	require.NoError(t, err)
	ctx := context.Background()

	sign := func(secret string, claims dto.AuthClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	valid := func() dto.AuthClaims {
		return dto.AuthClaims{
			UserID:    "u1",
			Role:      "user",
			TokenType: "access",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "welearn",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	refresh := valid()
	refresh.TokenType = "refresh"
	badRole := valid()
	badRole.Role = "root"
	otherIssuer := valid()
	otherIssuer.Issuer = "someone-else"

	tests := map[string]string{
		"garbage":       "not-a-token",
		"wrong secret":  sign("anothersecretkeythatisthirtytwobytes!!", valid()),
		"expired":       sign(testAuthCfg.JWTSecret, expired),
		"refresh token": sign(testAuthCfg.JWTSecret, refresh),
		"unknown role":  sign(testAuthCfg.JWTSecret, badRole),
		"other issuer":  sign(testAuthCfg.JWTSecret, otherIssuer),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateJWT(ctx, token)
			assert.True(t, errors.Is(err, ErrInvalidJWTToken), "got %v", err)
		})
	}

	_, err = svc.ValidateJWT(ctx, sign(testAuthCfg.JWTSecret, valid()))
	assert.NoError(t, err)
}
