package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/survey-api/internal/models"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
)

func TestAdminLoginWithPlainPassword(t *testing.T) {
	svc, err := NewAuthService(nil, nil, AuthConfig{Secret: "secret", Expiry: time.Hour, Issuer: "survey-api", AdminPassword: "letmein"})
	require.NoError(t, err)

	resp, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "letmein"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "survey-api", claims.Issuer)
}

func TestAdminLoginHashWinsOverPlain(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-one"), bcrypt.MinCost)
	require.NoError(t, err)
	svc, err := NewAuthService(nil, nil, AuthConfig{Secret: "secret", AdminPassword: "plain-one", AdminPasswordHash: string(hash)})
	require.NoError(t, err)

	_, err = svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "plain-one"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "hashed-one"})
	assert.NoError(t, err)
}

func TestAdminLoginRejectsEmptyAndDisabled(t *testing.T) {
	svc, err := NewAuthService(nil, nil, AuthConfig{Secret: "secret"})
	require.NoError(t, err)

	_, err = svc.AdminLogin(context.Background(), models.AdminLoginRequest{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "anything"})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	svc, err := NewAuthService(nil, nil, AuthConfig{Secret: "secret", Expiry: time.Minute, AdminPassword: "pw"})
	require.NoError(t, err)
	resp, err := svc.AdminLogin(context.Background(), models.AdminLoginRequest{Password: "pw"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(resp.AccessToken)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{Role: models.RoleAdmin}).SignedString([]byte("other"))
	require.NoError(t, err)
	svc.now = time.Now
	_, err = svc.ValidateToken(foreign)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
