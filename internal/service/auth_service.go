package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/survey-api/internal/models"
	appErrors "github.com/noah-isme/survey-api/pkg/errors"
)

// AuthConfig defines the admin gate. AdminPasswordHash wins over
// AdminPassword when both are set.
type AuthConfig struct {
	Secret            string
	Expiry            time.Duration
	Issuer            string
	AdminPassword     string
	AdminPasswordHash string
}

// AuthService issues and validates admin tokens.
type AuthService struct {
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	hash      []byte
	now       func() time.Time
}

// NewAuthService constructs an AuthService. A plain admin password is
// hashed once here so logins always compare against a bcrypt hash.
func NewAuthService(validate *validator.Validate, logger *zap.Logger, config AuthConfig) (*AuthService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Expiry <= 0 {
		config.Expiry = 12 * time.Hour
	}

	svc := &AuthService{validator: validate, logger: logger, config: config, now: time.Now}
	switch {
	case config.AdminPasswordHash != "":
		svc.hash = []byte(config.AdminPasswordHash)
	case config.AdminPassword != "":
		hash, err := bcrypt.GenerateFromPassword([]byte(config.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		svc.hash = hash
	default:
		logger.Warn("admin password is not configured; admin login is disabled")
	}
	return svc, nil
}

// AdminLogin exchanges the admin password for an access token.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.AdminLoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "password is required")
	}
	if len(s.hash) == 0 {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "admin login is disabled")
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(req.Password)); err != nil {
		s.logger.Warn("admin login rejected")
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid password")
	}

	token, err := s.generateAccessToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.AdminLoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.config.Expiry.Seconds()),
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) generateAccessToken() (string, error) {
	issuedAt := s.now().UTC()
	claims := &models.JWTClaims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   models.RoleAdmin,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
}
