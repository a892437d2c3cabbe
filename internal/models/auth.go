package models

import "github.com/golang-jwt/jwt/v5"

// RoleAdmin is the only role issued by the admin gate.
const RoleAdmin = "admin"

// AdminLoginRequest carries the admin portal password.
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// AdminLoginResponse returns the issued access token.
type AdminLoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// JWTClaims represents the JWT payload used by the API.
type JWTClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}
