package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds the admin credential.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminInfo describes the authenticated admin.
type AdminInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session is returned after a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Admin     AdminInfo `json:"admin"`
}

// SessionClaims is the signed payload of an admin session token.
type SessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}
