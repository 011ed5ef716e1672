// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the tracker service.
//
// # Authentication Flow
//
// The auth middleware extracts a bearer token from the Authorization header,
// validates it using the configured SessionVerifier, and stores the resulting
// user id in the Gin context for downstream handlers.
//
//	Request
//	   │
//	   ▼
//	AuthMiddleware
//	   │
//	   ├─► Extract token from "Authorization: Bearer <token>"
//	   │
//	   ├─► verifier.Verify(ctx, token)
//	   │
//	   └─► Store user id in context
//	           │
//	           ▼
//	       Handler (retrieves via GetUserID)
//
// Session issuance lives outside this service; only validation happens here.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// userIDKey is the context key for the authenticated user id.
// Using a namespaced key prevents collisions with other context values.
const userIDKey = "tracker_user_id"

// ErrUnauthorized is returned by verifiers for missing or invalid sessions.
var ErrUnauthorized = errors.New("unauthorized")

// SessionVerifier validates a session token and returns the user it belongs to.
type SessionVerifier interface {
	// Verify returns the user id for token, or ErrUnauthorized.
	Verify(ctx context.Context, token string) (string, error)
}

// JWTVerifier validates HS256 session tokens signed with a shared secret.
// The subject claim carries the user id.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for the given signing secret.
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify implements SessionVerifier.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrUnauthorized
	}
	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrUnauthorized
	}
	return subject, nil
}

// SetUserID stores the authenticated user id in the Gin context.
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

// GetUserID retrieves the authenticated user id from the Gin context.
// Returns empty string if the request is not authenticated.
func GetUserID(c *gin.Context) string {
	if v, exists := c.Get(userIDKey); exists {
		if userID, ok := v.(string); ok {
			return userID
		}
	}
	return ""
}

// AuthMiddleware creates a Gin middleware that authenticates requests.
//
// Authentication failures are surfaced directly as 401 responses; they are
// never retried and their results are never cached.
func AuthMiddleware(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)

		userID, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		SetUserID(c, userID)
		c.Next()
	}
}

// extractBearerToken extracts the token from the Authorization header.
// Returns empty string if the header is missing or malformed. The "Bearer"
// prefix is case-insensitive per RFC 7235.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
