// Copyright (C) 2025 asap007
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSecret = []byte("test-session-secret")

func signToken(t *testing.T, secret []byte, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return token
}

func validClaims(subject string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
}

func authRouter(verifier SessionVerifier) *gin.Engine {
	router := gin.New()
	router.Use(AuthMiddleware(verifier))
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})
	return router
}

func TestJWTVerifier(t *testing.T) {
	verifier := NewJWTVerifier(testSecret)

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, testSecret, validClaims("u1"))
		userID, err := verifier.Verify(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "u1", userID)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := verifier.Verify(context.Background(), "")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, []byte("someone-else"), validClaims("u1"))
		_, err := verifier.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims("u1")
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		token := signToken(t, testSecret, claims)
		_, err := verifier.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := validClaims("")
		token := signToken(t, testSecret, claims)
		_, err := verifier.Verify(context.Background(), token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := verifier.Verify(context.Background(), "not.a.jwt")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthMiddleware_SetsUserForValidBearer(t *testing.T) {
	router := authRouter(NewJWTVerifier(testSecret))
	token := signToken(t, testSecret, validClaims("u1"))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
}

func TestAuthMiddleware_RejectsBadRequests(t *testing.T) {
	router := authRouter(NewJWTVerifier(testSecret))
	token := signToken(t, testSecret, validClaims("u1"))

	cases := map[string]string{
		"no header":      "",
		"not bearer":     "Basic dXNlcjpwYXNz",
		"missing token":  "Bearer",
		"invalid token":  "Bearer garbage",
		"wrong scheme":   "Token " + token,
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_BearerPrefixIsCaseInsensitive(t *testing.T) {
	router := authRouter(NewJWTVerifier(testSecret))
	token := signToken(t, testSecret, validClaims("u1"))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID_EchoesIncomingID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
}

func TestRequestID_AssignsWhenMissing(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}
