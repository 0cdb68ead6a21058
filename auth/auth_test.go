package auth

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"teamspace/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const secret = "my_strong_and_long_secret_key_2026"

func TestTokens_Generate_And_Validate(t *testing.T) {
	req := require.New(t)
	tokens := NewTokens(secret, time.Hour)

	signed, err := tokens.Generate("u1", "Alice", "admin")
	req.NoError(err)

	claims, err := tokens.Validate(signed)
	req.NoError(err)
	req.Equal("u1", claims.UserID)
	req.Equal("Alice", claims.Name)
	req.Equal([]string{"admin"}, claims.Roles)
	req.Equal(Issuer, claims.Issuer)
}

func TestTokens_Rejects_Invalid_Tokens(t *testing.T) {
	req := require.New(t)
	tokens := NewTokens(secret, time.Hour)
	other := NewTokens("another_secret_of_decent_length", time.Hour)

	// Given a token signed with another secret
	foreign, err := other.Generate("u1", "Alice")
	req.NoError(err)
	_, err = tokens.Validate(foreign)
	req.ErrorIs(err, errors.ErrInvalidToken)

	// Given an expired token
	expired := NewTokens(secret, time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Generate("u1", "Alice")
	req.NoError(err)
	_, err = tokens.Validate(old)
	req.ErrorIs(err, errors.ErrInvalidToken)
	req.ErrorIs(err, jwt.ErrTokenExpired)

	// Given garbage
	_, err = tokens.Validate("invalid-token-string")
	req.ErrorIs(err, errors.ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	tokens := NewTokens(secret, time.Hour)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	valid, err := tokens.Generate("u1", "Alice")
	require.NoError(t, err)

	var seen *Claims
	handler := Authenticate(tokens, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		target     string
		wantStatus int
	}{
		{"Missing token", "", "/api/boards", http.StatusUnauthorized},
		{"Wrong scheme", "Basic abc", "/api/boards", http.StatusUnauthorized},
		{"Invalid token", "Bearer invalid-token-string", "/api/boards", http.StatusUnauthorized},
		{"Bearer header", "Bearer " + valid, "/api/boards", http.StatusNoContent},
		{"Query parameter for event streams", "", "/api/events?access_token=" + valid, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			seen = nil
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, r)

			req.Equal(tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusNoContent {
				req.NotNil(seen)
				req.Equal("u1", seen.UserID)
			} else {
				req.Nil(seen)
			}
		})
	}
}
