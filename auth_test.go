package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func TestAnonymousSignIn_TokenGrantsAccess(t *testing.T) {
	env := newTestEnv(t)
	token, userID := env.signIn(t)
	if token == "" || userID == "" {
		t.Fatalf("expected token and user id, got %q / %q", token, userID)
	}

	w := env.do(http.MethodGet, "/api/profile", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	env := newTestEnv(t)

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "someone",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString(env.h.jwtSecret)
	foreign, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "someone",
	}).SignedString([]byte("another-secret"))

	cases := []struct {
		name, header string
	}{
		{"no header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong secret", "Bearer " + foreign},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			env.router.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestAuthMiddleware_QueryToken(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.signIn(t)

	w := env.do(http.MethodGet, "/api/profile?token="+token, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with query token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	username, hashStr := "lifter", string(hash)
	u, _ := env.store.CreateUser(context.Background(), &username, &hashStr)

	t.Run("valid credentials", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/login", "", `{"username":"lifter","password":"hunter2"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp struct {
			Token  string `json:"token"`
			UserID string `json:"user_id"`
		}
		decode(t, w, &resp)
		if resp.UserID != u.ID {
			t.Errorf("user_id = %q, want %q", resp.UserID, u.ID)
		}
		if sub, err := env.h.parseToken(resp.Token); err != nil || sub != u.ID {
			t.Errorf("token subject = %q (err %v), want %q", sub, err, u.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/login", "", `{"username":"lifter","password":"nope"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		w := env.do(http.MethodPost, "/api/login", "", `{"username":"ghost","password":"hunter2"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})
}
