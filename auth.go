package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// tokenTTL is how long an issued session token stays valid. An anonymous
// user has no way back to their data once it expires.
const tokenTTL = 365 * 24 * time.Hour

// dummyHash is a pre-computed bcrypt hash used when a login username isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based username enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// issueToken signs an HS256 token whose subject is the user id.
func (h *Handler) issueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}

// parseToken verifies a session token and returns its user id.
func (h *Handler) parseToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return h.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// signInAnonymously creates a user with no credentials and returns a token
// for it. POST /api/auth/anonymous (public).
func (h *Handler) signInAnonymously(c *gin.Context) {
	u, err := h.store.CreateUser(c, nil, nil)
	if err != nil {
		h.log.Error("anonymous sign-in failed", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	h.respondWithToken(c, http.StatusCreated, u.ID)
}

// login verifies username/password and returns a session token.
// POST /api/login (public).
func (h *Handler) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	u, lookupErr := h.store.UserByUsername(c, body.Username)

	// bcrypt always runs so response time does not reveal whether the username
	// exists.
	hashToCheck := string(dummyHash)
	if lookupErr == nil && u.PasswordHash != nil {
		hashToCheck = *u.PasswordHash
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil || u.PasswordHash == nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.respondWithToken(c, http.StatusOK, u.ID)
}

func (h *Handler) respondWithToken(c *gin.Context, status int, userID string) {
	token, err := h.issueToken(userID)
	if err != nil {
		h.log.Error("sign token failed", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}
	c.JSON(status, gin.H{"token": token, "user_id": userID})
}

// authMiddleware validates the Bearer token and sets user_id on the context.
// Websocket clients cannot set headers, so a token query param is accepted
// when the header is absent.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		header := c.GetHeader("Authorization")
		switch {
		case strings.HasPrefix(header, "Bearer "):
			token = strings.TrimPrefix(header, "Bearer ")
		case header == "" && c.Query("token") != "":
			token = c.Query("token")
		default:
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		userID, err := h.parseToken(token)
		if err != nil {
			h.log.Debug("rejected token", zap.Error(err))
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
