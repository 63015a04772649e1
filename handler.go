package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Handler holds shared dependencies (store, AI client, live hub, logger) for
// all route handlers.
type Handler struct {
	store     Store
	ai        aiCompleter
	hub       *Hub
	log       *zap.Logger
	jwtSecret []byte
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// parseDate validates a YYYY-MM-DD value. An invalid value would otherwise
// silently match no rows.
func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, s)
	return t, err == nil
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// newDBPool creates a connection pool. We use a pool (not a single conn) because
// hosted Postgres closes idle connections after a few minutes.
func newDBPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// requestLogger logs one line per request through zap.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_id", c.GetString("user_id")),
		)
	}
}

// newRouter builds the gin engine with logging, recovery and all routes.
func (h *Handler) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(h.log), gin.Recovery())
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)
	return router
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Public routes
	router.POST("/api/auth/anonymous", h.signInAnonymously)
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.GET("/daily-log", h.getDailyDashboard)
	api.GET("/daily-log/range", h.getDailyRange)
	api.PATCH("/daily-log/:date", h.patchDailyEntry)
	api.POST("/daily-log/:date/foods", h.addFood)
	api.DELETE("/daily-log/:date/foods/:index", h.deleteFood)
	api.POST("/ai/estimate-meal", h.estimateMeal)
	api.POST("/ai/workout-plan", h.generateWorkoutPlan)
	api.POST("/ai/weekly-summary", h.createWeeklySummary)
	api.GET("/ai/weekly-summary", h.getWeeklySummary)
	api.GET("/live", h.live)
}
