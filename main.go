package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	envErr := loadDotEnv()

	log, err := newLogger(os.Getenv("APP_ENV"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if envErr != nil {
		log.Warn("no .env file found, using system env")
	}

	cfg := loadConfig(log)
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store Store
	if cfg.DBURL == "" {
		log.Warn("DB_URL not set, using in-memory store; data is lost on restart")
		store = newMemoryStore()
	} else {
		pool, err := newDBPool(ctx, cfg.DBURL)
		if err != nil {
			log.Fatal("database unavailable", zap.Error(err))
		}
		defer pool.Close()
		log.Info("DB pool ready")
		store = newPGStore(pool, log)
	}

	h := &Handler{
		store:     store,
		ai:        newOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIKey, cfg.OpenAIModel),
		hub:       NewHub(log),
		log:       log,
		jwtSecret: []byte(cfg.JWTSecret),
	}

	scheduler, err := h.startWeeklySummaryJob(cfg.WeeklySummaryCron)
	if err != nil {
		log.Fatal("invalid WEEKLY_SUMMARY_CRON", zap.String("spec", cfg.WeeklySummaryCron), zap.Error(err))
	}
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
