package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medicare-assistant/internal/analysis"
	"medicare-assistant/internal/assistant"
	"medicare-assistant/internal/audit"
	"medicare-assistant/internal/auth"
	"medicare-assistant/internal/config"
	"medicare-assistant/internal/gemini"
	"medicare-assistant/internal/httpapi"
	"medicare-assistant/internal/reminder"
	"medicare-assistant/internal/reporting"
	"medicare-assistant/internal/session"
	"medicare-assistant/internal/telephony"
	"medicare-assistant/pkg/logger"
	"medicare-assistant/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	// Session store: redis when configured, in-process memory otherwise.
	var store session.Store = session.NewMemoryStore()
	if cfg.RedisEnabled() {
		rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb)
		log.Info("session store", "backend", "redis", "addr", cfg.RedisAddr())
	} else {
		log.Info("session store", "backend", "memory")
	}

	// Audit trail: postgres when configured, memory otherwise.
	var auditRepo audit.Repository = audit.NewMemoryRepo()
	if cfg.DBEnabled() {
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("postgres init failed", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		auditRepo = audit.NewPostgresRepo(db)
		log.Info("audit store", "backend", "postgres")
	} else {
		log.Info("audit store", "backend", "memory")
	}
	auditSvc := audit.NewService(auditRepo)

	// Telephony provider: a local loopback stands in when Twilio
	// credentials are absent so the rest of the flow stays exercisable.
	var provider telephony.Provider
	if cfg.TwilioConfigured() {
		provider = telephony.NewTwilioProvider(telephony.TwilioOptions{
			AccountSID: cfg.Twilio.AccountSID,
			AuthToken:  cfg.Twilio.AuthToken,
			FromNumber: cfg.Twilio.VoiceFromNumber,
			APIBaseURL: cfg.Twilio.APIBaseURL,
		})
	} else {
		provider = telephony.NewLoopbackProvider()
	}
	log.Info("telephony provider", "name", provider.Name())

	reminderSvc := reminder.NewService(store, provider, reminder.Options{
		Audit:         auditSvc,
		PublicBaseURL: cfg.App.PublicBaseURL,
	})

	var aiClient *gemini.Client
	if cfg.Gemini.APIKey != "" {
		aiClient = gemini.NewClient(cfg.Gemini)
		log.Info("ai engine", "model", cfg.Gemini.Model)
	} else {
		log.Info("ai engine", "model", "none (fallback rules only)")
	}

	handlers := httpapi.Handlers{
		Auth:      authManager,
		Reminder:  reminderSvc,
		Analysis:  analysis.NewEngine(aiClient),
		Assistant: assistant.NewEngine(aiClient),
		Reporting: reporting.NewService(store),
		Audit:     auditSvc,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(httpapi.CORS(cfg.CORSOrigins()))

	registerRoutes(r, handlers, auth.RequireAccessToken(authManager))

	// Stale-session watchdog.
	sweeper := reminder.NewSweeper(store, auditSvc, cfg.Sweep.MaxAge, cfg.Sweep.Interval)
	go sweeper.Run(rootCtx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
