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

	"admissions-crm/internal/ai"
	"admissions-crm/internal/audit"
	"admissions-crm/internal/auth"
	"admissions-crm/internal/callrecords"
	"admissions-crm/internal/config"
	"admissions-crm/internal/httpapi"
	"admissions-crm/internal/leads"
	"admissions-crm/internal/reporting"
	"admissions-crm/internal/session"
	"admissions-crm/pkg/logger"
	"admissions-crm/pkg/utils"

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

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	aiClient, err := ai.NewHTTPClient(ai.HTTPClientConfig{
		BaseURL: cfg.AI.BaseURL,
		APIKey:  cfg.AI.APIKey,
		Timeout: cfg.AI.Timeout,
	})
	if err != nil {
		log.Error("ai client init failed", "err", err)
		os.Exit(1)
	}

	leadRepo := leads.NewPostgresRepo(db)
	recordRepo := callrecords.NewPostgresRepo(db)
	recordSvc := callrecords.NewService(recordRepo)
	auditSvc := audit.NewService(audit.NewMemoryRepo())
	reportSvc := reporting.NewService(recordRepo)

	sessions := session.NewManager(session.Config{
		ConnectDelay:    time.Duration(cfg.Session.ConnectDelayMs) * time.Millisecond,
		WrapUpSeconds:   cfg.Session.WrapUpSeconds,
		AutoEndWrapUp:   cfg.Session.AutoEndWrapUp,
		AnalyzeDebounce: time.Duration(cfg.Session.AnalyzeDebounceMs) * time.Millisecond,
		ScriptDebounce:  time.Duration(cfg.Session.ScriptDebounceMs) * time.Millisecond,
		DraftDebounce:   time.Duration(cfg.Session.DraftDebounceMs) * time.Millisecond,
	}, session.ManagerDeps{
		Client:  aiClient,
		Leads:   leadRepo,
		Records: recordSvc,
		Audit:   auditSvc,
		Redis:   rdb,
		Logger:  log,
	})

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	h := httpapi.Handlers{
		Auth:      authManager,
		Sessions:  sessions,
		Leads:     leadRepo,
		Records:   recordSvc,
		Reporting: reportSvc,
	}
	registerRoutes(r, h, auth.RequireAccessToken(authManager))

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

	// Open composers flush final drafts and release lead slots before exit.
	sessions.CloseAll(shutdownCtx)

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
