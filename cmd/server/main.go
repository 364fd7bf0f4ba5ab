package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"timeclock/internal/api/routes"
	"timeclock/internal/config"
	"timeclock/internal/jobs"
	"timeclock/internal/logger"
	"timeclock/internal/services"
	"timeclock/internal/store"
	"timeclock/internal/timeclock"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", envOr("TIMECLOCK_CONFIG", "configs/config.yaml"), "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log)

	clock, err := timeclock.LoadClock(cfg.Clock.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone: %v", err)
	}

	// Initialize database
	st, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	notifier := services.NewNotifier(cfg.Discord, clock)
	records, err := services.NewRecordService(cfg, st, clock, notifier)
	if err != nil {
		log.Fatalf("Failed to create record service: %v", err)
	}
	svc := routes.Services{
		Auth:      services.NewAuthService(cfg, st, clock),
		Audit:     services.NewAuditService(st),
		Employees: services.NewEmployeeService(st),
		Records:   records,
		Reports:   services.NewReportService(st, clock),
		Dashboard: services.NewDashboardService(st, clock),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create default admin if none exists
	if err := svc.Auth.CreateDefaultAdmin(ctx); err != nil {
		logger.Warn("failed to create default admin", "err", err)
	}

	runner, err := backgroundJobs(cfg, clock, svc)
	if err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}
	runner.Start(ctx)

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	routes.SetupRoutes(r, cfg, clock, svc)
	serveFrontend(r, cfg.Server.StaticDir)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("starting time clock server", "addr", srv.Addr, "timezone", cfg.Clock.Timezone, "store", cfg.Database.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	runner.Wait()
}

func backgroundJobs(cfg *config.Config, clock *timeclock.Clock, svc routes.Services) (*jobs.Runner, error) {
	runner := jobs.NewRunner()

	if cfg.AutoClockOut.Enabled {
		autoClockOut, err := services.NewAutoClockOut(cfg.AutoClockOut, svc.Records, clock)
		if err != nil {
			return nil, err
		}
		runner.Every(config.Duration(cfg.AutoClockOut.PollInterval, time.Minute), autoClockOut)
		logger.Info("auto clock-out scheduled", "time", cfg.AutoClockOut.Time, "timezone", cfg.Clock.Timezone)
	}

	runner.Every(time.Hour, jobs.Func{
		JobName: "session-sweep",
		Fn: func(ctx context.Context) error {
			n, err := svc.Auth.DeleteExpiredSessions(ctx)
			if err == nil && n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
			return err
		},
	})
	return runner, nil
}

// serveFrontend serves the built keypad/admin SPA with index.html fallback.
func serveFrontend(r *gin.Engine, dir string) {
	if dir == "" {
		return
	}
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		logger.Warn("frontend not found, serving API only", "dir", dir)
		return
	}

	r.Static("/assets", filepath.Join(dir, "assets"))
	r.StaticFile("/favicon.ico", filepath.Join(dir, "favicon.ico"))
	r.StaticFile("/manifest.json", filepath.Join(dir, "manifest.json"))
	r.GET("/", func(c *gin.Context) {
		c.File(index)
	})
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.JSON(404, gin.H{"error": "endpoint not found"})
			return
		}
		c.File(index)
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
