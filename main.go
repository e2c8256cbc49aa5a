package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"verifyproxy/config"
	controller "verifyproxy/controllers"
	"verifyproxy/middleware"
	"verifyproxy/routes"
	"verifyproxy/utils"
	"verifyproxy/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.Environment)
	if err := utils.InitSentry(cfg.SentryDSN, cfg.Environment); err != nil {
		logrus.Warnf("Sentry disabled: %v", err)
	}
	defer sentry.Flush(2 * time.Second)

	resolver := utils.NewDNSResolver(cfg.DNS.Server, cfg.DNS.Timeout)
	prober := utils.NewSMTPProber(cfg.SMTP.HeloHostname, cfg.SMTP.Port, cfg.SMTP.Timeout)
	verifier := utils.NewVerifier(resolver, prober, utils.DefaultReferenceSets())

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	verificationController := controller.NewVerificationController(verifier, cfg, logrus.WithField("component", "verify"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweepWorker := worker.NewSweepWorker(limiter, cfg.RateLimit.SweepInterval, logrus.WithField("component", "sweep"))
	go sweepWorker.Start(ctx)

	app := routes.NewApp(cfg)
	routes.SetupRoutes(app, cfg, limiter, verificationController)

	go func() {
		<-ctx.Done()
		logrus.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logrus.Errorf("Shutdown error: %v", err)
		}
	}()

	logrus.Infof("🚀 Email verification proxy starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
