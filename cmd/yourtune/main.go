package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yourtune/internal/config"
	"yourtune/internal/server"
	"yourtune/internal/session"
	"yourtune/internal/store"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := "./config.toml"

	// Initialize basic logger for startup
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Credentials usually come through the environment; a .env file is
	// optional and absence is not an error
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded environment from .env")
	}

	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.WithError(err).Fatal("Error loading configuration")
	}

	configureLogger(logger, cfg)

	// A missing session secret gets a random one for this process only;
	// existing cookies stop verifying on every restart
	if cfg.Session.Secret == "" {
		cfg.Session.Secret = randomSecret()
		logger.Warn("SESSION_SECRET not set; generated an ephemeral secret, sessions will not survive restarts")
	}

	// Initialize storage before anything can serve requests
	st, err := store.Open(cfg.Database.Path,
		time.Duration(cfg.Database.QueryTimeoutSeconds)*time.Second, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error initializing database")
	}
	defer st.Close()

	sessions, err := session.NewAuthority(cfg.Session.Secret,
		time.Duration(cfg.Session.DurationSeconds)*time.Second,
		time.Duration(cfg.Session.ActiveWindowSeconds)*time.Second,
		cfg.Session.SecureCookies)
	if err != nil {
		logger.WithError(err).Fatal("Error creating session authority")
	}

	srv, err := server.NewServer(cfg, st, sessions, logger)
	if err != nil {
		logger.WithError(err).Fatal("Error creating server")
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		logger.Info("Received shutdown signal")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server error")
	}
}

func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
