package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/campushub/modgate/pkg/config"
	"github.com/campushub/modgate/pkg/dependency_container"
	infraLogger "github.com/campushub/modgate/pkg/infra/logger"
	"github.com/campushub/modgate/pkg/infra/prometheus"
	"github.com/campushub/modgate/pkg/server"
	"github.com/campushub/modgate/pkg/server/router"
	"github.com/joho/godotenv"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config"
	}
	if err := config.Load(configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, flushLogs, err := infraLogger.NewLogger(infraLogger.Options{
		Level:   level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
	})
	if err != nil {
		log.Fatalf("failed to initialise logger: %v", err)
	}
	defer flushLogs()

	if cfg.Metrics.Enabled {
		prometheus.Initialize(cfg.Metrics.MetricsConfig)
	}

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		logger.WithError(err).Error("failed to build dependencies")
		flushLogs()
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger, router.NewModerationRouter(
		container.MiddlewareTransport(),
		container.HandlerTransport,
		swaggerFile(),
	))
	if err != nil {
		logger.WithError(err).Error("failed to build server")
		flushLogs()
		os.Exit(1)
	}

	go func() {
		if err := srv.Run(); err != nil {
			logger.WithError(err).Error("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	sig := <-quit

	logger.WithField("signal", sig.String()).Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
	}
	if err := container.Close(); err != nil {
		logger.WithError(err).Warn("error releasing dependencies")
	}
	logger.Info("server gracefully stopped")
}

func swaggerFile() string {
	const path = "./docs/swagger.json"
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
