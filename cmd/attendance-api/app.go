package main

import (
	"fmt"

	"github.com/deppfellow/attendance-api/internal/config"
	"github.com/deppfellow/attendance-api/internal/logger"
	"github.com/deppfellow/attendance-api/internal/server"
)

// bootstrap loads configuration and builds the application container.
// The caller owns the returned server and logger service.
func bootstrap() (*server.Server, *logger.LoggerService, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, nil, err
	}

	return srv, loggerService, nil
}
