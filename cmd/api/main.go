package main

import (
	"context"
	"os"

	"github.com/yigit/gtostat/internal/bootstrap"
	"github.com/yigit/gtostat/internal/pkg/logger"
	"github.com/yigit/gtostat/internal/server"
)

// @title GTO Statistics API
// @version 1.0
// @description Student records and GTO achievement statistics
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	configPath := bootstrap.DefaultConfigPath
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	srv, err := server.NewServer(context.Background(), configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
