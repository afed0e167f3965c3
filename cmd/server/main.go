package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/config"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/logging"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Flags override the environment
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Connector.ConfigPath, "config", cfg.Connector.ConfigPath, "Connector configuration file")
	flag.StringVar(&cfg.Connector.FileRoot, "root", cfg.Connector.FileRoot, "Root directory served by the connector")
	flag.StringVar(&cfg.Server.StaticDir, "static", cfg.Server.StaticDir, "Directory holding the file manager UI")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	logCfg := logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development}
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	logger := logging.NewOrNop(logCfg)

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server error", zap.Error(err))
		srv.Close()
		os.Exit(1)
	}
	logger.Info("Server stopped")
}
