package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dunelords/dune-server-go/internal/config"
	"github.com/dunelords/dune-server-go/internal/repository"
	"github.com/dunelords/dune-server-go/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting dune battle server",
		zap.String("version", version),
		zap.String("config", *configPath),
		zap.Bool("advanced_combat", cfg.Game.AdvancedCombat),
	)

	if len(cfg.Auth.TokenHashes) == 0 {
		logger.Warn("no agent tokens configured; no faction agent can connect")
	}

	// Create context that listens for termination signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize battle report persistence when configured
	var reports *repository.BattleReportStore
	if cfg.Database.Enabled {
		db, err := repository.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		reports = repository.NewBattleReportStore(db)
		logger.Info("battle report store initialized")
	} else {
		logger.Info("database disabled; battle reports will not be persisted")
	}

	// Initialize agent gateway and phase runner
	gateway := server.New(cfg, logger)
	gateway.SetRunner(server.NewPhaseRunner(gateway, reports, logger))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- gateway.ListenAndServe(ctx)
	}()

	logger.Info("dune battle server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Addr()),
	)

	// Wait for termination signal or server failure
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			logger.Fatal("gateway error", zap.Error(err))
		}
		return
	}

	// Graceful shutdown
	logger.Info("shutting down gracefully...")
	cancel()
	if err := <-serveErr; err != nil {
		logger.Error("gateway shutdown error", zap.Error(err))
	}

	logger.Info("dune battle server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
