package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/ledgerline/settlement/internal/application/service"
	"github.com/ledgerline/settlement/internal/config"
	"github.com/ledgerline/settlement/internal/infrastructure/persistence/repository"
	"github.com/ledgerline/settlement/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/ledgerline/settlement/internal/interfaces/http"
	"github.com/ledgerline/settlement/pkg/database"
	"github.com/ledgerline/settlement/pkg/utils"
)

func main() {
	// Load .env if present; real deployments set environment directly
	_ = gotenv.Load()

	configPath := os.Getenv("SETTLEMENT_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting settlement engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	obligationRepo := repository.NewObligationRepository(db.DB, logger)
	paymentRepo := repository.NewPaymentRepository(db.DB, logger)
	allocationRepo := repository.NewAllocationRepository(db.DB, logger)

	// Transaction manager
	txManager := sqlite.NewDB(db.DB, logger)

	// Services
	serviceLogger := utils.NewSugarAdapter(logger)
	settlementService := service.NewSettlementService(
		obligationRepo,
		paymentRepo,
		allocationRepo,
		txManager,
		serviceLogger,
	)
	obligationService := service.NewObligationService(obligationRepo, serviceLogger)

	// HTTP server
	server := httpserver.NewServer(
		httpserver.ServerConfig{
			Host:         cfg.Server.Host,
			Port:         cfg.Server.Port,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		settlementService,
		obligationService,
		serviceLogger,
	)

	// Cancel the server context on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
