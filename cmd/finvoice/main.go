package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finvoice/internal/api"
	"finvoice/internal/api/handlers"
	"finvoice/internal/repository"
	"finvoice/internal/service"
	"finvoice/pkg/auth"
	"finvoice/pkg/config"
	"finvoice/pkg/logger"
	"finvoice/pkg/postgres"

	"go.uber.org/zap"
)

// @title Finvoice API
// @version 1.0
// @description Personal finance tracker with natural-language transaction input

// @contact.name API Support
// @contact.email support@finvoice.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting finvoice service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	parserService := service.NewParserService(llmService, &cfg.Parser, appLogger)
	txService := service.NewTransactionService(txRepo, parserService, appLogger)
	statsService := service.NewStatsService(txRepo, appLogger)

	authHandler := handlers.NewAuthHandler(authService, appLogger)
	txHandler := handlers.NewTransactionHandler(parserService, txService, appLogger)
	statsHandler := handlers.NewStatsHandler(statsService, appLogger)

	app := api.SetupRouter(authHandler, txHandler, statsHandler, jwtManager, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
