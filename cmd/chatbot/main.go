package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"go.uber.org/zap"

	"github.com/Vovarama1992/tutor_context/internal/ai"
	"github.com/Vovarama1992/tutor_context/internal/config"
	"github.com/Vovarama1992/tutor_context/internal/delivery"
	"github.com/Vovarama1992/tutor_context/internal/domain"
	"github.com/Vovarama1992/tutor_context/internal/error_notificator"
	"github.com/Vovarama1992/tutor_context/internal/infra"
)

const serviceName = "chatbot"

func main() {

	// =========================================================================
	// ENV / DB INIT
	// =========================================================================

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := infra.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}
	defer db.Close()

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	// =========================================================================
	// REPOSITORIES / CLIENTS
	// =========================================================================

	historyRepo := infra.NewHistoryRepo(db)
	contextClient := infra.NewContextClient(cfg.ContextServiceURL, zl)
	gateway := ai.NewGateway(cfg.LLM, zl)

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	errService := error_notificator.NewService(error_notificator.NewInfra(zl, serviceName))

	// =========================================================================
	// DOMAIN SERVICES
	// =========================================================================

	chatService := domain.NewChatService(contextClient, historyRepo, gateway, errService, zl)

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	chatHandler := delivery.NewChatHandler(chatService, gateway.Mode(), zl)
	r := delivery.NewChatRouter(chatHandler, cfg.AskRateLimit, zl)

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.ChatbotPort
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr + " (llm mode: " + gateway.Mode() + ", context store: " + cfg.ContextServiceURL + ")",
		Service: serviceName,
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
