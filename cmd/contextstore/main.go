package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"go.uber.org/zap"

	"github.com/Vovarama1992/tutor_context/internal/config"
	"github.com/Vovarama1992/tutor_context/internal/delivery"
	"github.com/Vovarama1992/tutor_context/internal/domain"
	"github.com/Vovarama1992/tutor_context/internal/error_notificator"
	"github.com/Vovarama1992/tutor_context/internal/infra"
)

const serviceName = "context-store"

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
	// REPOSITORIES
	// =========================================================================

	contextRepo := infra.NewContextRepo(db)
	historyRepo := infra.NewHistoryRepo(db)

	errService := error_notificator.NewService(error_notificator.NewInfra(zl, serviceName))

	// =========================================================================
	// DOMAIN / HTTP
	// =========================================================================

	contextService := domain.NewContextService(contextRepo, historyRepo, errService, zl)
	r := delivery.NewContextRouter(delivery.NewContextHandler(contextService, zl), zl)

	// =========================================================================
	// START SERVER
	// =========================================================================

	addr := ":" + cfg.ContextPort
	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + addr + " (db driver: " + db.Driver() + ")",
		Service: serviceName,
	})

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
