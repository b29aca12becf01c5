package main

import (
	"log"
	"log/slog"

	"roomproof/internal/config"
	"roomproof/internal/db"
	"roomproof/internal/imagestore/local"
	"roomproof/internal/logging"
	"roomproof/internal/service"
	"roomproof/internal/store"
	"roomproof/internal/vision"
	claudevision "roomproof/internal/vision/claude"
	ollamavision "roomproof/internal/vision/ollama"
	"roomproof/internal/web"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	snapshotStore := store.NewSnapshotStore(database)
	sessionStore := store.NewSessionStore(database)
	recordStore := store.NewAuditRecordStore(database)

	analyzer := newAnalyzer(cfg, logger)
	if analyzer == nil {
		return
	}

	images, err := local.NewLocalImageStore(cfg.ImagePath)
	if err != nil {
		logger.Error("failed to initialize image store", "error", err)
		return
	}

	inventoryService := service.NewInventoryService(snapshotStore, analyzer, images, logger)
	auditService := service.NewAuditService(sessionStore, recordStore, snapshotStore, analyzer, images, logger)
	server := web.NewServer(inventoryService, auditService, images, logger)

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newAnalyzer(cfg *config.Config, logger *slog.Logger) vision.Analyzer {
	switch cfg.VisionBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			logger.Error("CLAUDE_API_KEY is required when VISION_BACKEND=claude")
			return nil
		}
		logger.Info("using Claude vision backend")
		return claudevision.NewClaudeAnalyzer(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	default:
		logger.Info("using Ollama vision backend", "model", cfg.OllamaModel)
		return ollamavision.NewOllamaAnalyzer(cfg.OllamaHost, cfg.OllamaModel)
	}
}
