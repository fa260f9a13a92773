package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/sitelink/claimworks/internal/application/port"
	"github.com/sitelink/claimworks/internal/application/service"
	"github.com/sitelink/claimworks/internal/config"
	"github.com/sitelink/claimworks/internal/infrastructure/external/openai"
	"github.com/sitelink/claimworks/internal/infrastructure/parsing"
	"github.com/sitelink/claimworks/internal/infrastructure/persistence/repository"
	"github.com/sitelink/claimworks/internal/infrastructure/render"
	"github.com/sitelink/claimworks/internal/infrastructure/storage"
	"github.com/sitelink/claimworks/internal/infrastructure/worker"
	httpiface "github.com/sitelink/claimworks/internal/interfaces/http"
	"github.com/sitelink/claimworks/pkg/database"
	"github.com/sitelink/claimworks/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting claimworks",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage_backend", cfg.Storage.Backend))

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

	objectStorage, err := newObjectStorage(cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to initialize object storage", zap.Error(err))
	}

	// Repositories
	projectRepo := repository.NewProjectRepository(db, logger)
	documentRepo := repository.NewDocumentRepository(db, logger)
	clauseRepo := repository.NewClauseRepository(db, logger)
	scopeRepo := repository.NewScopeRepository(db, logger)
	programmeRepo := repository.NewProgrammeRepository(db, logger)
	evidenceRepo := repository.NewEvidenceRepository(db, logger)
	emailRepo := repository.NewEmailRepository(db, logger)
	recordRepo := repository.NewWorkRecordRepository(db, logger)
	variationRepo := repository.NewVariationRepository(db, logger)
	claimRepo := repository.NewClaimRepository(db, logger)
	invoiceRepo := repository.NewInvoiceRepository(db, logger)
	sequenceRepo := repository.NewSequenceRepository(db, logger)
	linkRepo := repository.NewLinkRepository(db, logger)
	txManager := repository.NewTxManager(db, logger)

	renderer := render.NewWorkbookRenderer(logger)
	sugar := logger.Sugar()

	// Services
	projectService := service.NewProjectService(
		projectRepo, clauseRepo, scopeRepo, programmeRepo, claimRepo, txManager, sugar)
	scopeService := service.NewScopeService(
		scopeRepo, programmeRepo, linkRepo, txManager, sugar)
	programmeService := service.NewProgrammeService(
		programmeRepo, scopeRepo, linkRepo, txManager, sugar)
	evidenceService := service.NewEvidenceService(
		evidenceRepo, emailRepo, scopeRepo, programmeRepo, claimRepo,
		linkRepo, objectStorage, txManager, sugar)
	recordService := service.NewRecordService(recordRepo, variationRepo, sugar)
	documentService := service.NewDocumentService(
		documentRepo, clauseRepo, objectStorage, sugar)
	claimService := service.NewClaimService(
		projectRepo, recordRepo, variationRepo, claimRepo, evidenceRepo,
		linkRepo, sequenceRepo, renderer, objectStorage, txManager, txManager,
		cfg.Claims.StatutoryWording, sugar)
	invoiceService := service.NewInvoiceService(
		projectRepo, invoiceRepo, sequenceRepo, renderer, objectStorage,
		txManager, txManager, sugar)

	// Background contract parsing
	workers := worker.NewManager(logger)
	if cfg.Parser.Enabled {
		parseWorker := worker.NewParseWorker(
			documentRepo,
			clauseRepo,
			objectStorage,
			parsing.NewPDFTextExtractor(logger),
			openai.NewClauseExtractor(cfg.OpenAI, logger),
			txManager,
			cfg.Parser.BatchSize,
			logger,
		)
		workers.Register(parseWorker, cfg.Parser.PollInterval)
	}
	workers.Start(context.Background())

	router := httpiface.NewRouter(cfg.Server, projectRepo, httpiface.Handlers{
		Projects: httpiface.NewProjectHandler(projectService),
		Contract: httpiface.NewContractHandler(documentService),
		Scope:    httpiface.NewScopeHandler(scopeService, programmeService),
		Evidence: httpiface.NewEvidenceHandler(evidenceService),
		Finance:  httpiface.NewFinanceHandler(recordService, claimService, invoiceService),
	}, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	workers.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newObjectStorage selects the configured storage backend
func newObjectStorage(cfg config.StorageConfig, logger *zap.Logger) (port.ObjectStorage, error) {
	switch cfg.Backend {
	case "gcs":
		return storage.NewGCSStorage(context.Background(), cfg.Bucket, cfg.WriteTimeout, logger)
	default:
		return storage.NewLocalStorage(cfg.BaseDir, cfg.PublicURLBase, logger)
	}
}
