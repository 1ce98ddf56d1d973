package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"dealdesk/internal/auth"
	"dealdesk/internal/config"
	"dealdesk/internal/domain/repositories"
	docsysRepo "dealdesk/internal/domain/repositories/docsystem"
	"dealdesk/internal/handler"
	"dealdesk/internal/repository/memory"
	"dealdesk/internal/repository/postgres"
	postgresDocsys "dealdesk/internal/repository/postgres/docsystem"
	"dealdesk/internal/seed"
	authsvc "dealdesk/internal/service/auth"
	serviceDocsys "dealdesk/internal/service/docsystem"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

// backend bundles the repositories of one storage implementation
type backend struct {
	deals        repositories.DealRepository
	nodes        docsysRepo.NodeRepository
	requirements docsysRepo.RequirementRepository
	txManager    repositories.TransactionManager
	close        func()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.IsDev() {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage", cfg.StorageBackend,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWKS wins over the shared secret when both are configured
	var verifier auth.JWTVerifier
	var devSigner *auth.HMACVerifier
	if cfg.AuthJWKSURL != "" {
		verifier, err = auth.NewJWKSVerifier(ctx, cfg.AuthJWKSURL, logger)
	} else {
		devSigner, err = auth.NewHMACVerifier(cfg.AuthSecret, logger)
		verifier = devSigner
	}
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer verifier.Close()

	store, err := openBackend(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open %s backend: %v", cfg.StorageBackend, err)
	}
	defer store.close()

	catalog, err := serviceDocsys.LoadCatalog(cfg.RequirementCatalogPath)
	if err != nil {
		log.Fatalf("Failed to load requirement catalog: %v", err)
	}

	// Create services
	tracker := serviceDocsys.NewRequirementTracker(store.requirements, store.nodes, store.txManager, catalog, logger)
	treeService := serviceDocsys.NewTreeService(store.nodes, tracker, store.txManager, cfg.MaxBreadcrumbDepth, logger)
	resolver := serviceDocsys.NewBreadcrumbResolver(store.nodes, cfg.MaxBreadcrumbDepth, logger)
	authorizer := authsvc.NewRoleBasedAuthorizer(store.deals)

	// The memory backend starts empty; give it the demo deal
	if cfg.StorageBackend == config.StorageMemory {
		if _, err := seed.NewSeeder(store.deals, treeService, tracker, logger).SeedDemo(ctx); err != nil {
			log.Fatalf("Failed to seed demo deal: %v", err)
		}
		if devSigner != nil {
			logDevTokens(devSigner, logger)
		}
	}

	logger.Info("services initialized")

	router := handler.NewRouter(handler.RouterConfig{
		TreeService: treeService,
		Resolver:    resolver,
		Tracker:     tracker,
		Authorizer:  authorizer,
		Verifier:    verifier,
		Logger:      logger,
	})

	// CORS - Must be outside auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}

// openBackend connects the configured storage and returns its repositories
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	if cfg.StorageBackend == config.StorageMemory {
		store := memory.NewStore()
		logger.Warn("using in-memory storage; data is lost on restart")
		return &backend{
			deals:        memory.NewDealRepository(store),
			nodes:        memory.NewNodeRepository(store),
			requirements: memory.NewRequirementRepository(store),
			txManager:    memory.NewTransactionManager(store),
			close:        func() {},
		}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.RunSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		pool.Close()
		return nil, err
	}

	stat := pool.Stat()
	logger.Info("database connected",
		"max_conns", stat.MaxConns(),
		"total_conns", stat.TotalConns(),
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return &backend{
		deals:        postgres.NewDealRepository(repoConfig),
		nodes:        postgresDocsys.NewNodeRepository(repoConfig),
		requirements: postgresDocsys.NewRequirementRepository(repoConfig),
		txManager:    postgres.NewTransactionManager(pool, logger),
		close:        pool.Close,
	}, nil
}

// logDevTokens prints one token per demo role for local testing
func logDevTokens(signer *auth.HMACVerifier, logger *slog.Logger) {
	for _, p := range seed.DemoPrincipals() {
		token, err := signer.Sign(p, "", 24*time.Hour)
		if err != nil {
			logger.Error("failed to sign dev token", "role", p.Role, "error", err)
			continue
		}
		logger.Warn("DEV TOKEN (never use in production)", "role", p.Role, "deal_id", seed.DemoDealID, "token", token)
	}
}
