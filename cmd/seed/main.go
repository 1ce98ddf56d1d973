package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"dealdesk/internal/auth"
	"dealdesk/internal/config"
	"dealdesk/internal/repository/postgres"
	postgresDocsys "dealdesk/internal/repository/postgres/docsystem"
	"dealdesk/internal/seed"
	serviceDocsys "dealdesk/internal/service/docsystem"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed the demo deal")
	clearData := flag.Bool("clear-data", false, "Clear the demo deal's nodes and requirements (keep schema)")
	printTokens := flag.Bool("tokens", false, "Print HMAC dev tokens for the demo principals")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.StorageBackend != config.StoragePostgres {
		log.Fatalf("seed needs STORAGE_BACKEND=%s (the %s backend seeds itself at server startup)", config.StoragePostgres, cfg.StorageBackend)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	switch {
	case *clearData:
		log.Printf("Clearing demo data (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("Dropping all tables...")
		if err := postgres.DropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("Tables dropped")
	}

	log.Println("Ensuring database schema is up to date...")
	if err := postgres.RunSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("Schema ready")

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := postgres.ClearDealData(ctx, pool, tables, seed.DemoDealID); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Data cleared successfully")
		return
	}

	catalog, err := serviceDocsys.LoadCatalog(cfg.RequirementCatalogPath)
	if err != nil {
		log.Fatalf("Failed to load requirement catalog: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	dealRepo := postgres.NewDealRepository(repoConfig)
	nodeRepo := postgresDocsys.NewNodeRepository(repoConfig)
	reqRepo := postgresDocsys.NewRequirementRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	tracker := serviceDocsys.NewRequirementTracker(reqRepo, nodeRepo, txManager, catalog, logger)
	treeService := serviceDocsys.NewTreeService(nodeRepo, tracker, txManager, cfg.MaxBreadcrumbDepth, logger)

	deal, err := seed.NewSeeder(dealRepo, treeService, tracker, logger).SeedDemo(ctx)
	if err != nil {
		log.Fatalf("Failed to seed demo deal: %v", err)
	}
	log.Printf("Seeded deal %q (ID: %s)", deal.Name, deal.ID)

	if *printTokens {
		printDevTokens(cfg)
	}

	log.Println("Seeding complete!")
}

// printDevTokens signs a day-long token for each demo principal
func printDevTokens(cfg *config.Config) {
	if cfg.AuthSecret == "" {
		log.Println("AUTH_SECRET not set; skipping dev tokens")
		return
	}

	signer, err := auth.NewHMACVerifier(cfg.AuthSecret, slog.Default())
	if err != nil {
		log.Fatalf("Failed to create signer: %v", err)
	}

	for _, p := range seed.DemoPrincipals() {
		token, err := signer.Sign(p, "", 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to sign token for %s: %v", p.Role, err)
		}
		log.Printf("%s token: %s", p.Role, token)
	}
}
