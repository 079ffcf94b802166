package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"buildportal/internal/config"
	"buildportal/internal/database"
	"buildportal/internal/repository/postgres"
	"buildportal/internal/seed"
	"buildportal/internal/storage"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only apply migrations, don't seed demo data")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProduction() && *dropTables {
		log.Fatalf("BLOCKED: Cannot run --drop-tables in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Printf("Dropping all tables (prefix: %s)...", cfg.TablePrefix)
		if err := dropAllTables(ctx, pool, tables, cfg.TablePrefix); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	log.Println("Applying migrations...")
	if err := database.Migrate(cfg.DatabaseURL, cfg.TablePrefix, logger); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	blobs, err := storage.NewOSBlobStore(cfg.BlobRoot)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	seeder := seed.NewSeeder(seed.Repositories{
		Users:       postgres.NewUserRepository(repoConfig),
		Objects:     postgres.NewObjectRepository(repoConfig),
		Assignments: postgres.NewAssignmentRepository(repoConfig),
		Items:       postgres.NewItemRepository(repoConfig),
	}, blobs, logger)

	result, err := seeder.Seed(ctx)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	for _, u := range result.Users {
		log.Printf("  user %-14s role %s", u.ID, u.Role)
	}
	log.Printf("  object %s, item %s", result.ObjectID, result.ItemID)
	log.Println("Seeding complete")
}

// dropAllTables drops every portal table and the prefix's migration version table
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, prefix string) error {
	for _, table := range append(tables.All(), prefix+"schema_migrations") {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return err
		}
		log.Printf("  dropped %s", table)
	}
	return nil
}
