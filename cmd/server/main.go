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
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"buildportal/internal/access"
	"buildportal/internal/auth"
	"buildportal/internal/bim"
	"buildportal/internal/config"
	"buildportal/internal/database"
	"buildportal/internal/domain/models"
	"buildportal/internal/domain/repositories"
	"buildportal/internal/handler"
	"buildportal/internal/middleware"
	"buildportal/internal/repository/memory"
	"buildportal/internal/repository/postgres"
	"buildportal/internal/seed"
	"buildportal/internal/service"
	"buildportal/internal/storage"
)

// stores is the persistence layer, backed by Postgres or by memory
type stores struct {
	users       repositories.UserRepository
	objects     repositories.ObjectRepository
	assignments repositories.AssignmentRepository
	folders     repositories.FolderRepository
	media       repositories.MediaRepository
	bimModels   repositories.BimModelRepository
	comments    repositories.CommentRepository
	items       repositories.ItemRepository
	purchases   repositories.PurchaseRepository
	portfolio   repositories.PortfolioRepository
	txManager   repositories.TransactionManager
	readiness   handler.ReadinessChecker
	close       func()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		out = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer st.close()

	blobs, err := storage.NewOSBlobStore(cfg.BlobRoot)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	if cfg.DatabaseURL == "" {
		seeder := seed.NewSeeder(seed.Repositories{
			Users:       st.users,
			Objects:     st.objects,
			Assignments: st.assignments,
			Items:       st.items,
		}, blobs, logger)
		if _, err := seeder.Seed(ctx); err != nil {
			log.Fatalf("Failed to seed memory store: %v", err)
		}
	}

	jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()
	identities := auth.NewIdentityResolver(jwtVerifier, st.users, logger)

	capabilityTable, err := access.NewCapabilityTable()
	if err != nil {
		log.Fatalf("Failed to load capability table: %v", err)
	}
	engine := access.NewEngine(capabilityTable, st.assignments, logger)
	resolver := access.NewOwnershipResolver(st.objects, st.media, st.bimModels, st.comments, st.folders, st.items, st.portfolio)
	visibility := access.NewVisibilityManager(engine, resolver, st.media, st.bimModels, st.comments, st.txManager, logger)
	gate := access.NewEntitlementGate(st.purchases)
	logger.Info("access engine initialized")

	generator := bim.NewCommandGenerator(cfg.BimTreeCommand, cfg.BimTreeTimeout, logger)
	if cfg.BimTreeCommand == "" {
		logger.Warn("BIM_TREE_COMMAND not set; parameter tree generation disabled")
	}

	mediaService := service.NewMediaService(st.media, resolver, engine, visibility, blobs, logger)
	catalogService := service.NewCatalogService(st.items, st.purchases, st.users, engine, gate, blobs, logger)
	maxUpload := cfg.MaxUploadMB << 20

	routes := &handler.Routes{
		Health:    handler.NewHealthHandler(st.readiness),
		Users:     handler.NewUserHandler(service.NewUserService(st.users, engine, logger), logger),
		Objects:   handler.NewObjectHandler(service.NewObjectService(st.objects, st.assignments, st.users, engine, logger), logger),
		Folders:   handler.NewFolderHandler(service.NewFolderService(st.folders, resolver, engine, logger), logger),
		Photos:    handler.NewMediaHandler(models.MediaKindPhoto, mediaService, maxUpload, logger),
		Videos:    handler.NewMediaHandler(models.MediaKindVideo, mediaService, maxUpload, logger),
		Bim:       handler.NewBimHandler(service.NewBimService(st.bimModels, resolver, engine, visibility, blobs, generator, logger), maxUpload, logger),
		Comments:  handler.NewCommentHandler(service.NewCommentService(st.comments, resolver, engine, visibility, logger), logger),
		Catalog:   handler.NewCatalogHandler(catalogService, maxUpload, logger),
		Commerce:  handler.NewCommerceHandler(catalogService, cfg.CommerceWebhookSecret, logger),
		Portfolio: handler.NewPortfolioHandler(service.NewPortfolioService(st.portfolio, engine, blobs, logger), maxUpload, logger),
	}
	if cfg.CommerceWebhookSecret == "" {
		logger.Warn("COMMERCE_WEBHOOK_SECRET not set; commerce webhook disabled")
	}

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	routes.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Metrics → Recovery → Auth → Routes
	var h http.Handler = mux
	h = middleware.Auth(identities, logger)(h)
	h = middleware.Recovery(logger)(h)
	h = middleware.Metrics()(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Range"},
		ExposedHeaders:   []string{"Content-Disposition", "Content-Range", "Accept-Ranges"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute, // large uploads
		WriteTimeout:      0,               // streamed downloads
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}

// openStores connects to Postgres, or falls back to the in-memory store when
// DATABASE_URL is empty
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsProduction() {
			return nil, errors.New("DATABASE_URL is required in production")
		}
		logger.Warn("DATABASE_URL not set; using in-memory store (data is lost on restart)")
		store := memory.NewStore()
		return &stores{
			users:       store.Users(),
			objects:     store.Objects(),
			assignments: store.Assignments(),
			folders:     store.Folders(),
			media:       store.Media(),
			bimModels:   store.BimModels(),
			comments:    store.Comments(),
			items:       store.Items(),
			purchases:   store.Purchases(),
			portfolio:   store.Portfolio(),
			txManager:   store.TxManager(),
			close:       func() {},
		}, nil
	}

	if cfg.RunMigrations {
		if err := database.Migrate(cfg.DatabaseURL, cfg.TablePrefix, logger); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("database connected",
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
	)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	return &stores{
		users:       postgres.NewUserRepository(repoConfig),
		objects:     postgres.NewObjectRepository(repoConfig),
		assignments: postgres.NewAssignmentRepository(repoConfig),
		folders:     postgres.NewFolderRepository(repoConfig),
		media:       postgres.NewMediaRepository(repoConfig),
		bimModels:   postgres.NewBimModelRepository(repoConfig),
		comments:    postgres.NewCommentRepository(repoConfig),
		items:       postgres.NewItemRepository(repoConfig),
		purchases:   postgres.NewPurchaseRepository(repoConfig),
		portfolio:   postgres.NewPortfolioRepository(repoConfig),
		txManager:   postgres.NewTransactionManager(pool, logger),
		readiness:   database.NewReadinessChecker(pool),
		close:       pool.Close,
	}, nil
}
