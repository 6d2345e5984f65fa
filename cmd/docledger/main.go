package main

// @title           docledger API
// @version         1.0
// @description     Document management with version history, PDF text extraction, annotations and in-document search.

// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/docledger/internal/adapters/driven/auth"
	"github.com/custodia-labs/docledger/internal/adapters/driven/blob"
	"github.com/custodia-labs/docledger/internal/adapters/driven/pdf"
	"github.com/custodia-labs/docledger/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/docledger/internal/adapters/driven/redis"
	"github.com/custodia-labs/docledger/internal/adapters/driving/http"
	"github.com/custodia-labs/docledger/internal/core/ports/driven"
	"github.com/custodia-labs/docledger/internal/core/services"
)

var version = "dev"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("docledger starting", "version", version)

	if err := run(cfg, logger); err != nil {
		logger.Error("docledger stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config, logger *slog.Logger) error {
	ctx := context.Background()

	// ===== Initialize PostgreSQL =====
	logger.Info("connecting to PostgreSQL")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DBInitSchema {
		// Initialize schema (idempotent)
		if err := db.InitSchema(ctx); err != nil {
			return err
		}
		logger.Info("schema initialized")
	}

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		logger.Info("connecting to Redis")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return err
		}
		defer redisClient.Close()
	}

	// ===== PostgreSQL Stores =====
	userStore := postgres.NewUserStore(db)
	documentStore := postgres.NewDocumentStore(db)
	versionStore := postgres.NewVersionStore(db)
	annotationStore := postgres.NewAnnotationStore(db)

	// ===== Session Store and Lock (Redis if available, otherwise PostgreSQL) =====
	var (
		sessionStore    driven.SessionStore
		distributedLock driven.DistributedLock
		redisPinger     http.Pinger
	)
	if redisClient != nil {
		sessionStore = redisadapter.NewSessionStore(redisClient)
		lock := redisadapter.NewLock(redisClient)
		distributedLock = lock
		redisPinger = lock
		logger.Info("using Redis sessions and version lock")
	} else {
		pgSessions := postgres.NewSessionStore(db)
		if n, err := pgSessions.DeleteExpired(ctx); err != nil {
			logger.Warn("failed to prune expired sessions", "error", err)
		} else if n > 0 {
			logger.Info("pruned expired sessions", "count", n)
		}
		sessionStore = pgSessions
		distributedLock = postgres.NewAdvisoryLock(db)
		logger.Info("using PostgreSQL sessions and advisory version lock")
		if limit, ok := cfg.lockedUploadLimit(); ok {
			logger.Info("concurrent version uploads are bounded by the connection pool",
				"db_max_open_conns", cfg.DBMaxOpenConns, "max_concurrent_uploads", limit)
		}
	}

	// ===== Blob Store =====
	var blobStore driven.BlobStore
	switch cfg.BlobBackend {
	case blobBackendPostgres:
		blobStore = postgres.NewBlobStore(db)
	default:
		fs, err := blob.NewFileStore(cfg.MediaRoot)
		if err != nil {
			return err
		}
		blobStore = fs
	}
	logger.Info("blob storage ready", "backend", cfg.BlobBackend)

	// ===== Driven adapters =====
	authAdapter := auth.NewAdapter(cfg.JWTSecret)
	extractor := pdf.NewExtractor(pdf.Config{
		PageTimeout: cfg.PDFPageTimeout,
		Logger:      logger.With("component", "pdf"),
	})

	// ===== Services =====
	authService := services.NewAuthService(services.AuthServiceConfig{
		Users:    userStore,
		Sessions: sessionStore,
		Adapter:  authAdapter,
		TokenTTL: cfg.TokenTTL,
		Logger:   logger,
	})
	documentService := services.NewDocumentService(services.DocumentServiceConfig{
		Documents:   documentStore,
		Versions:    versionStore,
		Annotations: annotationStore,
		Users:       userStore,
		Blobs:       blobStore,
		Extractor:   extractor,
		Lock:        distributedLock,
		Logger:      logger,
		LockWait:    cfg.VersionLockWait,
	})
	versionService := services.NewVersionService(services.VersionServiceConfig{
		Documents: documentStore,
		Versions:  versionStore,
		Blobs:     blobStore,
		Lock:      distributedLock,
		Logger:    logger,
		LockWait:  cfg.VersionLockWait,
	})
	annotationService := services.NewAnnotationService(services.AnnotationServiceConfig{
		Documents:   documentStore,
		Annotations: annotationStore,
		Logger:      logger,
	})
	searchService := services.NewSearchService(services.SearchServiceConfig{
		Documents: documentStore,
		Blobs:     blobStore,
		Extractor: extractor,
		Logger:    logger,
	})

	// ===== HTTP =====
	server := http.NewServer(http.Config{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        version,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigins:    cfg.CORSOrigins,
		Logger:         logger,
	}, http.Services{
		Auth:        authService,
		Documents:   documentService,
		Versions:    versionService,
		Annotations: annotationService,
		Search:      searchService,
	}, db, redisPinger)

	start := time.Now()
	err = server.Start()
	logger.Info("server exited", "uptime", time.Since(start).Round(time.Second))
	return err
}
