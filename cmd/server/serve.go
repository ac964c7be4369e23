package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/shalabh-srivastava/legalsuite/internal/auth"
	"github.com/shalabh-srivastava/legalsuite/internal/caselaw"
	"github.com/shalabh-srivastava/legalsuite/internal/config"
	"github.com/shalabh-srivastava/legalsuite/internal/documents"
	"github.com/shalabh-srivastava/legalsuite/internal/llm"
	"github.com/shalabh-srivastava/legalsuite/internal/logging"
	"github.com/shalabh-srivastava/legalsuite/internal/management"
	"github.com/shalabh-srivastava/legalsuite/internal/metrics"
	"github.com/shalabh-srivastava/legalsuite/internal/research"
	"github.com/shalabh-srivastava/legalsuite/internal/server"
	"github.com/shalabh-srivastava/legalsuite/internal/store"
)

func serve(ctx context.Context, cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	m := metrics.New()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	defer mongoClient.Disconnect(context.Background())
	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.Mongo.Database))
	if err := mongoStore.EnsureIndexes(ctx); err != nil {
		logger.Warn("mongo indexes not created", zap.Error(err))
	}

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis connect: %w", err)
	}
	defer rdb.Close()
	sessions := auth.NewSessionStore(rdb, cfg.Auth.SessionTTL)

	// ── MinIO ────────────────────────────────────────────────
	minioStore, err := store.NewMinioStore(ctx, cfg.Minio)
	if err != nil {
		return fmt.Errorf("minio connect: %w", err)
	}

	// ── External services ────────────────────────────────────
	analyzer, err := llm.New(ctx, cfg.LLM, logger, m)
	if err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	searcher := caselaw.NewKanoonClient(cfg.CaseLaw, logger, m)
	if !analyzer.Configured() {
		logger.Warn("no LLM API key set; research will return a not-configured analysis")
	}
	if !searcher.Configured() {
		logger.Warn("no Indian Kanoon API key set; case-law searches will likely return nothing")
	}

	// ── Handlers ─────────────────────────────────────────────
	researchSvc := research.NewService(analyzer, searcher, mongoStore,
		cfg.CaseLaw.MaxResults, cfg.Research.HistoryLimit, logger, m)

	router := server.NewRouter(server.Deps{
		Logger:       logger,
		Metrics:      m,
		CORSOrigins:  cfg.Server.CORSOrigins,
		AuthRequired: cfg.Auth.Required,
		Sessions:     sessions,
		Auth:         auth.NewHandler(pgStore, sessions, logger),
		Research:     research.NewHandler(researchSvc, logger),
		Management:   management.NewHandler(pgStore, pgStore, mongoStore, logger),
		Documents:    documents.NewHandler(mongoStore, minioStore, analyzer, 0, logger),
		Health:       server.NewHealth(mongoStore, analyzer, searcher),
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("llm", analyzer.Name()),
			zap.Bool("auth_required", cfg.Auth.Required),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-sigCtx.Done():
	}

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func migrate(ctx context.Context, cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	pgPool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}
	defer pgPool.Close()
	if err := store.NewPostgresStore(pgPool).Migrate(ctx); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	logger.Info("postgres tables ready")

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	defer mongoClient.Disconnect(context.Background())
	if err := store.NewMongoStore(mongoClient.Database(cfg.Mongo.Database)).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	logger.Info("mongo indexes ready")
	return nil
}
