package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"github.com/maxviazov/memo-service/internal/config"
	"github.com/maxviazov/memo-service/internal/handler"
	"github.com/maxviazov/memo-service/internal/logger"
	"github.com/maxviazov/memo-service/internal/repository"
	"github.com/maxviazov/memo-service/internal/repository/postgres"
	"github.com/maxviazov/memo-service/internal/repository/sqlite"
	"github.com/maxviazov/memo-service/internal/service"
	"github.com/maxviazov/memo-service/migrations"
)

// storage bundles the adapters of whichever driver the config selects.
type storage struct {
	memos  repository.MemoRepository
	tx     repository.TxManager
	pinger repository.Pinger
	pg     *repository.Repository // nil unless driver is postgres
	close  func()
}

func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("config loading failed: %w", err)
	}
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("logger initialization failed: %w", err)
	}
	appLogger.Info().Str("driver", cfg.Storage.Driver).Msg("Config loaded successfully")
	return cfg, appLogger, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Storage.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite open failed: %w", err)
		}
		log.Info().Str("path", cfg.Storage.SQLitePath).Msg("SQLite storage ready")
		return &storage{
			memos:  sqlite.NewMemoRepository(db),
			tx:     sqlite.NewTxManager(db),
			pinger: sqlite.NewPinger(db),
			close:  func() { _ = sqlite.Close(db) },
		}, nil
	default:
		pg, err := repository.New(ctx, cfg, &log)
		if err != nil {
			return nil, fmt.Errorf("postgres connection failed: %w", err)
		}
		pool := pg.Pool()
		return &storage{
			memos:  postgres.NewMemoRepository(pool),
			tx:     postgres.NewTxManager(pool),
			pinger: postgres.NewPinger(pool),
			pg:     pg,
			close:  pg.Close,
		}, nil
	}
}

// migrate applies goose migrations on postgres. SQLite creates its schema on open.
func migrate(ctx context.Context, st *storage, log zerolog.Logger) error {
	if st.pg == nil {
		log.Info().Msg("sqlite schema is created on open, nothing to migrate")
		return nil
	}
	db := stdlib.OpenDBFromPool(st.pg.Pool())
	defer db.Close()

	version, err := migrations.Up(ctx, db)
	if err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	log.Info().Int64("version", version).Msg("migrations applied")
	return nil
}

type serveOptions struct {
	migrate bool
}

func runServe(ctx context.Context, opts serveOptions) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	if opts.migrate {
		if err := migrate(ctx, st, log); err != nil {
			return err
		}
	}

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	memoSvc := service.NewMemoService(st.memos, st.tx, log)
	router := handler.NewRouter(handler.RouterConfig{
		AllowOrigins: cfg.App.CORSOrigins,
		Logger:       log,
	}, st.pinger, memoSvc)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", addr).Str("version", cfg.App.Version).Msg("🚀 Service started")
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		log.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.App.ShutdownTimeout)*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func runMigrate(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()
	return migrate(ctx, st, log)
}

func runSeed(ctx context.Context, count int) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	memos, err := service.NewMemoService(st.memos, st.tx, log).SeedDummies(ctx, count)
	if err != nil {
		return err
	}
	if len(memos) > 0 {
		log.Info().Int64("first_id", memos[0].ID).Int64("last_id", memos[len(memos)-1].ID).Msg("✅ seed complete")
	}
	return nil
}
