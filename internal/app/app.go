// Package app wires configuration, stores and services into an HTTP handler.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/tasklist/tasklist-api/internal/cache"
	"github.com/tasklist/tasklist-api/internal/config"
	"github.com/tasklist/tasklist-api/internal/crypto"
	"github.com/tasklist/tasklist-api/internal/handler"
	"github.com/tasklist/tasklist-api/internal/repository"
	"github.com/tasklist/tasklist-api/internal/service"
	"github.com/tasklist/tasklist-api/internal/storage"
)

const purgeInterval = time.Hour

// App owns the process-wide resources behind the API.
type App struct {
	cfg    config.Config
	db     *sqlx.DB
	rdb    *redis.Client
	router http.Handler
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
}

type options struct {
	fs  afero.Fs
	now func() time.Time
}

// Option customises New.
type Option func(*options)

// WithFilesystem stores attachments on fs instead of STORAGE_DIR.
func WithFilesystem(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithClock replaces the wall clock used for timestamps and token expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New connects to the record store, applies migrations and builds the router.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := repository.NewDB(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	a := &App{cfg: cfg, db: db, done: make(chan struct{})}

	blobs, err := a.blobStore(o.fs)
	if err != nil {
		db.Close()
		return nil, err
	}

	clock := repository.Clock(o.now)
	users := repository.NewUserRepository(db, clock)
	tasks := repository.NewTaskRepository(db, clock)
	lists := repository.NewTaskListRepository(db, clock)
	storages := repository.NewTaskListStorageRepository(db, clock)

	revoked, err := a.revocationStore(ctx, clock)
	if err != nil {
		db.Close()
		return nil, err
	}

	issuer := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, crypto.WithClock(o.now))
	authSvc := service.NewAuthService(users, issuer, revoked, cfg.JWTRefreshTTL)

	a.router = a.routes(authSvc, handlers{
		auth:     handler.NewAuthHandler(authSvc),
		task:     handler.NewTaskHandler(service.NewTaskService(tasks, users, lists, cfg.Location), cfg.AppURL),
		taskList: handler.NewTaskListHandler(service.NewTaskListService(lists, tasks, storages, cfg.Location), cfg.AppURL),
		storage: handler.NewTaskListStorageHandler(
			service.NewTaskListStorageService(storages, lists, blobs, cfg.Location),
			cfg.AppURL, int64(cfg.UploadMaxKB),
		),
	})

	return a, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.router }

// Close stops background work and releases connections. Later calls
// return the first call's result.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		close(a.done)
		var errs []error
		if a.rdb != nil {
			errs = append(errs, a.rdb.Close())
		}
		errs = append(errs, a.db.Close())
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

func (a *App) blobStore(fs afero.Fs) (*storage.Store, error) {
	if fs != nil {
		return storage.NewStoreFs(fs, a.cfg.UploadMaxKB), nil
	}
	return storage.NewStore(a.cfg.StorageDir, a.cfg.UploadMaxKB)
}

// revocationStore prefers Redis when configured and falls back to the
// revoked_tokens table, which is purged periodically.
func (a *App) revocationStore(ctx context.Context, clock repository.Clock) (service.RevocationStore, error) {
	if a.cfg.RedisURL != "" {
		rdb, err := cache.NewClient(ctx, a.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		a.rdb = rdb
		slog.Info("token revocation list in redis")
		return cache.NewRevocationStore(rdb, cache.WithClock(clock)), nil
	}

	repo := repository.NewRevokedTokenRepository(a.db, clock)
	go a.purge(repo)
	return repo, nil
}

func (a *App) purge(repo *repository.RevokedTokenRepository) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			n, err := repo.Purge(context.Background())
			if err != nil {
				slog.Warn("purging revoked tokens failed", "error", err)
				continue
			}
			slog.Debug("purged revoked tokens", "count", n)
		}
	}
}
