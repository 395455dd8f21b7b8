package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/unitgrid"
	"github.com/aretw0/unitgrid/internal/config"
	httpadapter "github.com/aretw0/unitgrid/pkg/adapters/http"
	"github.com/aretw0/unitgrid/pkg/adapters/file"
	"github.com/aretw0/unitgrid/pkg/adapters/gormstore"
	"github.com/aretw0/unitgrid/pkg/adapters/memory"
	redisadapter "github.com/aretw0/unitgrid/pkg/adapters/redis"
	"github.com/aretw0/unitgrid/pkg/auth"
	"github.com/aretw0/unitgrid/pkg/broadcast"
	"github.com/aretw0/unitgrid/pkg/persistence/middleware"
	"github.com/aretw0/unitgrid/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// app is the wired server. Close releases what build opened.
type app struct {
	handler http.Handler
	hub     *broadcast.Hub
	bus     *redisadapter.Bus
	db      *gorm.DB
	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// buildApp wires store, broadcaster, service and HTTP handler from cfg. With a Redis
// address, updates travel over the Redis bus and project writes take a distributed lock.
func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}
	metrics := httpadapter.NewMetrics()

	a.hub = broadcast.NewHub(
		broadcast.WithLogger(logger),
		broadcast.WithBuffer(cfg.SSE.Buffer),
		broadcast.WithHooks(metrics.Hooks()),
	)
	a.closers = append(a.closers, func() error { a.hub.Close(); return nil })

	var rdb *backend.Client
	if cfg.Redis.Addr != "" {
		rdb = backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	store, err := a.openStore(cfg, rdb, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if cfg.Store.EncryptionKey != "" {
		store, err = encryptStore(store, cfg.Store.EncryptionKey)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	opts := []unitgrid.Option{
		unitgrid.WithLogger(logger),
		unitgrid.WithLifecycleHooks(metrics.Hooks()),
		unitgrid.WithPublisher(a.hub),
	}
	if rdb != nil {
		a.bus = redisadapter.NewBus(rdb,
			redisadapter.WithChannel(cfg.Redis.Channel),
			redisadapter.WithBusLogger(logger),
		)
		opts = append(opts,
			unitgrid.WithPublisher(a.bus),
			unitgrid.WithLocker(redisadapter.NewLocker(rdb, cfg.Redis.Prefix)),
		)
	}
	svc := unitgrid.NewService(store, opts...)

	issuer, err := auth.NewIssuer(cfg.Auth.Secret, auth.WithTTL(cfg.Auth.TokenTTL))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.handler = httpadapter.NewHandler(svc, a.hub, issuer,
		httpadapter.WithLogger(logger),
		httpadapter.WithMetrics(metrics),
		httpadapter.WithHeartbeat(cfg.SSE.Heartbeat),
	)
	return a, nil
}

func (a *app) openStore(cfg config.Config, rdb *backend.Client, logger *slog.Logger) (ports.ProjectStore, error) {
	switch cfg.Store.Kind {
	case config.StoreMemory:
		return memory.NewStore(), nil
	case config.StoreFile:
		return file.New(cfg.Store.Path), nil
	case config.StoreRedis:
		if rdb == nil {
			return nil, errors.New("redis store requires redis.addr")
		}
		return redisadapter.NewFromClient(rdb,
			redisadapter.WithPrefix(cfg.Redis.Prefix),
			redisadapter.WithTTL(cfg.Redis.TTL),
		), nil
	case config.StoreSQLite, config.StorePostgres:
		db, err := gormstore.Open(cfg.Store.Kind, cfg.Store.DSN, logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		})
		return gormstore.New(db)
	}
	return nil, fmt.Errorf("unknown store kind %q", cfg.Store.Kind)
}

func encryptStore(store ports.ProjectStore, encoded string) (ports.ProjectStore, error) {
	key, err := middleware.ParseKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("store encryption key: %w", err)
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
	if err != nil {
		return nil, err
	}
	return mw(store), nil
}
