package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/core/ports"
	"github.com/99minutos/identity-service/internal/core/service"
	"github.com/99minutos/identity-service/internal/infrastructure/config"
	mongostore "github.com/99minutos/identity-service/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/identity-service/internal/infrastructure/db/redis"
	"github.com/99minutos/identity-service/internal/infrastructure/db/sqlite"
	"github.com/99minutos/identity-service/internal/infrastructure/queue"
	"github.com/99minutos/identity-service/internal/infrastructure/security"
	"github.com/99minutos/identity-service/pkg/logger"
)

// app holds the wired services shared by every subcommand.
type app struct {
	users   *service.UserService
	auth    *service.AuthService
	gate    *service.Gate
	audit   *queue.Dispatcher
	probes  map[string]handler.Pinger
	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *app, err error) {
	a := &app{probes: make(map[string]handler.Pinger)}
	defer func() {
		if err != nil {
			_ = a.close(context.Background())
		}
	}()

	var (
		repo ports.UserRepository
		sink ports.AuditSink
	)

	switch cfg.StoreDriver {
	case config.StoreMongo:
		db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(ctx context.Context) error { return mongostore.Close(ctx, db) })

		users := mongostore.NewUserRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		repo = users
		sink = mongostore.NewAuditRepository(db)
		a.probes["mongodb"] = mongostore.NewPinger(db)
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })

		repo = store
		sink = queue.NewLogSink(logger.Component("audit"))
		a.probes["sqlite"] = store
		log.Info().Str("path", cfg.SQLite.Path).Msg("opened sqlite store")

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	if cfg.Redis.Enabled {
		client, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })

		repo = redisstore.NewCachedUserRepository(repo, client, cfg.Redis.CacheTTL, logger.Component("cache"))
		a.probes["redis"] = redisstore.NewPinger(client)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("user cache enabled")
	}

	issuer, err := security.NewJWTIssuer(cfg.Auth.JWTSecret,
		security.WithTTL(cfg.Auth.TokenTTL),
		security.WithIssuer(cfg.Auth.Issuer),
	)
	if err != nil {
		return nil, err
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	a.users = service.NewUserService(repo, hasher)
	a.auth = service.NewAuthService(a.users, hasher, issuer)
	a.gate = service.NewGate(issuer, nil)

	a.audit = queue.NewDispatcher(cfg.Audit.Workers, sink, logger.Component("audit"))
	a.audit.Start()

	return a, nil
}

// close drains the audit queue, then releases connections in reverse order.
func (a *app) close(ctx context.Context) error {
	if a.audit != nil {
		a.audit.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
