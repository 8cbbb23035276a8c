package app

import (
	"context"
	"errors"

	"catalog-service/internal/config"
	"catalog-service/internal/db"
	"catalog-service/internal/logger"
	"catalog-service/internal/redis"
	"catalog-service/internal/session"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client // nil unless sessions live in Redis
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	database, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx, database); err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("database ready", map[string]any{"driver": cfg.DatabaseDriver})

	infra := &Infra{DB: database}

	if cfg.SessionBackend == "redis" {
		client, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		infra.Redis = client

		logger.Info("redis ready", map[string]any{"addr": cfg.RedisAddr})
	}

	return infra, nil
}

func (i *Infra) sessionStore() session.Store {
	if i.Redis != nil {
		return session.NewRedisStore(i.Redis.Client)
	}
	return session.NewMemoryStore()
}

func (i *Infra) Close() error {
	var errs []error
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	errs = append(errs, i.DB.Close())
	return errors.Join(errs...)
}
