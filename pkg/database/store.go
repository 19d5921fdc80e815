package database

import (
	"context"
	"quizmaster_backend/internal/config"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/internal/repository/mongostore"
	applog "quizmaster_backend/pkg/logger"
)

// InitStore 按 database.driver 选择存储实现并完成迁移或建索引
func InitStore(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	switch cfg.Database.Driver {
	case "memory":
		applog.Log.Warn("Using in-memory store, data will not survive restarts")
		return repository.NewMemoryStore(), nil
	case "mongo":
		db, err := InitMongo(ctx, &cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		return mongostore.NewStore(db), nil
	default:
		db, err := InitDB(&cfg.Database, cfg.Server.Mode == "debug")
		if err != nil {
			return nil, err
		}
		if err := Migrate(db); err != nil {
			return nil, err
		}
		return repository.NewGormStore(db), nil
	}
}
