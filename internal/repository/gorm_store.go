package repository

import (
	"context"
	"errors"
	"quizmaster_backend/internal/util"

	"gorm.io/gorm"
)

// NewGormStore 基于 MySQL 或 Postgres 连接创建存储
func NewGormStore(db *gorm.DB) *Store {
	return NewStore(
		NewQuizRepository(db),
		NewAttemptRepository(db),
		NewUserRepository(db),
		func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	)
}

func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return util.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return util.ErrConflict
	default:
		return err
	}
}
