package mongostore

import (
	"context"
	"errors"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/internal/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	quizCollection    = "quizzes"
	attemptCollection = "attempts"
	userCollection    = "users"
)

// NewStore 使用嵌入式数组的文档模型实现存储
func NewStore(db *mongo.Database) *repository.Store {
	return repository.NewStore(
		NewQuizRepository(db),
		NewAttemptRepository(db),
		NewUserRepository(db),
		func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		},
		func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	)
}

// EnsureIndexes 创建唯一索引和列表查询用到的索引
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		userCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		quizCollection: {
			{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "creator_id", Value: 1}}},
		},
		attemptCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return util.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return util.ErrConflict
	default:
		return err
	}
}

func matched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return util.ErrNotFound
	}
	return nil
}
