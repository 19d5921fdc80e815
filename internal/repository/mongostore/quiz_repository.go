package mongostore

import (
	"context"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/util"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
)

type QuizRepository struct {
	Col *mongo.Collection
}

func NewQuizRepository(db *mongo.Database) *QuizRepository {
	return &QuizRepository{Col: db.Collection(quizCollection)}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = model.GenerateUUID()
	}
	// $push 不能作用于 null 字段
	if quiz.Attempts == nil {
		quiz.Attempts = datatypes.JSONSlice[string]{}
	}
	if quiz.AttemptedBy == nil {
		quiz.AttemptedBy = datatypes.JSONSlice[string]{}
	}
	_, err := r.Col.InsertOne(ctx, quiz)
	return translateError(err)
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz); err != nil {
		return nil, translateError(err)
	}
	return &quiz, nil
}

func (r *QuizRepository) ListPublic(ctx context.Context, page, limit int) ([]model.Quiz, int64, error) {
	filter := bson.M{"is_public": true}
	total, err := r.Col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	quizzes, err := r.find(ctx, filter, opts)
	return quizzes, total, err
}

func (r *QuizRepository) ListByCreator(ctx context.Context, creatorID string) ([]model.Quiz, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"creator_id": creatorID}, opts)
}

func (r *QuizRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Quiz, error) {
	cursor, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	quizzes := []model.Quiz{}
	if err := cursor.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *QuizRepository) Update(ctx context.Context, quiz *model.Quiz) error {
	update := bson.M{"$set": bson.M{
		"title":            quiz.Title,
		"description":      quiz.Description,
		"questions":        quiz.Questions,
		"time":             quiz.Time,
		"difficulty_level": quiz.DifficultyLevel,
		"is_public":        quiz.IsPublic,
		"updated_at":       time.Now(),
	}}
	return matched(r.Col.UpdateOne(ctx, bson.M{"_id": quiz.ID}, update))
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	res, err := r.Col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return util.ErrNotFound
	}
	return nil
}

func (r *QuizRepository) AddAttempt(ctx context.Context, quizID, attemptID, userID string) error {
	update := bson.M{
		"$push":     bson.M{"attempts": attemptID},
		"$addToSet": bson.M{"attempted_by": userID},
	}
	return matched(r.Col.UpdateOne(ctx, bson.M{"_id": quizID}, update))
}
