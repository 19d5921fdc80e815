package mongostore

import (
	"context"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/util"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection(attemptCollection)}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = model.GenerateUUID()
	}
	_, err := r.Col.InsertOne(ctx, attempt)
	return translateError(err)
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt); err != nil {
		return nil, translateError(err)
	}
	return &attempt, nil
}

func (r *AttemptRepository) ListByUser(ctx context.Context, userID string) ([]model.Attempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	attempts := []model.Attempt{}
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// SetMarkedOption 通过位置操作符只改写目标题目的字段
func (r *AttemptRepository) SetMarkedOption(ctx context.Context, attemptID string, questionNumber int, choice string) error {
	filter := bson.M{"_id": attemptID, "questions.question_number": questionNumber}
	update := bson.M{"$set": bson.M{
		"questions.$.marked_option": choice,
		"updated_at":                time.Now(),
	}}
	return matched(r.Col.UpdateOne(ctx, filter, update))
}

func (r *AttemptRepository) MarkInProgress(ctx context.Context, attemptID string) error {
	filter := bson.M{"_id": attemptID, "status": model.AttemptCreated}
	update := bson.M{"$set": bson.M{"status": model.AttemptInProgress}}
	_, err := r.Col.UpdateOne(ctx, filter, update)
	return err
}

func (r *AttemptRepository) SaveResult(ctx context.Context, attempt *model.Attempt) error {
	set := bson.M{
		"time_taken":   attempt.TimeTaken,
		"total_marks":  attempt.TotalMarks,
		"max_marks":    attempt.MaxMarks,
		"is_completed": attempt.IsCompleted,
		"status":       attempt.Status,
		"finalized_at": attempt.FinalizedAt,
		"updated_at":   attempt.UpdatedAt,
	}
	// 逐题写入评分字段，不覆盖 marked_option
	var filters []interface{}
	for i, q := range attempt.Questions {
		key := "q" + strconv.Itoa(i)
		prefix := "questions.$[" + key + "]."
		set[prefix+"answer"] = q.Answer
		set[prefix+"marks"] = q.Marks
		set[prefix+"is_correct"] = q.IsCorrect
		set[prefix+"score"] = q.Score
		filters = append(filters, bson.M{key + ".question_number": q.QuestionNumber})
	}

	opts := options.Update()
	if len(filters) > 0 {
		opts.SetArrayFilters(options.ArrayFilters{Filters: filters})
	}

	filter := bson.M{"_id": attempt.ID, "status": bson.M{"$ne": model.AttemptFinalized}}
	res, err := r.Col.UpdateOne(ctx, filter, bson.M{"$set": set}, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		n, err := r.Col.CountDocuments(ctx, bson.M{"_id": attempt.ID})
		if err != nil {
			return err
		}
		if n == 0 {
			return util.ErrNotFound
		}
		return util.ErrAlreadyFinalized
	}
	return nil
}
