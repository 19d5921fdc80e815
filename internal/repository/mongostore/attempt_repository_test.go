package mongostore

import (
	"context"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func gradedAttempt(id string) *model.Attempt {
	now := time.Now()
	a := &model.Attempt{
		QuizID:      "quiz-1",
		UserID:      "user-1",
		TotalMarks:  1,
		MaxMarks:    1,
		IsCompleted: true,
		Status:      model.AttemptFinalized,
		FinalizedAt: &now,
		Questions: []model.AttemptQuestion{
			{QuestionNumber: 1, Answer: "a", Marks: 1, IsCorrect: true, Score: 1},
		},
	}
	a.ID = id
	a.UpdatedAt = now
	return a
}

func TestSaveResultOutcomes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	updateMissed := mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: int32(0)},
		bson.E{Key: "nModified", Value: int32(0)},
	)

	mt.Run("missing attempt", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + attemptCollection
		mt.AddMockResponses(updateMissed, mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		err := NewAttemptRepository(mt.DB).SaveResult(context.Background(), gradedAttempt("missing"))
		assert.ErrorIs(mt, err, util.ErrNotFound)
		assert.NotErrorIs(mt, err, util.ErrAlreadyFinalized)
	})

	mt.Run("already finalized", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + attemptCollection
		mt.AddMockResponses(updateMissed, mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "n", Value: int64(1)}}))

		err := NewAttemptRepository(mt.DB).SaveResult(context.Background(), gradedAttempt("a1"))
		assert.ErrorIs(mt, err, util.ErrAlreadyFinalized)
	})

	mt.Run("first finalize", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(1)},
		))

		err := NewAttemptRepository(mt.DB).SaveResult(context.Background(), gradedAttempt("a1"))
		assert.NoError(mt, err)
	})
}
