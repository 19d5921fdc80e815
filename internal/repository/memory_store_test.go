package repository

import (
	"context"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuiz(creatorID string, public bool, createdAt time.Time) *model.Quiz {
	q := &model.Quiz{
		CreatorID: creatorID,
		Title:     "quiz",
		IsPublic:  public,
		Questions: []model.Question{
			{QuestionNumber: 1, Text: "q", Options: []string{"a", "b"}, Answer: "a", Marks: 1},
		},
	}
	q.Touch(createdAt)
	return q
}

func TestMemoryQuizStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	quiz := newQuiz("u1", true, time.Now())
	require.NoError(t, store.Quizzes.Create(ctx, quiz))

	got, err := store.Quizzes.FindByID(ctx, quiz.ID)
	require.NoError(t, err)
	got.Questions[0].Options[0] = "changed"
	got.Title = "changed"

	again, err := store.Quizzes.FindByID(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "quiz", again.Title)
	assert.Equal(t, "a", again.Questions[0].Options[0])
}

func TestMemoryListPublicOrdersNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	old := newQuiz("u1", true, base.Add(-time.Hour))
	recent := newQuiz("u1", true, base)
	hidden := newQuiz("u1", false, base.Add(time.Hour))
	for _, q := range []*model.Quiz{old, recent, hidden} {
		require.NoError(t, store.Quizzes.Create(ctx, q))
	}

	list, total, err := store.Quizzes.ListPublic(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, recent.ID, list[0].ID)
	assert.Equal(t, old.ID, list[1].ID)
}

func TestMemoryAddAttemptDedupesUsers(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	quiz := newQuiz("u1", true, time.Now())
	require.NoError(t, store.Quizzes.Create(ctx, quiz))

	require.NoError(t, store.Quizzes.AddAttempt(ctx, quiz.ID, "a1", "u2"))
	require.NoError(t, store.Quizzes.AddAttempt(ctx, quiz.ID, "a2", "u2"))
	assert.ErrorIs(t, store.Quizzes.AddAttempt(ctx, "missing", "a3", "u2"), util.ErrNotFound)

	got, err := store.Quizzes.FindByID(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, []string(got.Attempts))
	assert.Equal(t, []string{"u2"}, []string(got.AttemptedBy))
}

func TestMemorySaveResultOnlyOnce(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	attempt := &model.Attempt{
		QuizID: "q1",
		UserID: "u1",
		Status: model.AttemptCreated,
		Questions: []model.AttemptQuestion{
			{QuestionNumber: 1, Options: []string{"a", "b"}, Answer: "a", Marks: 1},
		},
	}
	attempt.Touch(time.Now())
	require.NoError(t, store.Attempts.Create(ctx, attempt))

	require.NoError(t, store.Attempts.SetMarkedOption(ctx, attempt.ID, 1, "a"))
	assert.ErrorIs(t, store.Attempts.SetMarkedOption(ctx, attempt.ID, 2, "a"), util.ErrNotFound)
	require.NoError(t, store.Attempts.MarkInProgress(ctx, attempt.ID))

	final := *attempt
	final.Status = model.AttemptFinalized
	final.TotalMarks = 1
	final.Questions = []model.AttemptQuestion{{QuestionNumber: 1, Answer: "a", Marks: 1, IsCorrect: true, Score: 1}}
	require.NoError(t, store.Attempts.SaveResult(ctx, &final))
	assert.ErrorIs(t, store.Attempts.SaveResult(ctx, &final), util.ErrAlreadyFinalized)

	missing := final
	missing.ID = "missing"
	assert.ErrorIs(t, store.Attempts.SaveResult(ctx, &missing), util.ErrNotFound)

	got, err := store.Attempts.FindByID(ctx, attempt.ID)
	require.NoError(t, err)
	assert.True(t, got.IsFinalized())
	assert.Equal(t, 1, got.Questions[0].Score)
	assert.Equal(t, "a", *got.Questions[0].MarkedOption)
}

func TestMemoryUserUniqueness(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Users.Create(ctx, &model.User{Username: "alice", Email: "alice@example.com"}))
	assert.ErrorIs(t, store.Users.Create(ctx, &model.User{Username: "alice", Email: "other@example.com"}), util.ErrConflict)
	assert.ErrorIs(t, store.Users.Create(ctx, &model.User{Username: "bob", Email: "alice@example.com"}), util.ErrConflict)

	_, err := store.Users.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, util.ErrNotFound)
	assert.NoError(t, store.Ping(ctx))
}

func TestMemorySessionExpiry(t *testing.T) {
	sessions := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, sessions.Revoke(ctx, "jti-1", time.Hour))
	require.NoError(t, sessions.Revoke(ctx, "jti-2", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	revoked, err := sessions.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = sessions.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
