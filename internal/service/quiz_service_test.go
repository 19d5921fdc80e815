package service

import (
	"context"
	"quizmaster_backend/internal/util"
	"quizmaster_backend/pkg/events"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuizAppliesDefaults(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "alice")

	req := sampleQuiz()
	req.Questions[0].Marks = 0
	quiz := env.createQuiz(t, owner.ID, req)

	assert.NotEmpty(t, quiz.ID)
	assert.Equal(t, 240, quiz.Time)
	assert.True(t, quiz.IsPublic)
	assert.EqualValues(t, "Easy", quiz.DifficultyLevel)
	assert.Equal(t, 1, quiz.Questions[0].Marks)
	for i, q := range quiz.Questions {
		assert.Equal(t, i+1, q.QuestionNumber)
	}

	user, err := env.store.Users.FindByID(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{quiz.ID}, []string(user.QuizzesCreated))
	assert.Contains(t, env.events.types(), events.QuizCreated)
}

func TestCreateQuizRejectsAnswerOutsideOptions(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "alice")

	req := sampleQuiz()
	req.Questions[1].Answer = "Venice"
	_, err := env.quizzes.CreateQuiz(context.Background(), owner.ID, req)

	var vErr *util.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "questions[1].answer")
	assert.ErrorIs(t, err, util.ErrValidation)

	quizzes, err := env.quizzes.ListMyQuizzes(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Empty(t, quizzes)
}

func TestCreateQuizValidation(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "alice")

	tests := []struct {
		name   string
		mutate func(r *CreateQuizRequest)
		field  string
	}{
		{"missing title", func(r *CreateQuizRequest) { r.Title = "" }, "title"},
		{"no questions", func(r *CreateQuizRequest) { r.Questions = nil }, "questions"},
		{"single option", func(r *CreateQuizRequest) { r.Questions[0].Options = []string{"Paris"} }, "questions[0].options"},
		{"duplicate options", func(r *CreateQuizRequest) { r.Questions[0].Options = []string{"Paris", "Paris"} }, "questions[0].options"},
		{"duplicate after trimming", func(r *CreateQuizRequest) {
			r.Questions[0].Options = []string{"Paris", "Paris ", "Lyon"}
		}, "questions[0].options"},
		{"blank option", func(r *CreateQuizRequest) { r.Questions[0].Options = []string{"Paris", "Lyon", " "} }, "questions[0].options"},
		{"bad difficulty", func(r *CreateQuizRequest) { r.DifficultyLevel = "Extreme" }, "difficultyLevel"},
		{"duplicate numbers", func(r *CreateQuizRequest) {
			r.Questions[0].QuestionNumber = 2
			r.Questions[1].QuestionNumber = 2
		}, "questions[1].questionNumber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := sampleQuiz()
			tt.mutate(req)
			_, err := env.quizzes.CreateQuiz(context.Background(), owner.ID, req)

			var vErr *util.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Fields, tt.field)
		})
	}
}

func TestCreateQuizRollsBackWithoutCreator(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.quizzes.CreateQuiz(context.Background(), "ghost", sampleQuiz())
	assert.ErrorIs(t, err, util.ErrNotFound)

	list, total, err := env.quizzes.ListPublicQuizzes(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestGetQuizHidesAnswersFromOthers(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "alice")
	other := env.register(t, "bob")
	quiz := env.createQuiz(t, owner.ID, sampleQuiz())
	ctx := context.Background()

	view, err := env.quizzes.GetQuiz(ctx, owner.ID, quiz.ID)
	require.NoError(t, err)
	ownerView, ok := view.(QuizOwnerView)
	require.True(t, ok)
	assert.Equal(t, "Paris", ownerView.Questions[0].Answer)
	assert.Equal(t, 6, ownerView.MaxMarks)

	view, err = env.quizzes.GetQuiz(ctx, other.ID, quiz.ID)
	require.NoError(t, err)
	_, ok = view.(QuizPublicView)
	assert.True(t, ok)
}

func TestPrivateQuizLooksMissing(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "alice")
	other := env.register(t, "bob")
	req := sampleQuiz()
	req.IsPublic = boolPtr(false)
	quiz := env.createQuiz(t, owner.ID, req)
	ctx := context.Background()

	_, err := env.quizzes.GetQuiz(ctx, other.ID, quiz.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = env.quizzes.GetQuiz(ctx, owner.ID, quiz.ID)
	assert.NoError(t, err)

	list, total, err := env.quizzes.ListPublicQuizzes(ctx, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
}

func TestListPublicQuizzesPaginates(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "alice")
	for i := 0; i < 5; i++ {
		env.createQuiz(t, owner.ID, sampleQuiz())
	}
	ctx := context.Background()

	page1, total, err := env.quizzes.ListPublicQuizzes(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, page1, 2)

	page3, _, err := env.quizzes.ListPublicQuizzes(ctx, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3, 1)

	page4, _, err := env.quizzes.ListPublicQuizzes(ctx, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page4)
}

func TestUpdateQuizOwnershipAndPartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "alice")
	other := env.register(t, "bob")
	quiz := env.createQuiz(t, owner.ID, sampleQuiz())
	ctx := context.Background()

	title := "Renamed"
	_, err := env.quizzes.UpdateQuiz(ctx, other.ID, quiz.ID, &UpdateQuizRequest{Title: &title})
	assert.ErrorIs(t, err, util.ErrForbidden)

	updated, err := env.quizzes.UpdateQuiz(ctx, owner.ID, quiz.ID, &UpdateQuizRequest{
		Title:    &title,
		IsPublic: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.False(t, updated.IsPublic)
	assert.Equal(t, "European capitals", updated.Description)
	assert.Len(t, updated.Questions, 3)

	stored, err := env.store.Quizzes.FindByID(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Len(t, stored.Questions, 3)
}

func TestUpdateQuizReplacesQuestions(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "alice")
	quiz := env.createQuiz(t, owner.ID, sampleQuiz())
	ctx := context.Background()

	questions := []QuestionRequest{
		{Question: "2 + 2?", Options: []string{"3", "4"}, Answer: "4", Marks: 5},
	}
	updated, err := env.quizzes.UpdateQuiz(ctx, owner.ID, quiz.ID, &UpdateQuizRequest{Questions: &questions})
	require.NoError(t, err)
	require.Len(t, updated.Questions, 1)
	assert.Equal(t, 5, updated.MaxMarks())

	bad := []QuestionRequest{
		{Question: "2 + 2?", Options: []string{"3", "4"}, Answer: "5"},
	}
	_, err = env.quizzes.UpdateQuiz(ctx, owner.ID, quiz.ID, &UpdateQuizRequest{Questions: &bad})
	assert.ErrorIs(t, err, util.ErrValidation)

	empty := []QuestionRequest{}
	_, err = env.quizzes.UpdateQuiz(ctx, owner.ID, quiz.ID, &UpdateQuizRequest{Questions: &empty})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestDeleteQuiz(t *testing.T) {
	env := newTestEnv(t)
	owner := env.register(t, "alice")
	other := env.register(t, "bob")
	quiz := env.createQuiz(t, owner.ID, sampleQuiz())
	ctx := context.Background()

	assert.ErrorIs(t, env.quizzes.DeleteQuiz(ctx, other.ID, quiz.ID), util.ErrForbidden)
	require.NoError(t, env.quizzes.DeleteQuiz(ctx, owner.ID, quiz.ID))

	_, err := env.store.Quizzes.FindByID(ctx, quiz.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)

	user, err := env.store.Users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, user.QuizzesCreated)
	assert.Contains(t, env.events.types(), events.QuizDeleted)

	assert.ErrorIs(t, env.quizzes.DeleteQuiz(ctx, owner.ID, quiz.ID), util.ErrNotFound)
}
