package service

import (
	"quizmaster_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestGradeQuestions(t *testing.T) {
	key := []model.Question{
		{QuestionNumber: 1, Options: []string{"a", "b"}, Answer: "a", Marks: 2},
		{QuestionNumber: 2, Options: []string{"a", "b"}, Answer: "b", Marks: 3},
	}
	questions := []model.AttemptQuestion{
		{QuestionNumber: 1, Answer: "b", Marks: 1, MarkedOption: strPtr("a")},
		{QuestionNumber: 2, Answer: "b", Marks: 3},
		{QuestionNumber: 3, Answer: "a", Marks: 4, MarkedOption: strPtr("a")},
	}

	graded, total, maxMarks := GradeQuestions(questions, key)

	assert.Equal(t, 2, total)
	assert.Equal(t, 9, maxMarks)
	assert.True(t, graded[0].IsCorrect)
	assert.Equal(t, "a", graded[0].Answer)
	assert.Equal(t, 2, graded[0].Score)
	assert.False(t, graded[1].IsCorrect)
	assert.Zero(t, graded[1].Score)
	assert.False(t, graded[2].IsCorrect, "question missing from the quiz never scores")
	assert.Zero(t, graded[2].Score)

	// 原切片不被修改
	assert.Equal(t, "b", questions[0].Answer)
}

func TestGradeAnswers(t *testing.T) {
	key := []model.Question{
		{QuestionNumber: 1, Text: "q1", Options: []string{"a", "b"}, Answer: "a", Marks: 1},
		{QuestionNumber: 2, Text: "q2", Options: []string{"a", "b"}, Answer: "b", Marks: 1},
		{QuestionNumber: 3, Text: "q3", Options: []string{"a", "b"}, Answer: "a", Marks: 5},
	}

	graded, total, maxMarks := GradeAnswers(key, []string{"a", "a", ""})

	assert.Equal(t, 1, total)
	assert.Equal(t, 7, maxMarks)
	assert.True(t, graded[0].IsCorrect)
	assert.False(t, graded[1].IsCorrect)
	assert.Nil(t, graded[2].MarkedOption)
	assert.Equal(t, "q3", graded[2].Text)
}

func TestScoreNeverExceedsMaxMarks(t *testing.T) {
	key := []model.Question{
		{QuestionNumber: 1, Options: []string{"a", "b"}, Answer: "a", Marks: 3},
		{QuestionNumber: 2, Options: []string{"a", "b"}, Answer: "b", Marks: 2},
	}
	for _, answers := range [][]string{{"a", "b"}, {"b", "a"}, {"", ""}, {"a", ""}} {
		_, total, maxMarks := GradeAnswers(key, answers)
		assert.LessOrEqual(t, total, maxMarks)
		assert.GreaterOrEqual(t, total, 0)
	}
}
