package service

import (
	"quizmaster_backend/internal/model"
)

// GradeQuestions 按题号对照测验的当前题目评分
// 测验中已不存在的题目判为错误、得 0 分，其余题目的答案和分值以当前测验为准
func GradeQuestions(questions []model.AttemptQuestion, key []model.Question) ([]model.AttemptQuestion, int, int) {
	byNumber := make(map[int]model.Question, len(key))
	for _, q := range key {
		byNumber[q.QuestionNumber] = q
	}

	graded := make([]model.AttemptQuestion, len(questions))
	total, maxMarks := 0, 0
	for i, q := range questions {
		live, ok := byNumber[q.QuestionNumber]
		if ok {
			q.Answer = live.Answer
			q.Marks = live.Marks
		}

		q.IsCorrect = ok && q.MarkedOption != nil && *q.MarkedOption == q.Answer
		q.Score = 0
		if q.IsCorrect {
			q.Score = q.Marks
		}

		total += q.Score
		maxMarks += q.Marks
		graded[i] = q
	}
	return graded, total, maxMarks
}

// GradeAnswers 按位置对照答案评分，空字符串视为未作答
// 调用方需保证 len(answers) == len(questions)
func GradeAnswers(questions []model.Question, answers []string) ([]model.AttemptQuestion, int, int) {
	graded := make([]model.AttemptQuestion, len(questions))
	total, maxMarks := 0, 0
	for i, q := range questions {
		aq := snapshotQuestion(q)
		if answers[i] != "" {
			marked := answers[i]
			aq.MarkedOption = &marked
		}
		aq.IsCorrect = aq.MarkedOption != nil && *aq.MarkedOption == q.Answer
		if aq.IsCorrect {
			aq.Score = q.Marks
		}

		total += aq.Score
		maxMarks += q.Marks
		graded[i] = aq
	}
	return graded, total, maxMarks
}

func snapshotQuestion(q model.Question) model.AttemptQuestion {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return model.AttemptQuestion{
		QuestionNumber: q.QuestionNumber,
		Text:           q.Text,
		Options:        options,
		Image:          q.Image,
		Answer:         q.Answer,
		Marks:          q.Marks,
	}
}
