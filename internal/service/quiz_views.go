package service

import (
	"quizmaster_backend/internal/model"
	"time"
)

// QuizView 由两种读取视图实现：创建者视图包含答案，公开视图不包含
type QuizView interface {
	quizView()
}

type OwnerQuestion struct {
	QuestionNumber int      `json:"questionNumber"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Answer         string   `json:"answer"`
	Marks          int      `json:"marks"`
	Image          string   `json:"image,omitempty"`
}

// swagger:model QuizOwnerView
type QuizOwnerView struct {
	ID              string           `json:"id"`
	CreatorID       string           `json:"creatorId"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Questions       []OwnerQuestion  `json:"questions"`
	Time            int              `json:"time"`
	DifficultyLevel model.Difficulty `json:"difficultyLevel"`
	IsPublic        bool             `json:"isPublic"`
	AttemptedBy     []string         `json:"attemptedBy"`
	Attempts        []string         `json:"attempts"`
	MaxMarks        int              `json:"maxMarks"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func (QuizOwnerView) quizView() {}

type PublicQuestion struct {
	QuestionNumber int      `json:"questionNumber"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Marks          int      `json:"marks"`
	Image          string   `json:"image,omitempty"`
}

// swagger:model QuizPublicView
type QuizPublicView struct {
	ID              string           `json:"id"`
	CreatorID       string           `json:"creatorId"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Questions       []PublicQuestion `json:"questions"`
	QuestionCount   int              `json:"questionCount"`
	Time            int              `json:"time"`
	DifficultyLevel model.Difficulty `json:"difficultyLevel"`
	IsPublic        bool             `json:"isPublic"`
	AttemptCount    int              `json:"attemptCount"`
	MaxMarks        int              `json:"maxMarks"`
	CreatedAt       time.Time        `json:"createdAt"`
}

func (QuizPublicView) quizView() {}

func stringsOrEmpty(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func NewQuizOwnerView(q *model.Quiz) QuizOwnerView {
	questions := make([]OwnerQuestion, 0, len(q.Questions))
	for _, qu := range q.Questions {
		questions = append(questions, OwnerQuestion{
			QuestionNumber: qu.QuestionNumber,
			Question:       qu.Text,
			Options:        stringsOrEmpty(qu.Options),
			Answer:         qu.Answer,
			Marks:          qu.Marks,
			Image:          qu.Image,
		})
	}
	return QuizOwnerView{
		ID:              q.ID,
		CreatorID:       q.CreatorID,
		Title:           q.Title,
		Description:     q.Description,
		Questions:       questions,
		Time:            q.Time,
		DifficultyLevel: q.DifficultyLevel,
		IsPublic:        q.IsPublic,
		AttemptedBy:     stringsOrEmpty(q.AttemptedBy),
		Attempts:        stringsOrEmpty(q.Attempts),
		MaxMarks:        q.MaxMarks(),
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
}

func NewQuizPublicView(q *model.Quiz) QuizPublicView {
	questions := make([]PublicQuestion, 0, len(q.Questions))
	for _, qu := range q.Questions {
		questions = append(questions, PublicQuestion{
			QuestionNumber: qu.QuestionNumber,
			Question:       qu.Text,
			Options:        stringsOrEmpty(qu.Options),
			Marks:          qu.Marks,
			Image:          qu.Image,
		})
	}
	return QuizPublicView{
		ID:              q.ID,
		CreatorID:       q.CreatorID,
		Title:           q.Title,
		Description:     q.Description,
		Questions:       questions,
		QuestionCount:   len(questions),
		Time:            q.Time,
		DifficultyLevel: q.DifficultyLevel,
		IsPublic:        q.IsPublic,
		AttemptCount:    len(q.Attempts),
		MaxMarks:        q.MaxMarks(),
		CreatedAt:       q.CreatedAt,
	}
}

type AttemptQuestionView struct {
	QuestionNumber int      `json:"questionNumber"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Image          string   `json:"image,omitempty"`
	MarkedOption   *string  `json:"markedOption"`
	Marks          int      `json:"marks"`
}

// AttemptView 作答进行中的视图，不包含标准答案
// swagger:model AttemptView
type AttemptView struct {
	ID          string                `json:"id"`
	QuizID      string                `json:"quizId"`
	UserID      string                `json:"userId"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Questions   []AttemptQuestionView `json:"questions"`
	TimeTaken   int                   `json:"timeTaken"`
	Status      model.AttemptStatus   `json:"status"`
	IsCompleted bool                  `json:"isCompleted"`
	CreatedAt   time.Time             `json:"createdAt"`
}

func NewAttemptView(a *model.Attempt) AttemptView {
	questions := make([]AttemptQuestionView, 0, len(a.Questions))
	for _, qu := range a.Questions {
		questions = append(questions, AttemptQuestionView{
			QuestionNumber: qu.QuestionNumber,
			Question:       qu.Text,
			Options:        stringsOrEmpty(qu.Options),
			Image:          qu.Image,
			MarkedOption:   qu.MarkedOption,
			Marks:          qu.Marks,
		})
	}
	return AttemptView{
		ID:          a.ID,
		QuizID:      a.QuizID,
		UserID:      a.UserID,
		Title:       a.Title,
		Description: a.Description,
		Questions:   questions,
		TimeTaken:   a.TimeTaken,
		Status:      a.Status,
		IsCompleted: a.IsCompleted,
		CreatedAt:   a.CreatedAt,
	}
}

type ReviewQuestion struct {
	QuestionNumber int      `json:"questionNumber"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	Image          string   `json:"image,omitempty"`
	Answer         string   `json:"answer"`
	MarkedOption   *string  `json:"markedOption"`
	IsCorrect      bool     `json:"isCorrect"`
	Marks          int      `json:"marks"`
	Score          int      `json:"score"`
}

// AttemptReview 定稿后的作答详情，包含标准答案与逐题得分
// swagger:model AttemptReview
type AttemptReview struct {
	ID          string              `json:"id"`
	QuizID      string              `json:"quizId"`
	UserID      string              `json:"userId"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []ReviewQuestion    `json:"questions"`
	TimeTaken   int                 `json:"timeTaken"`
	TotalMarks  int                 `json:"totalMarks"`
	MaxMarks    int                 `json:"maxMarks"`
	Status      model.AttemptStatus `json:"status"`
	IsCompleted bool                `json:"isCompleted"`
	FinalizedAt *time.Time          `json:"finalizedAt,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

func NewAttemptReview(a *model.Attempt) AttemptReview {
	questions := make([]ReviewQuestion, 0, len(a.Questions))
	for _, qu := range a.Questions {
		questions = append(questions, ReviewQuestion{
			QuestionNumber: qu.QuestionNumber,
			Question:       qu.Text,
			Options:        stringsOrEmpty(qu.Options),
			Image:          qu.Image,
			Answer:         qu.Answer,
			MarkedOption:   qu.MarkedOption,
			IsCorrect:      qu.IsCorrect,
			Marks:          qu.Marks,
			Score:          qu.Score,
		})
	}
	return AttemptReview{
		ID:          a.ID,
		QuizID:      a.QuizID,
		UserID:      a.UserID,
		Title:       a.Title,
		Description: a.Description,
		Questions:   questions,
		TimeTaken:   a.TimeTaken,
		TotalMarks:  a.TotalMarks,
		MaxMarks:    a.MaxMarks,
		Status:      a.Status,
		IsCompleted: a.IsCompleted,
		FinalizedAt: a.FinalizedAt,
		CreatedAt:   a.CreatedAt,
	}
}
