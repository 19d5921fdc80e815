package model

import (
	"strings"

	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

const (
	DefaultQuizTime = 240
	DefaultMarks    = 1
)

// swagger:model Quiz
type Quiz struct {
	UUIDBase        `bson:",inline"`
	CreatorID       string                      `gorm:"type:varchar(36);index;not null" bson:"creator_id" json:"creatorId"`
	Title           string                      `gorm:"size:255;not null" bson:"title" json:"title"`
	Description     string                      `gorm:"type:text" bson:"description" json:"description"`
	Questions       []Question                  `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" bson:"questions" json:"questions"`
	Time            int                         `gorm:"not null" bson:"time" json:"time"`
	DifficultyLevel Difficulty                  `gorm:"size:10;not null" bson:"difficulty_level" json:"difficultyLevel"`
	IsPublic        bool                        `gorm:"index" bson:"is_public" json:"isPublic"`
	AttemptedBy     datatypes.JSONSlice[string] `gorm:"type:json" bson:"attempted_by" json:"attemptedBy"`
	Attempts        datatypes.JSONSlice[string] `gorm:"type:json" bson:"attempts" json:"attempts"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question 是测验中的一道单选题，Answer 必须是 Options 之一
type Question struct {
	ID             uint                        `gorm:"primaryKey;autoIncrement" bson:"-" json:"-"`
	QuizID         string                      `gorm:"type:varchar(36);index;not null" bson:"-" json:"-"`
	QuestionNumber int                         `gorm:"not null" bson:"question_number" json:"questionNumber"`
	Text           string                      `gorm:"column:question;type:text;not null" bson:"question" json:"question"`
	Options        datatypes.JSONSlice[string] `gorm:"type:json" bson:"options" json:"options"`
	Answer         string                      `gorm:"type:text;not null" bson:"answer" json:"answer"`
	Marks          int                         `gorm:"not null" bson:"marks" json:"marks"`
	Image          string                      `gorm:"size:512" bson:"image,omitempty" json:"image,omitempty"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

func (q *Question) HasOption(choice string) bool {
	for _, opt := range q.Options {
		if opt == choice {
			return true
		}
	}
	return false
}

// MatchOption 返回与 choice 忽略大小写和首尾空格后相同的选项
func (q *Question) MatchOption(choice string) (string, bool) {
	choice = strings.TrimSpace(choice)
	for _, opt := range q.Options {
		if strings.EqualFold(strings.TrimSpace(opt), choice) {
			return opt, true
		}
	}
	return "", false
}

func (q *Quiz) QuestionByNumber(n int) (*Question, bool) {
	for i := range q.Questions {
		if q.Questions[i].QuestionNumber == n {
			return &q.Questions[i], true
		}
	}
	return nil, false
}

func (q *Quiz) MaxMarks() int {
	total := 0
	for _, qu := range q.Questions {
		total += qu.Marks
	}
	return total
}

func (q *Quiz) HasAttempted(userID string) bool {
	for _, id := range q.AttemptedBy {
		if id == userID {
			return true
		}
	}
	return false
}
