package model

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptCreated    AttemptStatus = "created"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptFinalized  AttemptStatus = "finalized"
)

// swagger:model Attempt
type Attempt struct {
	UUIDBase    `bson:",inline"`
	QuizID      string            `gorm:"type:varchar(36);index;not null" bson:"quiz_id" json:"quizId"`
	UserID      string            `gorm:"type:varchar(36);index;not null" bson:"user_id" json:"userId"`
	Title       string            `gorm:"size:255" bson:"title" json:"title"`
	Description string            `gorm:"type:text" bson:"description" json:"description"`
	Questions   []AttemptQuestion `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" bson:"questions" json:"questions"`
	TimeTaken   int               `gorm:"default:0" bson:"time_taken" json:"timeTaken"`
	TotalMarks  int               `gorm:"default:0" bson:"total_marks" json:"totalMarks"`
	MaxMarks    int               `gorm:"default:0" bson:"max_marks" json:"maxMarks"`
	IsCompleted bool              `gorm:"default:false" bson:"is_completed" json:"isCompleted"`
	Status      AttemptStatus     `gorm:"size:20;index;not null" bson:"status" json:"status"`
	FinalizedAt *time.Time        `bson:"finalized_at,omitempty" json:"finalizedAt,omitempty"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) IsFinalized() bool {
	return a.Status == AttemptFinalized
}

// AttemptQuestion 是答题时对题目的快照，MarkedOption 为空表示未作答
type AttemptQuestion struct {
	ID             uint                        `gorm:"primaryKey;autoIncrement" bson:"-" json:"-"`
	AttemptID      string                      `gorm:"type:varchar(36);uniqueIndex:idx_attempt_question;not null" bson:"-" json:"-"`
	QuestionNumber int                         `gorm:"uniqueIndex:idx_attempt_question;not null" bson:"question_number" json:"questionNumber"`
	Text           string                      `gorm:"column:question;type:text" bson:"question" json:"question"`
	Options        datatypes.JSONSlice[string] `gorm:"type:json" bson:"options" json:"options"`
	Image          string                      `gorm:"size:512" bson:"image,omitempty" json:"image,omitempty"`
	Answer         string                      `gorm:"type:text" bson:"answer" json:"answer"`
	MarkedOption   *string                     `gorm:"type:text" bson:"marked_option" json:"markedOption"`
	IsCorrect      bool                        `gorm:"default:false" bson:"is_correct" json:"isCorrect"`
	Marks          int                         `gorm:"default:1" bson:"marks" json:"marks"`
	Score          int                         `gorm:"default:0" bson:"score" json:"score"`
}

func (AttemptQuestion) TableName() string {
	return "attempt_questions"
}

func (a *Attempt) QuestionByNumber(n int) (*AttemptQuestion, bool) {
	for i := range a.Questions {
		if a.Questions[i].QuestionNumber == n {
			return &a.Questions[i], true
		}
	}
	return nil, false
}

func (q *AttemptQuestion) HasOption(choice string) bool {
	for _, opt := range q.Options {
		if opt == choice {
			return true
		}
	}
	return false
}
