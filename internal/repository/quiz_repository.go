package repository

import (
	"context"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/util"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("question_number ASC")
}

func (r *QuizRepository) Create(ctx context.Context, quiz *model.Quiz) error {
	return translateGormError(r.DB.WithContext(ctx).Create(quiz).Error)
}

func (r *QuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		First(&quiz, "id = ?", id).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &quiz, nil
}

func (r *QuizRepository) ListPublic(ctx context.Context, page, limit int) ([]model.Quiz, int64, error) {
	var quizzes []model.Quiz
	var total int64

	base := func() *gorm.DB {
		return r.DB.WithContext(ctx).Model(&model.Quiz{}).Where("is_public = ?", true)
	}
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base().Preload("Questions", orderedQuestions).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&quizzes).Error
	return quizzes, total, err
}

func (r *QuizRepository) ListByCreator(ctx context.Context, creatorID string) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) Update(ctx context.Context, quiz *model.Quiz) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 使用 map 以便写入 false/0 等零值
		res := tx.Model(&model.Quiz{}).Where("id = ?", quiz.ID).Updates(map[string]interface{}{
			"title":            quiz.Title,
			"description":      quiz.Description,
			"time":             quiz.Time,
			"difficulty_level": quiz.DifficultyLevel,
			"is_public":        quiz.IsPublic,
			"updated_at":       time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrNotFound
		}

		// 题目整体替换
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if len(quiz.Questions) == 0 {
			return nil
		}
		for i := range quiz.Questions {
			quiz.Questions[i].ID = 0
			quiz.Questions[i].QuizID = quiz.ID
		}
		return tx.Create(&quiz.Questions).Error
	})
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Quiz{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrNotFound
		}
		return nil
	})
}

func (r *QuizRepository) AddAttempt(ctx context.Context, quizID, attemptID, userID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz model.Quiz
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "attempts", "attempted_by").
			First(&quiz, "id = ?", quizID).Error
		if err != nil {
			return translateGormError(err)
		}

		quiz.Attempts = append(quiz.Attempts, attemptID)
		if !quiz.HasAttempted(userID) {
			quiz.AttemptedBy = append(quiz.AttemptedBy, userID)
		}

		return tx.Model(&model.Quiz{}).Where("id = ?", quizID).Updates(map[string]interface{}{
			"attempts":     quiz.Attempts,
			"attempted_by": quiz.AttemptedBy,
		}).Error
	})
}
