package repository

import (
	"context"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/util"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	return translateGormError(r.DB.WithContext(ctx).Create(attempt).Error)
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.DB.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		First(&attempt, "id = ?", id).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &attempt, nil
}

func (r *AttemptRepository) ListByUser(ctx context.Context, userID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) SetMarkedOption(ctx context.Context, attemptID string, questionNumber int, choice string) error {
	db := r.DB.WithContext(ctx).Model(&model.AttemptQuestion{}).
		Where("attempt_id = ? AND question_number = ?", attemptID, questionNumber)

	// MySQL 在值未变化时 RowsAffected 为 0，先确认题目存在
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return util.ErrNotFound
	}

	return r.DB.WithContext(ctx).Model(&model.AttemptQuestion{}).
		Where("attempt_id = ? AND question_number = ?", attemptID, questionNumber).
		Update("marked_option", choice).Error
}

func (r *AttemptRepository) MarkInProgress(ctx context.Context, attemptID string) error {
	return r.DB.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptCreated).
		Update("status", model.AttemptInProgress).Error
}

func (r *AttemptRepository) SaveResult(ctx context.Context, attempt *model.Attempt) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 条件更新保证同一记录只会定稿一次
		res := tx.Model(&model.Attempt{}).
			Where("id = ? AND status <> ?", attempt.ID, model.AttemptFinalized).
			Updates(map[string]interface{}{
				"time_taken":   attempt.TimeTaken,
				"total_marks":  attempt.TotalMarks,
				"max_marks":    attempt.MaxMarks,
				"is_completed": attempt.IsCompleted,
				"status":       attempt.Status,
				"finalized_at": attempt.FinalizedAt,
				"updated_at":   attempt.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Attempt{}).Where("id = ?", attempt.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return util.ErrNotFound
			}
			return util.ErrAlreadyFinalized
		}

		for _, q := range attempt.Questions {
			err := tx.Model(&model.AttemptQuestion{}).
				Where("attempt_id = ? AND question_number = ?", attempt.ID, q.QuestionNumber).
				Updates(map[string]interface{}{
					"answer":     q.Answer,
					"marks":      q.Marks,
					"is_correct": q.IsCorrect,
					"score":      q.Score,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
