package repository

import (
	"context"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translateGormError(r.DB.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).
		Preload("Announcements", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where(query, arg).
		First(&user).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// updateRefs 在行锁内读取并改写引用列表
func (r *UserRepository) updateRefs(ctx context.Context, userID, column string,
	mutate func(refs datatypes.JSONSlice[string]) datatypes.JSONSlice[string]) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", column).
			First(&user, "id = ?", userID).Error
		if err != nil {
			return translateGormError(err)
		}

		var refs datatypes.JSONSlice[string]
		switch column {
		case "quizzes_created":
			refs = user.QuizzesCreated
		case "quizzes_attempted":
			refs = user.QuizzesAttempted
		}

		return tx.Model(&model.User{}).Where("id = ?", userID).
			Update(column, mutate(refs)).Error
	})
}

func (r *UserRepository) AddCreatedQuiz(ctx context.Context, userID, quizID string) error {
	return r.updateRefs(ctx, userID, "quizzes_created", func(refs datatypes.JSONSlice[string]) datatypes.JSONSlice[string] {
		for _, id := range refs {
			if id == quizID {
				return refs
			}
		}
		return append(refs, quizID)
	})
}

func (r *UserRepository) RemoveCreatedQuiz(ctx context.Context, userID, quizID string) error {
	return r.updateRefs(ctx, userID, "quizzes_created", func(refs datatypes.JSONSlice[string]) datatypes.JSONSlice[string] {
		return removeRef(refs, quizID)
	})
}

func (r *UserRepository) AddAttemptedQuiz(ctx context.Context, userID, attemptID string) error {
	return r.updateRefs(ctx, userID, "quizzes_attempted", func(refs datatypes.JSONSlice[string]) datatypes.JSONSlice[string] {
		return append(refs, attemptID)
	})
}

func (r *UserRepository) AddAnnouncement(ctx context.Context, userID string, announcement *model.Announcement) error {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return util.ErrNotFound
	}

	announcement.UserID = userID
	return r.DB.WithContext(ctx).Create(announcement).Error
}

func (r *UserRepository) MarkAnnouncementRead(ctx context.Context, userID, announcementID string) error {
	db := r.DB.WithContext(ctx).Model(&model.Announcement{}).
		Where("id = ? AND user_id = ?", announcementID, userID)

	var count int64
	if err := db.Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return util.ErrNotFound
	}

	return r.DB.WithContext(ctx).Model(&model.Announcement{}).
		Where("id = ? AND user_id = ?", announcementID, userID).
		Update("is_read", true).Error
}

func (r *UserRepository) MarkAllAnnouncementsRead(ctx context.Context, userID string) error {
	return r.DB.WithContext(ctx).Model(&model.Announcement{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *UserRepository) DeleteAnnouncement(ctx context.Context, userID, announcementID string) error {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", announcementID, userID).
		Delete(&model.Announcement{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

func removeRef(refs []string, id string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref != id {
			out = append(out, ref)
		}
	}
	return out
}
