package repository

import (
	"context"
	"quizmaster_backend/internal/model"
)

// QuizStore 测验存储，所有实现都按 ID 原子地读写单个测验
type QuizStore interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	FindByID(ctx context.Context, id string) (*model.Quiz, error)
	ListPublic(ctx context.Context, page, limit int) ([]model.Quiz, int64, error)
	ListByCreator(ctx context.Context, creatorID string) ([]model.Quiz, error)
	// Update 覆盖标量字段并整体替换题目列表
	Update(ctx context.Context, quiz *model.Quiz) error
	Delete(ctx context.Context, id string) error
	// AddAttempt 追加作答记录引用，attemptedBy 去重
	AddAttempt(ctx context.Context, quizID, attemptID, userID string) error
}

type AttemptStore interface {
	Create(ctx context.Context, attempt *model.Attempt) error
	FindByID(ctx context.Context, id string) (*model.Attempt, error)
	ListByUser(ctx context.Context, userID string) ([]model.Attempt, error)
	// SetMarkedOption 只更新一道题的作答，题号不存在时返回 ErrNotFound
	SetMarkedOption(ctx context.Context, attemptID string, questionNumber int, choice string) error
	// MarkInProgress 仅在状态为 created 时推进到 in_progress
	MarkInProgress(ctx context.Context, attemptID string) error
	// SaveResult 写入评分结果，记录已定稿时返回 ErrConflict
	SaveResult(ctx context.Context, attempt *model.Attempt) error
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	AddCreatedQuiz(ctx context.Context, userID, quizID string) error
	RemoveCreatedQuiz(ctx context.Context, userID, quizID string) error
	AddAttemptedQuiz(ctx context.Context, userID, attemptID string) error
	AddAnnouncement(ctx context.Context, userID string, announcement *model.Announcement) error
	MarkAnnouncementRead(ctx context.Context, userID, announcementID string) error
	MarkAllAnnouncementsRead(ctx context.Context, userID string) error
	DeleteAnnouncement(ctx context.Context, userID, announcementID string) error
}

// Store 聚合三个存储，便于按配置切换 MySQL/Postgres/Mongo/内存实现
type Store struct {
	Quizzes  QuizStore
	Attempts AttemptStore
	Users    UserStore

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

func NewStore(quizzes QuizStore, attempts AttemptStore, users UserStore,
	ping, closeFn func(ctx context.Context) error) *Store {
	return &Store{
		Quizzes:  quizzes,
		Attempts: attempts,
		Users:    users,
		ping:     ping,
		close:    closeFn,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}
