package service

import (
	"context"
	"errors"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/internal/util"
	"quizmaster_backend/pkg/events"
	"strings"
	"time"
)

// swagger:model ShareQuizRequest
type ShareQuizRequest struct {
	Recipient string `json:"recipient" validate:"required"`
}

// UserProfile 当前用户信息
// swagger:model UserProfile
type UserProfile struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	QuizzesCreated   []string  `json:"quizzesCreated"`
	QuizzesAttempted []string  `json:"quizzesAttempted"`
	UnreadCount      int       `json:"unreadAnnouncements"`
	CreatedAt        time.Time `json:"createdAt"`
}

// UserService 处理用户目录、通知和分享
type UserService struct {
	Users   repository.UserStore
	Quizzes repository.QuizStore
	Events  EventPublisher
	now     func() time.Time
}

func NewUserService(users repository.UserStore, quizzes repository.QuizStore, publisher EventPublisher) *UserService {
	return &UserService{
		Users:   users,
		Quizzes: quizzes,
		Events:  publisherOrNoop(publisher),
		now:     time.Now,
	}
}

func NewUserProfile(u *model.User) UserProfile {
	return UserProfile{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		QuizzesCreated:   stringsOrEmpty(u.QuizzesCreated),
		QuizzesAttempted: stringsOrEmpty(u.QuizzesAttempted),
		UnreadCount:      u.UnreadCount(),
		CreatedAt:        u.CreatedAt,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := NewUserProfile(user)
	return &profile, nil
}

// ListAnnouncements 最新的通知在前
func (s *UserService) ListAnnouncements(ctx context.Context, userID string) ([]model.Announcement, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Announcements == nil {
		return []model.Announcement{}, nil
	}
	return user.Announcements, nil
}

func (s *UserService) MarkAnnouncementRead(ctx context.Context, userID, announcementID string) error {
	return s.Users.MarkAnnouncementRead(ctx, userID, announcementID)
}

func (s *UserService) MarkAllAnnouncementsRead(ctx context.Context, userID string) error {
	return s.Users.MarkAllAnnouncementsRead(ctx, userID)
}

func (s *UserService) DeleteAnnouncement(ctx context.Context, userID, announcementID string) error {
	return s.Users.DeleteAnnouncement(ctx, userID, announcementID)
}

// findRecipient 按用户名或邮箱查找接收者
func (s *UserService) findRecipient(ctx context.Context, recipient string) (*model.User, error) {
	if strings.Contains(recipient, "@") {
		user, err := s.Users.FindByEmail(ctx, strings.ToLower(recipient))
		if err == nil || !errors.Is(err, util.ErrNotFound) {
			return user, err
		}
	}
	return s.Users.FindByUsername(ctx, recipient)
}

// ShareQuiz 向接收者的通知列表追加一条分享记录
func (s *UserService) ShareQuiz(ctx context.Context, senderID, quizID string, req *ShareQuizRequest) (*model.Announcement, error) {
	if err := util.ValidateStruct(req); err != nil {
		return nil, err
	}

	sender, err := s.Users.FindByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublic && quiz.CreatorID != senderID {
		return nil, util.ErrNotPublic
	}

	recipient, err := s.findRecipient(ctx, strings.TrimSpace(req.Recipient))
	if err != nil {
		return nil, err
	}
	if recipient.ID == senderID {
		return nil, util.ErrSelfShare
	}

	announcement := &model.Announcement{
		ID:         model.GenerateUUID(),
		SentBy:     sender.ID,
		SentByName: sender.Username,
		Message:    quiz.ID,
		Read:       false,
		CreatedAt:  s.now(),
	}
	if err := s.Users.AddAnnouncement(ctx, recipient.ID, announcement); err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.QuizShared, payload{
		"quizId":      quiz.ID,
		"senderId":    sender.ID,
		"recipientId": recipient.ID,
	})
	return announcement, nil
}
