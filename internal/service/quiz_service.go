package service

import (
	"context"
	"fmt"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/internal/util"
	"quizmaster_backend/pkg/events"
	"quizmaster_backend/pkg/logger"
	"quizmaster_backend/pkg/monitoring"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// QuestionRequest 题目请求体，questionNumber 为 0 时按顺序编号
type QuestionRequest struct {
	QuestionNumber int      `json:"questionNumber" validate:"gte=0"`
	Question       string   `json:"question" validate:"required"`
	Options        []string `json:"options" validate:"required,min=2,unique,dive,required"`
	Answer         string   `json:"answer" validate:"required"`
	Marks          int      `json:"marks" validate:"gte=0"`
	Image          string   `json:"image,omitempty" validate:"omitempty,max=512"`
}

// swagger:model CreateQuizRequest
type CreateQuizRequest struct {
	Title           string            `json:"title" validate:"required,max=255"`
	Description     string            `json:"description" validate:"max=5000"`
	Questions       []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
	Time            int               `json:"time" validate:"gte=0"`
	DifficultyLevel string            `json:"difficultyLevel" validate:"omitempty,oneof=Easy Medium Hard"`
	IsPublic        *bool             `json:"isPublic"`
}

// UpdateQuizRequest 只更新非 nil 字段，questions 提供时整体替换
// swagger:model UpdateQuizRequest
type UpdateQuizRequest struct {
	Title           *string            `json:"title" validate:"omitempty,min=1,max=255"`
	Description     *string            `json:"description" validate:"omitempty,max=5000"`
	Questions       *[]QuestionRequest `json:"questions"`
	Time            *int               `json:"time" validate:"omitempty,gte=0"`
	DifficultyLevel *string            `json:"difficultyLevel" validate:"omitempty,oneof=Easy Medium Hard"`
	IsPublic        *bool              `json:"isPublic"`
}

type questionList struct {
	Questions []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type QuizService struct {
	Quizzes repository.QuizStore
	Users   repository.UserStore
	Events  EventPublisher
	now     func() time.Time
}

func NewQuizService(quizzes repository.QuizStore, users repository.UserStore, publisher EventPublisher) *QuizService {
	return &QuizService{
		Quizzes: quizzes,
		Users:   users,
		Events:  publisherOrNoop(publisher),
		now:     time.Now,
	}
}

// buildQuestions 规范化并校验题目：题号唯一且连续、答案必须是选项之一
func buildQuestions(reqs []QuestionRequest) ([]model.Question, error) {
	vErr := &util.ValidationError{}
	questions := make([]model.Question, 0, len(reqs))
	seen := make(map[int]bool, len(reqs))

	for i, r := range reqs {
		number := r.QuestionNumber
		if number == 0 {
			number = i + 1
		}
		if seen[number] {
			vErr.Add(fmt.Sprintf("questions[%d].questionNumber", i), "must be unique")
		}
		seen[number] = true

		options := make([]string, 0, len(r.Options))
		distinct := make(map[string]bool, len(r.Options))
		for _, opt := range r.Options {
			opt = strings.TrimSpace(opt)
			switch {
			case opt == "":
				vErr.Add(fmt.Sprintf("questions[%d].options", i), "options must not be blank")
			case distinct[opt]:
				vErr.Add(fmt.Sprintf("questions[%d].options", i), "options must be distinct")
			}
			distinct[opt] = true
			options = append(options, opt)
		}

		q := model.Question{
			QuestionNumber: number,
			Text:           strings.TrimSpace(r.Question),
			Options:        options,
			Answer:         strings.TrimSpace(r.Answer),
			Marks:          r.Marks,
			Image:          strings.TrimSpace(r.Image),
		}
		if q.Marks == 0 {
			q.Marks = model.DefaultMarks
		}
		if !q.HasOption(q.Answer) {
			vErr.Add(fmt.Sprintf("questions[%d].answer", i), "must be one of the options")
		}
		questions = append(questions, q)
	}

	for n := 1; n <= len(reqs); n++ {
		if !seen[n] {
			vErr.Add("questions", fmt.Sprintf("question numbers must run from 1 to %d", len(reqs)))
			break
		}
	}

	if len(vErr.Fields) > 0 {
		return nil, vErr
	}

	sort.Slice(questions, func(i, j int) bool {
		return questions[i].QuestionNumber < questions[j].QuestionNumber
	})
	return questions, nil
}

// CreateQuiz 创建测验并在创建者的目录中登记
func (s *QuizService) CreateQuiz(ctx context.Context, creatorID string, req *CreateQuizRequest) (*model.Quiz, error) {
	if err := util.ValidateStruct(req); err != nil {
		return nil, err
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		CreatorID:       creatorID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Questions:       questions,
		Time:            req.Time,
		DifficultyLevel: model.Difficulty(req.DifficultyLevel),
		IsPublic:        true,
		AttemptedBy:     []string{},
		Attempts:        []string{},
	}
	if quiz.Time == 0 {
		quiz.Time = model.DefaultQuizTime
	}
	if quiz.DifficultyLevel == "" {
		quiz.DifficultyLevel = model.DifficultyEasy
	}
	if req.IsPublic != nil {
		quiz.IsPublic = *req.IsPublic
	}
	quiz.Touch(s.now())

	if err := s.Quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}

	if err := s.Users.AddCreatedQuiz(ctx, creatorID, quiz.ID); err != nil {
		logger.Log.Error("Failed to record created quiz on user",
			zap.String("userID", creatorID), zap.String("quizID", quiz.ID), zap.Error(err))
		// 回滚，避免留下没有创建者引用的测验
		if delErr := s.Quizzes.Delete(ctx, quiz.ID); delErr != nil {
			logger.Log.Error("Failed to roll back quiz", zap.String("quizID", quiz.ID), zap.Error(delErr))
		}
		return nil, err
	}

	monitoring.QuizzesCreated.Inc()
	publish(ctx, s.Events, events.QuizCreated, payload{"quizId": quiz.ID, "creatorId": creatorID, "isPublic": quiz.IsPublic})
	return quiz, nil
}

// GetQuiz 创建者获得含答案的视图；其他人只能读取公开测验，私有测验与不存在一样返回 ErrNotFound
func (s *QuizService) GetQuiz(ctx context.Context, callerID, quizID string) (QuizView, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if quiz.CreatorID == callerID {
		return NewQuizOwnerView(quiz), nil
	}
	if !quiz.IsPublic {
		return nil, util.ErrNotPublic
	}
	return NewQuizPublicView(quiz), nil
}

func (s *QuizService) ListPublicQuizzes(ctx context.Context, page, limit int) ([]QuizPublicView, int64, error) {
	quizzes, total, err := s.Quizzes.ListPublic(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]QuizPublicView, 0, len(quizzes))
	for i := range quizzes {
		views = append(views, NewQuizPublicView(&quizzes[i]))
	}
	return views, total, nil
}

func (s *QuizService) ListMyQuizzes(ctx context.Context, creatorID string) ([]QuizOwnerView, error) {
	quizzes, err := s.Quizzes.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	views := make([]QuizOwnerView, 0, len(quizzes))
	for i := range quizzes {
		views = append(views, NewQuizOwnerView(&quizzes[i]))
	}
	return views, nil
}

// UpdateQuiz 仅创建者可修改
func (s *QuizService) UpdateQuiz(ctx context.Context, callerID, quizID string, req *UpdateQuizRequest) (*model.Quiz, error) {
	if err := util.ValidateStruct(req); err != nil {
		return nil, err
	}

	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatorID != callerID {
		return nil, util.ErrForbidden
	}

	if req.Title != nil {
		quiz.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		quiz.Description = strings.TrimSpace(*req.Description)
	}
	if req.Time != nil {
		quiz.Time = *req.Time
		if quiz.Time == 0 {
			quiz.Time = model.DefaultQuizTime
		}
	}
	if req.DifficultyLevel != nil && *req.DifficultyLevel != "" {
		quiz.DifficultyLevel = model.Difficulty(*req.DifficultyLevel)
	}
	if req.IsPublic != nil {
		quiz.IsPublic = *req.IsPublic
	}
	if req.Questions != nil {
		list := questionList{Questions: *req.Questions}
		if err := util.ValidateStruct(&list); err != nil {
			return nil, err
		}
		questions, err := buildQuestions(list.Questions)
		if err != nil {
			return nil, err
		}
		quiz.Questions = questions
	}
	quiz.UpdatedAt = s.now()

	if err := s.Quizzes.Update(ctx, quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// DeleteQuiz 仅创建者可删除，已有的作答记录保留
func (s *QuizService) DeleteQuiz(ctx context.Context, callerID, quizID string) error {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return err
	}
	if quiz.CreatorID != callerID {
		return util.ErrForbidden
	}

	if err := s.Quizzes.Delete(ctx, quizID); err != nil {
		return err
	}
	if err := s.Users.RemoveCreatedQuiz(ctx, callerID, quizID); err != nil {
		logger.Log.Warn("Failed to remove quiz reference from creator",
			zap.String("userID", callerID), zap.String("quizID", quizID), zap.Error(err))
	}

	publish(ctx, s.Events, events.QuizDeleted, payload{"quizId": quizID, "creatorId": callerID})
	return nil
}
