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
	"strings"
	"time"

	"go.uber.org/zap"
)

// swagger:model SaveAnswerRequest
type SaveAnswerRequest struct {
	QuestionNumber int    `json:"questionNumber" validate:"required,gte=1"`
	Answer         string `json:"answer" validate:"required"`
}

// swagger:model FinalizeAttemptRequest
type FinalizeAttemptRequest struct {
	ParentQuizID string `json:"parentQuizId"`
	TimeTaken    *int   `json:"timeTaken" validate:"omitempty,gte=0"`
}

// SubmitQuizRequest 一次性提交，answers 按题目顺序排列，空字符串表示未作答
// swagger:model SubmitQuizRequest
type SubmitQuizRequest struct {
	Answers   []string `json:"answers"`
	TimeTaken *int     `json:"timeTaken" validate:"omitempty,gte=0"`
}

type SubmitResult struct {
	Attempt    AttemptReview `json:"attempt"`
	TotalMarks int           `json:"totalMarks"`
}

type AttemptService struct {
	Attempts repository.AttemptStore
	Quizzes  repository.QuizStore
	Users    repository.UserStore
	Events   EventPublisher
	now      func() time.Time
}

func NewAttemptService(attempts repository.AttemptStore, quizzes repository.QuizStore,
	users repository.UserStore, publisher EventPublisher) *AttemptService {
	return &AttemptService{
		Attempts: attempts,
		Quizzes:  quizzes,
		Users:    users,
		Events:   publisherOrNoop(publisher),
		now:      time.Now,
	}
}

// CreateAttempt 为公开测验创建作答记录，题目按当前版本快照
func (s *AttemptService) CreateAttempt(ctx context.Context, userID, quizID string) (*AttemptView, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublic {
		return nil, util.ErrNotPublic
	}

	questions := make([]model.AttemptQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, snapshotQuestion(q))
	}

	attempt := &model.Attempt{
		QuizID:      quiz.ID,
		UserID:      userID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   questions,
		MaxMarks:    quiz.MaxMarks(),
		Status:      model.AttemptCreated,
	}
	attempt.Touch(s.now())

	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}
	if err := s.Quizzes.AddAttempt(ctx, quiz.ID, attempt.ID, userID); err != nil {
		logger.Log.Warn("Failed to record attempt on quiz",
			zap.String("quizID", quiz.ID), zap.String("attemptID", attempt.ID), zap.Error(err))
	}
	publish(ctx, s.Events, events.AttemptCreated, payload{"attemptId": attempt.ID, "quizId": quiz.ID, "userId": userID})

	view := NewAttemptView(attempt)
	return &view, nil
}

func (s *AttemptService) loadOwned(ctx context.Context, userID, attemptID string) (*model.Attempt, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrForbidden
	}
	return attempt, nil
}

// SaveAnswer 记录单题作答，不影响其他题目
func (s *AttemptService) SaveAnswer(ctx context.Context, userID, attemptID string, req *SaveAnswerRequest) (*AttemptQuestionView, error) {
	if err := util.ValidateStruct(req); err != nil {
		return nil, err
	}

	attempt, err := s.loadOwned(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.IsFinalized() {
		return nil, util.ErrAlreadyFinalized
	}

	question, ok := attempt.QuestionByNumber(req.QuestionNumber)
	if !ok {
		return nil, fmt.Errorf("%w: question %d not in attempt", util.ErrNotFound, req.QuestionNumber)
	}
	choice := strings.TrimSpace(req.Answer)
	if !question.HasOption(choice) {
		return nil, util.NewValidationError("answer", "must be one of the question options")
	}

	if err := s.Attempts.SetMarkedOption(ctx, attempt.ID, req.QuestionNumber, choice); err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptCreated {
		if err := s.Attempts.MarkInProgress(ctx, attempt.ID); err != nil {
			return nil, err
		}
	}

	return &AttemptQuestionView{
		QuestionNumber: question.QuestionNumber,
		Question:       question.Text,
		Options:        stringsOrEmpty(question.Options),
		Image:          question.Image,
		MarkedOption:   &choice,
		Marks:          question.Marks,
	}, nil
}

// FinalizeAttempt 按测验当前版本评分并定稿，定稿只能发生一次
func (s *AttemptService) FinalizeAttempt(ctx context.Context, userID, attemptID string, req *FinalizeAttemptRequest) (int, error) {
	if err := util.ValidateStruct(req); err != nil {
		return 0, err
	}

	attempt, err := s.loadOwned(ctx, userID, attemptID)
	if err != nil {
		return 0, err
	}
	if attempt.IsFinalized() {
		return 0, util.ErrAlreadyFinalized
	}

	quizID := attempt.QuizID
	if req.ParentQuizID != "" && req.ParentQuizID != attempt.QuizID {
		return 0, util.NewValidationError("parentQuizId", "does not match the attempt's quiz")
	}

	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return 0, err
	}

	graded, total, maxMarks := GradeQuestions(attempt.Questions, quiz.Questions)

	now := s.now()
	attempt.Questions = graded
	attempt.TotalMarks = total
	attempt.MaxMarks = maxMarks
	attempt.IsCompleted = true
	attempt.Status = model.AttemptFinalized
	attempt.FinalizedAt = &now
	attempt.UpdatedAt = now
	if req.TimeTaken != nil {
		attempt.TimeTaken = *req.TimeTaken
	}

	if err := s.Attempts.SaveResult(ctx, attempt); err != nil {
		return 0, err
	}

	s.afterFinalize(ctx, attempt, "incremental")
	return total, nil
}

// SubmitQuiz 一次性提交全部答案，答案数量与题目数量不一致时不写入任何数据
func (s *AttemptService) SubmitQuiz(ctx context.Context, userID, quizID string, req *SubmitQuizRequest) (*SubmitResult, error) {
	if err := util.ValidateStruct(req); err != nil {
		return nil, err
	}

	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsPublic {
		return nil, util.ErrNotPublic
	}
	if len(req.Answers) != len(quiz.Questions) {
		return nil, fmt.Errorf("%w: expected %d answers, got %d",
			util.ErrInvalidInput, len(quiz.Questions), len(req.Answers))
	}

	answers := make([]string, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = strings.TrimSpace(a)
	}
	graded, total, maxMarks := GradeAnswers(quiz.Questions, answers)

	now := s.now()
	attempt := &model.Attempt{
		QuizID:      quiz.ID,
		UserID:      userID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   graded,
		TotalMarks:  total,
		MaxMarks:    maxMarks,
		IsCompleted: true,
		Status:      model.AttemptFinalized,
		FinalizedAt: &now,
	}
	if req.TimeTaken != nil {
		attempt.TimeTaken = *req.TimeTaken
	}
	attempt.Touch(now)

	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}
	if err := s.Quizzes.AddAttempt(ctx, quiz.ID, attempt.ID, userID); err != nil {
		logger.Log.Warn("Failed to record attempt on quiz",
			zap.String("quizID", quiz.ID), zap.String("attemptID", attempt.ID), zap.Error(err))
	}

	s.afterFinalize(ctx, attempt, "submit")
	return &SubmitResult{Attempt: NewAttemptReview(attempt), TotalMarks: total}, nil
}

func (s *AttemptService) afterFinalize(ctx context.Context, attempt *model.Attempt, mode string) {
	if err := s.Users.AddAttemptedQuiz(ctx, attempt.UserID, attempt.ID); err != nil {
		logger.Log.Warn("Failed to record attempt on user",
			zap.String("userID", attempt.UserID), zap.String("attemptID", attempt.ID), zap.Error(err))
	}

	monitoring.AttemptsFinalized.WithLabelValues(mode).Inc()
	publish(ctx, s.Events, events.AttemptFinalized, payload{
		"attemptId":  attempt.ID,
		"quizId":     attempt.QuizID,
		"userId":     attempt.UserID,
		"totalMarks": attempt.TotalMarks,
		"maxMarks":   attempt.MaxMarks,
	})
}

// GetPerformance 作答者或测验创建者可查看定稿后的成绩
func (s *AttemptService) GetPerformance(ctx context.Context, callerID, attemptID string) (*AttemptReview, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	if attempt.UserID != callerID {
		quiz, err := s.Quizzes.FindByID(ctx, attempt.QuizID)
		if err != nil || quiz.CreatorID != callerID {
			return nil, util.ErrForbidden
		}
	}
	if !attempt.IsFinalized() {
		return nil, util.ErrNotFinalized
	}

	review := NewAttemptReview(attempt)
	return &review, nil
}

// GetAttempt 作答者读取自己的记录，未定稿时不包含答案
func (s *AttemptService) GetAttempt(ctx context.Context, userID, attemptID string) (interface{}, error) {
	attempt, err := s.loadOwned(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.IsFinalized() {
		return NewAttemptReview(attempt), nil
	}
	return NewAttemptView(attempt), nil
}

type AttemptSummary struct {
	ID          string              `json:"id"`
	QuizID      string              `json:"quizId"`
	Title       string              `json:"title"`
	Status      model.AttemptStatus `json:"status"`
	TotalMarks  int                 `json:"totalMarks"`
	MaxMarks    int                 `json:"maxMarks"`
	TimeTaken   int                 `json:"timeTaken"`
	CreatedAt   time.Time           `json:"createdAt"`
	FinalizedAt *time.Time          `json:"finalizedAt,omitempty"`
}

func (s *AttemptService) ListMyAttempts(ctx context.Context, userID string) ([]AttemptSummary, error) {
	attempts, err := s.Attempts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		summary := AttemptSummary{
			ID:          a.ID,
			QuizID:      a.QuizID,
			Title:       a.Title,
			Status:      a.Status,
			MaxMarks:    a.MaxMarks,
			TimeTaken:   a.TimeTaken,
			CreatedAt:   a.CreatedAt,
			FinalizedAt: a.FinalizedAt,
		}
		// 未定稿的得分不对外暴露
		if a.IsFinalized() {
			summary.TotalMarks = a.TotalMarks
		}
		out = append(out, summary)
	}
	return out, nil
}
