package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"quizmaster_backend/internal/config"
	"quizmaster_backend/internal/model"
	"quizmaster_backend/internal/util"
	"quizmaster_backend/pkg/logger"
	"quizmaster_backend/pkg/monitoring"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

const (
	DefaultNumQuestions = 10
	MaxNumQuestions     = 50
)

const generationSystemPrompt = "You are an experienced teacher who writes clear multiple-choice quizzes. " +
	"Always reply with a single JSON object and no other text."

var errMalformedOutput = errors.New("malformed model output")

// SourceFile 用于生成题目的附件，Data 为已校验过类型的文件内容
type SourceFile struct {
	Name     string
	MIMEType string
	Data     []byte
}

// QuizGenerator 调用模型服务并返回原始文本输出
type QuizGenerator interface {
	Name() string
	SupportsPDF() bool
	Generate(ctx context.Context, prompt string, files []SourceFile) (string, error)
}

// ProviderStatusError 模型服务返回的非 200 响应
type ProviderStatusError struct {
	StatusCode int
	Body       string
}

func (e *ProviderStatusError) Error() string {
	return fmt.Sprintf("AI API error (status %d): %s", e.StatusCode, e.Body)
}

// swagger:model GenerateQuizRequest
type GenerateQuizRequest struct {
	Text         string       `form:"text" json:"text" validate:"max=20000"`
	NumQuestions int          `form:"numQuestions" json:"numQuestions" validate:"omitempty,gte=1,lte=50"`
	Difficulty   string       `form:"difficulty" json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Files        []SourceFile `form:"-" json:"-"`
}

type GenerationService struct {
	Generator  QuizGenerator
	Timeout    time.Duration
	MaxRetries int
	backoff    time.Duration
}

func NewGenerationService(generator QuizGenerator, cfg config.AIConfig) *GenerationService {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &GenerationService{
		Generator:  generator,
		Timeout:    timeout,
		MaxRetries: retries,
		backoff:    time.Second,
	}
}

// NewQuizGenerator 按 ai.provider 创建模型客户端
func NewQuizGenerator(ctx context.Context, cfg config.AIConfig) (QuizGenerator, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiService(ctx, cfg)
	case "openai", "":
		return NewAIService(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
}

// prepareFiles 校验附件类型，图片统一压缩为 JPEG
func (s *GenerationService) prepareFiles(files []SourceFile) ([]SourceFile, error) {
	out := make([]SourceFile, 0, len(files))
	for i, f := range files {
		field := fmt.Sprintf("files[%d]", i)
		mimeType, err := util.DetectMimeType(f.Data, util.AllowedGenerationTypes)
		if err != nil {
			return nil, util.NewValidationError(field, err.Error())
		}

		if util.IsPDF(mimeType) {
			if !s.Generator.SupportsPDF() {
				return nil, util.NewValidationError(field, "PDF files are not supported by the configured provider")
			}
			out = append(out, SourceFile{Name: f.Name, MIMEType: mimeType, Data: f.Data})
			continue
		}

		normalized, err := util.NormalizeImage(f.Data, util.MaxImageEdge)
		if err != nil {
			return nil, util.NewValidationError(field, "could not decode image")
		}
		out = append(out, SourceFile{Name: f.Name, MIMEType: "image/jpeg", Data: normalized})
	}
	return out, nil
}

func buildGenerationPrompt(text string, numQuestions int, difficulty string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a multiple-choice quiz with exactly %d questions at %s difficulty ", numQuestions, difficulty)
	sb.WriteString("based on the source material below and any attached images or documents.\n")
	sb.WriteString("Reply with one JSON object of this shape:\n")
	sb.WriteString(`{"title": "string", "description": "string", "questions": [{"question": "string", "options": ["string", "string", "string", "string"], "answer": "string", "marks": 1}]}`)
	sb.WriteString("\nEach question must have 4 distinct options and the answer must repeat one option verbatim.\n")
	if text != "" {
		sb.WriteString("\nSource material:\n")
		sb.WriteString(text)
	}
	return sb.String()
}

// Generate 生成测验草稿，不会持久化
func (s *GenerationService) Generate(ctx context.Context, userID string, req *GenerateQuizRequest) (*CreateQuizRequest, error) {
	if err := util.ValidateStruct(req); err != nil {
		return nil, err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.Files) == 0 {
		return nil, util.NewValidationError("text", "text or files are required")
	}

	numQuestions := req.NumQuestions
	if numQuestions == 0 {
		numQuestions = DefaultNumQuestions
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = string(model.DifficultyEasy)
	}

	files, err := s.prepareFiles(req.Files)
	if err != nil {
		return nil, err
	}

	prompt := buildGenerationPrompt(text, numQuestions, difficulty)
	provider := s.Generator.Name()
	start := time.Now()
	defer func() {
		monitoring.GenerationDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			if !sleepCtx(ctx, s.backoff*time.Duration(attempt)) {
				break
			}
		}

		draft, err := s.generateOnce(ctx, prompt, files, numQuestions, difficulty)
		if err == nil {
			monitoring.GenerationRequests.WithLabelValues(provider, "success").Inc()
			return draft, nil
		}

		lastErr = err
		logger.Log.Warn("Quiz generation attempt failed",
			zap.String("provider", provider),
			zap.String("userID", userID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))

		if !isTransient(err) || ctx.Err() != nil {
			break
		}
	}

	monitoring.GenerationRequests.WithLabelValues(provider, "failure").Inc()
	return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, lastErr)
}

func (s *GenerationService) generateOnce(ctx context.Context, prompt string, files []SourceFile,
	numQuestions int, difficulty string) (*CreateQuizRequest, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	raw, err := s.Generator.Generate(callCtx, prompt, files)
	if err != nil {
		return nil, err
	}
	return parseDraft(raw, numQuestions, difficulty)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// isTransient 网络错误、超时、429、5xx 以及无法解析的输出可以重试
func isTransient(err error) bool {
	if errors.Is(err, errMalformedOutput) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var statusErr *ProviderStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

type generatedQuiz struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []generatedQuestion `json:"questions"`
}

type generatedQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
	Marks    int      `json:"marks"`
}

// extractJSON 去掉 ``` 代码块包裹，截取第一个 { 到最后一个 }
func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}

// parseDraft 解析模型输出，丢弃不合法的题目，至少保留一道
func parseDraft(raw string, numQuestions int, difficulty string) (*CreateQuizRequest, error) {
	jsonText := extractJSON(raw)
	if jsonText == "" {
		return nil, fmt.Errorf("%w: no JSON object found", errMalformedOutput)
	}

	var out generatedQuiz
	if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedOutput, err)
	}

	questions := make([]QuestionRequest, 0, len(out.Questions))
	for _, gq := range out.Questions {
		q, ok := normalizeGenerated(gq)
		if !ok {
			continue
		}
		q.QuestionNumber = len(questions) + 1
		questions = append(questions, q)
		if len(questions) == numQuestions {
			break
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no usable questions", errMalformedOutput)
	}

	title := strings.TrimSpace(out.Title)
	if title == "" {
		title = "Generated Quiz"
	}
	isPublic := true
	return &CreateQuizRequest{
		Title:           truncate(title, 255),
		Description:     strings.TrimSpace(out.Description),
		Questions:       questions,
		Time:            model.DefaultQuizTime,
		DifficultyLevel: difficulty,
		IsPublic:        &isPublic,
	}, nil
}

func normalizeGenerated(gq generatedQuestion) (QuestionRequest, bool) {
	text := strings.TrimSpace(gq.Question)
	if text == "" {
		return QuestionRequest{}, false
	}

	options := make([]string, 0, len(gq.Options))
	seen := make(map[string]bool, len(gq.Options))
	for _, opt := range gq.Options {
		opt = strings.TrimSpace(opt)
		if opt == "" || seen[opt] {
			continue
		}
		seen[opt] = true
		options = append(options, opt)
	}
	if len(options) < 2 {
		return QuestionRequest{}, false
	}

	q := model.Question{Options: options}
	answer, ok := q.MatchOption(gq.Answer)
	if !ok {
		// 模型有时返回选项字母
		letter := strings.ToUpper(strings.TrimSpace(gq.Answer))
		if len(letter) == 1 && letter[0] >= 'A' && int(letter[0]-'A') < len(options) {
			answer, ok = options[letter[0]-'A'], true
		}
	}
	if !ok {
		return QuestionRequest{}, false
	}

	marks := gq.Marks
	if marks <= 0 {
		marks = model.DefaultMarks
	}
	return QuestionRequest{
		Question: text,
		Options:  options,
		Answer:   answer,
		Marks:    marks,
	}, true
}
