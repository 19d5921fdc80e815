package service

import (
	"context"
	"fmt"
	"quizmaster_backend/internal/config"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiService 通过 Gemini 生成题目，支持图片和 PDF 附件
type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiService(ctx context.Context, cfg config.AIConfig) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai.api_key is required for the gemini provider")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" || strings.HasPrefix(name, "gpt") {
		name = defaultGeminiModel
	}
	model := client.GenerativeModel(name)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)
	model.SystemInstruction = genai.NewUserContent(genai.Text(generationSystemPrompt))

	return &GeminiService{client: client, model: model}, nil
}

func (s *GeminiService) Name() string { return "gemini" }

func (s *GeminiService) SupportsPDF() bool { return true }

func (s *GeminiService) Generate(ctx context.Context, prompt string, files []SourceFile) (string, error) {
	parts := []genai.Part{genai.Text(prompt)}
	for _, f := range files {
		parts = append(parts, genai.Blob{MIMEType: f.MIMEType, Data: f.Data})
	}

	resp, err := s.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no content generated", errMalformedOutput)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}
