package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"nextup-api/domain/ports"
)

const (
	defaultModel           = "gemini-1.5-flash"
	defaultTemperature     = 0.2
	defaultMaxOutputTokens = 4096
)

// GeminiConfig การตั้งค่า Gemini ranking collaborator
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// GeminiRanker ส่ง tasks ของ folder ไปให้ Gemini จัดลำดับในคำขอเดียว
// ไม่มี retry: ผู้ใช้กด prioritize ใหม่เองได้
type GeminiRanker struct {
	client *genai.Client
	config GeminiConfig
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.RankingPort = (*GeminiRanker)(nil)

func NewGeminiRanker(ctx context.Context, config GeminiConfig) (*GeminiRanker, error) {
	if config.APIKey == "" {
		return nil, ports.ErrRankingUnavailable
	}
	if config.Model == "" {
		config.Model = defaultModel
	}
	if config.Temperature <= 0 {
		config.Temperature = defaultTemperature
	}
	if config.MaxOutputTokens <= 0 {
		config.MaxOutputTokens = defaultMaxOutputTokens
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiRanker{
		client: client,
		config: config,
		logger: slog.Default().With("component", "gemini_ranker"),
		now:    time.Now,
	}, nil
}

func (r *GeminiRanker) Close() error {
	return r.client.Close()
}

func (r *GeminiRanker) Rank(ctx context.Context, req *ports.RankingRequest) (*ports.RankingResult, error) {
	prompt, err := BuildRankingPrompt(req, r.now())
	if err != nil {
		return nil, err
	}

	model := r.client.GenerativeModel(r.config.Model)
	r.configureModel(model)

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		r.logger.WarnContext(ctx, "Gemini ranking call failed", "tasks", len(req.Tasks), "error", err)
		return nil, fmt.Errorf("%w: %v", ports.ErrRankingUnavailable, err)
	}

	raw, err := r.extractText(resp)
	if err != nil {
		return nil, err
	}

	result, err := DecodeRanking(raw)
	if err != nil {
		r.logger.WarnContext(ctx, "Gemini ranking rejected", "error", err, "response_len", len(raw))
		return nil, err
	}

	r.logger.InfoContext(ctx, "Gemini ranking completed",
		"tasks", len(req.Tasks),
		"ranked", len(result.Tasks),
		"duration", time.Since(start),
	)
	return result, nil
}

func (r *GeminiRanker) configureModel(model *genai.GenerativeModel) {
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = rankingSchema()
	model.SetTemperature(r.config.Temperature)
	model.SetMaxOutputTokens(r.config.MaxOutputTokens)
}

func (r *GeminiRanker) extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &RankingValidationError{Index: -1, Message: "empty response from gemini"}
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason != genai.FinishReasonStop && candidate.FinishReason != genai.FinishReasonUnspecified {
		r.logger.Warn("Gemini response not finished cleanly", "finish_reason", candidate.FinishReason)
	}

	text, ok := candidate.Content.Parts[0].(genai.Text)
	if !ok {
		return "", &RankingValidationError{Index: -1, Message: fmt.Sprintf("unexpected response part %T", candidate.Content.Parts[0])}
	}
	return string(text), nil
}

func rankingSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"id":                      {Type: genai.TypeString},
				"title":                   {Type: genai.TypeString},
				"estimatedTimeToComplete": {Type: genai.TypeNumber, Description: "minutes"},
				"priority":                {Type: genai.TypeString, Enum: []string{"High", "Medium", "Low"}},
				"deadline":                {Type: genai.TypeString, Description: "YYYY-MM-DD"},
			},
			Required: []string{"id", "title", "estimatedTimeToComplete", "priority"},
		},
	}
}
