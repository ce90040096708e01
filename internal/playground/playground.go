// Package playground serves simulated AI provider responses for the
// prompt-testing sandbox. No real provider is ever called: responses,
// latency and token usage are all synthesized.
package playground

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/ailearn-gamification/internal/config"
	"github.com/ailearn-gamification/internal/domain"
)

// Tool identifies a simulated AI provider
type Tool string

const (
	ToolOpenAI        Tool = "openai"
	ToolAnthropic     Tool = "anthropic"
	ToolGitHubCopilot Tool = "github_copilot"
)

// ValidTool reports whether t is a known provider
func ValidTool(t Tool) bool {
	switch t {
	case ToolOpenAI, ToolAnthropic, ToolGitHubCopilot:
		return true
	}
	return false
}

// Usage mirrors provider token accounting. Cost is derived from total
// tokens at a flat simulated rate of $0.02 per thousand tokens.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// PromptRequest is a sandbox prompt submission
type PromptRequest struct {
	UserID  string `json:"user_id"`
	Prompt  string `json:"prompt"`
	ModelID string `json:"model_id"`
	Tool    Tool   `json:"tool_name"`
}

// PromptResponse is the synthesized provider reply
type PromptResponse struct {
	Response   string `json:"response"`
	Usage      Usage  `json:"usage"`
	Tool       Tool   `json:"tool_name"`
	ModelID    string `json:"model_id"`
	DurationMS int64  `json:"request_duration_ms"`
}

// UsageRecorder receives completed sandbox calls so they can feed user
// statistics
type UsageRecorder interface {
	RecordPromptUsage(ctx context.Context, userID string, tool string, model string, usage Usage) error
}

// Service synthesizes provider responses. The random source and sleep
// function are injectable so tests run instantly and deterministically.
type Service struct {
	cfg      *config.PlaygroundConfig
	logger   *slog.Logger
	recorder UsageRecorder
	randInt  func(n int) int
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewService creates a playground service with real randomness and sleep
func NewService(cfg *config.PlaygroundConfig, recorder UsageRecorder, logger *slog.Logger) *Service {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Service{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		randInt:  rng.Intn,
		sleep:    sleepCtx,
	}
}

// SetRand overrides the random source, used by tests
func (s *Service) SetRand(fn func(n int) int) {
	s.randInt = fn
}

// SetSleep overrides the latency simulation, used by tests
func (s *Service) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	s.sleep = fn
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

const costPerThousandTokens = 0.02

// TestPrompt runs one simulated provider call
func (s *Service) TestPrompt(ctx context.Context, req *PromptRequest) (*PromptResponse, error) {
	if req.UserID == "" || req.Prompt == "" || req.ModelID == "" || req.Tool == "" {
		return nil, fmt.Errorf("%w: user_id, prompt, model_id and tool_name are required", domain.ErrInvalidRequest)
	}
	if !ValidTool(req.Tool) {
		return nil, fmt.Errorf("%w: unknown tool %q", domain.ErrInvalidRequest, req.Tool)
	}

	start := time.Now()
	if err := s.sleep(ctx, s.latency()); err != nil {
		return nil, err
	}

	text, completionTokens := s.synthesize(req)
	usage := Usage{
		PromptTokens:     len(req.Prompt) / 4,
		CompletionTokens: completionTokens,
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	usage.CostUSD = float64(usage.TotalTokens) / 1000 * costPerThousandTokens

	resp := &PromptResponse{
		Response:   text,
		Usage:      usage,
		Tool:       req.Tool,
		ModelID:    req.ModelID,
		DurationMS: time.Since(start).Milliseconds(),
	}

	if s.recorder != nil {
		if err := s.recorder.RecordPromptUsage(ctx, req.UserID, string(req.Tool), req.ModelID, usage); err != nil {
			s.logger.Warn("failed to record prompt usage",
				"user_id", req.UserID,
				"tool", req.Tool,
				"error", err,
			)
		}
	}

	s.logger.Info("sandbox prompt served",
		"user_id", req.UserID,
		"tool", req.Tool,
		"model", req.ModelID,
		"total_tokens", usage.TotalTokens,
	)
	return resp, nil
}

// latency picks a simulated provider delay within the configured window
func (s *Service) latency() time.Duration {
	min := s.cfg.MinLatency
	max := s.cfg.MaxLatency
	if max <= min {
		return min
	}
	return min + time.Duration(s.randInt(int(max-min)))
}

// synthesize builds the canned reply and completion token count for a
// provider and model
func (s *Service) synthesize(req *PromptRequest) (string, int) {
	switch req.Tool {
	case ToolOpenAI:
		responses := map[string]string{
			"gpt-3.5-turbo": fmt.Sprintf("Here's a helpful response to your prompt: %q. This is a simulated GPT-3.5 response.", req.Prompt),
			"gpt-4":         fmt.Sprintf("Here's an advanced response to your prompt: %q. This is a simulated GPT-4 response with more detailed analysis.", req.Prompt),
			"gpt-4-turbo":   fmt.Sprintf("Here's a comprehensive response to your prompt: %q. This is a simulated GPT-4 Turbo response with enhanced capabilities.", req.Prompt),
		}
		text, ok := responses[req.ModelID]
		if !ok {
			text = responses["gpt-3.5-turbo"]
		}
		return text, 50 + s.randInt(200)

	case ToolAnthropic:
		responses := map[string]string{
			"claude-3-haiku":  fmt.Sprintf("Claude Haiku response: %q. This is a simulated Claude 3 Haiku response.", req.Prompt),
			"claude-3-sonnet": fmt.Sprintf("Claude Sonnet response: %q. This is a simulated Claude 3 Sonnet response with balanced performance.", req.Prompt),
			"claude-3-opus":   fmt.Sprintf("Claude Opus response: %q. This is a simulated Claude 3 Opus response with advanced reasoning.", req.Prompt),
		}
		text, ok := responses[req.ModelID]
		if !ok {
			text = responses["claude-3-sonnet"]
		}
		return text, 100 + s.randInt(300)

	default:
		text := fmt.Sprintf("// GitHub Copilot suggestion for: %q\n// This is a simulated GitHub Copilot response with code suggestions.", req.Prompt)
		return text, 30 + s.randInt(150)
	}
}
