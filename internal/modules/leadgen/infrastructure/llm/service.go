package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"LeadForge/pkg/util"
	"LeadForge/pkg/zlog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

const jsonModeInstruction = "Respond with valid JSON only, no markdown fences or surrounding text."

// GenerationRequest is one generation call. Immutable; constructed per call.
type GenerationRequest struct {
	Prompt           string
	SystemPrompt     string
	MaxTokens        int
	Temperature      float32
	StructuredOutput bool
}

// normalized applies the documented defaults and bounds without mutating the
// caller's request.
func (r GenerationRequest) normalized() GenerationRequest {
	if r.MaxTokens <= 0 {
		r.MaxTokens = 1000
	}
	if r.Temperature < 0 {
		r.Temperature = 0
	}
	if r.Temperature > 2 {
		r.Temperature = 2
	}
	return r
}

// GenerationResult is returned to the caller and never mutated afterwards.
// Cost is always >= 0 and Tokens >= 0, zero on hard failure.
type GenerationResult struct {
	Content  string        `json:"content"`
	Tokens   int           `json:"tokens"`
	Cost     float64       `json:"cost"`
	Provider Provider      `json:"provider"`
	Model    string        `json:"model"`
	Latency  time.Duration `json:"latency"`
}

// UsageStats is a snapshot of one service instance's cumulative accounting.
type UsageStats struct {
	TotalTokens int      `json:"total_tokens"`
	TotalCost   float64  `json:"total_cost"`
	Provider    Provider `json:"provider"`
	Model       string   `json:"model"`
}

// GenerationService wraps heterogeneous generation back-ends behind one
// request/response call. An instance owns exactly one Binding for its
// lifetime; model selection happened when the binding was resolved.
//
// Generate never returns an error: provider failures run the one-step
// fallback protocol and, failing that, degrade into a diagnostic result with
// Provider == ProviderNone.
type GenerationService struct {
	binding  Binding
	defaults Defaults
	factory  ModelFactory

	mu          sync.Mutex
	totalTokens int
	totalCost   float64
}

func NewGenerationService(binding Binding, defaults Defaults, factory ModelFactory) *GenerationService {
	return &GenerationService{binding: binding, defaults: defaults, factory: factory}
}

// Binding exposes the resolved binding, mostly for logging and tests.
func (s *GenerationService) Binding() Binding { return s.binding }

// Generate runs one generation. Fallback depth is bounded at exactly one
// retry: a failure inside the fallback branch terminates in the failure
// result without further recursion.
func (s *GenerationService) Generate(ctx context.Context, req GenerationRequest) GenerationResult {
	req = req.normalized()
	start := time.Now()

	res, err := s.generateWith(ctx, s.binding, req)
	if err == nil {
		s.recordUsage(res)
		res.Latency = time.Since(start)
		return res
	}

	zlog.Warn("generation failed, attempting fallback",
		zap.String("provider", string(s.binding.Provider)),
		zap.String("model", s.binding.Model),
		zap.Bool("default_credential", s.binding.DefaultCredential),
		zap.Error(err))

	fb, ok := nextBinding(s.binding, s.defaults)
	if !ok {
		return s.failureResult(req, err, start)
	}

	res, fbErr := s.generateWith(ctx, fb, req)
	if fbErr != nil {
		zlog.Error("fallback generation failed",
			zap.String("provider", string(fb.Provider)),
			zap.String("model", fb.Model),
			zap.Error(fbErr))
		return s.failureResult(req, fbErr, start)
	}

	zlog.Info("fallback generation succeeded",
		zap.String("provider", string(fb.Provider)),
		zap.String("model", fb.Model))
	s.recordUsage(res)
	res.Latency = time.Since(start)
	return res
}

func (s *GenerationService) generateWith(ctx context.Context, b Binding, req GenerationRequest) (GenerationResult, error) {
	cm, err := s.factory.ChatModel(ctx, b, req.StructuredOutput)
	if err != nil {
		return GenerationResult{}, err
	}

	systemPrompt := req.SystemPrompt
	if req.StructuredOutput && !b.Provider.supportsNativeJSONMode() {
		if systemPrompt != "" {
			systemPrompt += "\n\n"
		}
		systemPrompt += jsonModeInstruction
	}

	msgs := make([]*schema.Message, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, &schema.Message{Role: schema.System, Content: systemPrompt})
	}
	msgs = append(msgs, &schema.Message{Role: schema.User, Content: req.Prompt})

	resp, err := cm.Generate(ctx, msgs,
		model.WithMaxTokens(req.MaxTokens),
		model.WithTemperature(req.Temperature))
	if err != nil {
		return GenerationResult{}, err
	}

	var promptTokens, completionTokens, totalTokens int
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		usage := resp.ResponseMeta.Usage
		promptTokens = usage.PromptTokens
		completionTokens = usage.CompletionTokens
		totalTokens = usage.TotalTokens
	}
	if totalTokens < 0 {
		totalTokens = 0
	}

	return GenerationResult{
		Content:  resp.Content,
		Tokens:   totalTokens,
		Cost:     computeCost(b.Provider, promptTokens, completionTokens),
		Provider: b.Provider,
		Model:    b.Model,
	}, nil
}

// failureResult is the terminal degraded-but-valid result: diagnostic prefix
// in the content, zero tokens, zero cost, provider "none".
func (s *GenerationService) failureResult(req GenerationRequest, err error, start time.Time) GenerationResult {
	return GenerationResult{
		Content:  fmt.Sprintf("Error: all generation providers failed: %v. Prompt: %s...", err, util.Truncate(req.Prompt, 100)),
		Tokens:   0,
		Cost:     0,
		Provider: ProviderNone,
		Model:    "error",
		Latency:  time.Since(start),
	}
}

func (s *GenerationService) recordUsage(res GenerationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalTokens += res.Tokens
	s.totalCost += res.Cost
}

// Stats returns the cumulative usage snapshot for this instance.
func (s *GenerationService) Stats() UsageStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return UsageStats{
		TotalTokens: s.totalTokens,
		TotalCost:   s.totalCost,
		Provider:    s.binding.Provider,
		Model:       s.binding.Model,
	}
}
