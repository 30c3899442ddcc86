// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package summary produces short Albanian summaries of articles through an
// OpenAI-compatible chat completion API. It never fails: any problem
// degrades to the original excerpt plus a notice.
package summary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"github.com/olegiv/newsdesk-go/internal/cache"
	"github.com/olegiv/newsdesk-go/internal/metrics"
)

// Notice is shown next to the excerpt when no summary could be produced.
const Notice = "AI për momentin është në pushim. Provoni përsëri pas pak!"

// Sampling parameters of the summarization request.
const (
	Temperature = 0.5
	TopP        = 0.95
)

// Result labels for metrics.SummariesTotal.
const (
	resultGenerated = "generated"
	resultCached    = "cached"
	resultFallback  = "fallback"
)

var (
	errDisabled    = errors.New("summarizer disabled")
	errRateLimited = errors.New("summarizer rate limited")
	errEmpty       = errors.New("empty completion")
)

// Result is what the reader surface shows under an article.
type Result struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback"`
	Notice   string `json:"notice,omitempty"`
}

// Completer sends a single prompt and returns the model's reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Prompt builds the summarization instruction for one article.
func Prompt(title, excerpt string) string {
	return fmt.Sprintf("Përmblidhe këtë lajm nga Skenderaji në shqip, shkurt dhe me stil gazetarie moderne (maksimumi 2 fjali): Titulli: %s. Përmbajtja: %s", title, excerpt)
}

// OpenAICompleter talks to any endpoint speaking the OpenAI chat API,
// Gemini's compatibility endpoint included.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

// NewOpenAICompleter creates a completer. Retries are disabled; the
// summarizer is best effort.
func NewOpenAICompleter(apiKey, baseURL, model string) *OpenAICompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAICompleter{client: openai.NewClient(opts...), model: model}
}

// Complete implements Completer.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(Temperature),
		TopP:        openai.Float(TopP),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmpty
	}
	return resp.Choices[0].Message.Content, nil
}

// Options tunes a Service.
type Options struct {
	// Timeout bounds one API call (0 = no extra bound).
	Timeout time.Duration
	// RateLimit is the sustained number of API calls per second (0 = unlimited).
	RateLimit float64
	CacheTTL  time.Duration
	Logger    *slog.Logger
}

// Service summarizes articles. A nil Completer disables the API and every
// call returns the fallback.
type Service struct {
	completer Completer
	cache     *cache.TypedCache[Result]
	limiter   *rate.Limiter
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a Service. c may be nil when no summary cache is wanted.
func New(completer Completer, c cache.Cacher, opts Options) *Service {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	s := &Service{
		completer: completer,
		limiter:   rate.NewLimiter(limit, 1),
		timeout:   opts.Timeout,
		logger:    opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if c != nil {
		s.cache = cache.NewTypedCache[Result](c, opts.CacheTTL)
	}
	return s
}

// Enabled reports whether summaries can be generated at all.
func (s *Service) Enabled() bool {
	return s.completer != nil
}

// Summarize returns a summary of the article or, on any failure, the
// excerpt itself with Fallback set.
func (s *Service) Summarize(ctx context.Context, title, excerpt string) Result {
	title, excerpt = strings.TrimSpace(title), strings.TrimSpace(excerpt)
	key := cacheKey(title, excerpt)

	if s.cache != nil {
		if r, ok := s.cache.Get(ctx, key); ok {
			metrics.SummariesTotal.WithLabelValues(resultCached).Inc()
			return r
		}
	}

	text, err := s.generate(ctx, title, excerpt)
	if err != nil {
		if !errors.Is(err, errDisabled) {
			s.logger.Warn("summary unavailable", "title", title, "error", err)
		}
		metrics.SummariesTotal.WithLabelValues(resultFallback).Inc()
		return Result{Text: excerpt, Fallback: true, Notice: Notice}
	}

	r := Result{Text: text}
	metrics.SummariesTotal.WithLabelValues(resultGenerated).Inc()
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, r); err != nil {
			s.logger.Debug("summary cache store failed", "error", err)
		}
	}
	return r
}

func (s *Service) generate(ctx context.Context, title, excerpt string) (string, error) {
	if s.completer == nil {
		return "", errDisabled
	}
	if !s.limiter.Allow() {
		return "", errRateLimited
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.completer.Complete(ctx, Prompt(title, excerpt))
	metrics.SummaryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmpty
	}
	return text, nil
}

func cacheKey(title, excerpt string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + excerpt))
	return "summary:" + hex.EncodeToString(sum[:16])
}
