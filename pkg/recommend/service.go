// Package recommend implements the course recommendation assistant: prompt
// compilation from the live catalog, the model call, tolerant parsing of
// the reply, and the shared cache and budget around them.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coursewise/coursewise/pkg/budget"
	"github.com/coursewise/coursewise/pkg/cache"
	"github.com/coursewise/coursewise/pkg/llm"
	"github.com/coursewise/coursewise/pkg/logging"
	"github.com/coursewise/coursewise/pkg/metrics"
	"github.com/coursewise/coursewise/pkg/models"
)

// ChatSystemInstruction frames every chat call.
const ChatSystemInstruction = "You are a helpful assistant for an online learning platform. " +
	"Help users with their learning and course-related questions."

// AnonymousCaller is logged and recorded when the context carries no caller.
const AnonymousCaller = "anonymous"

// CatalogProvider supplies the published courses recommendations are drawn from.
type CatalogProvider interface {
	ListPublished(ctx context.Context) ([]models.CatalogEntry, error)
}

// Recorder persists one row per assistant call.
type Recorder interface {
	Record(ctx context.Context, rec models.UsageRecord) error
}

// Service orchestrates recommendations and chat. The cache and limiter are
// shared by every caller; construct one Service per process and hand it to
// each transport.
type Service struct {
	completer llm.Completer
	cache     *cache.Cache
	limiter   *budget.Limiter
	recorder  Recorder

	model              string
	temperature        float64
	recommendMaxTokens int
	chatMaxTokens      int
	timeout            time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder appends every call to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithModel names the model in ledger rows.
func WithModel(name string) Option {
	return func(s *Service) { s.model = name }
}

// WithTemperature sets the sampling temperature for both operations.
func WithTemperature(t float64) Option {
	return func(s *Service) { s.temperature = t }
}

// WithMaxTokens sets the completion limits for recommend and chat.
func WithMaxTokens(recommend, chat int) Option {
	return func(s *Service) {
		if recommend > 0 {
			s.recommendMaxTokens = recommend
		}
		if chat > 0 {
			s.chatMaxTokens = chat
		}
	}
}

// WithTimeout bounds each model call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// New creates a Service.
func New(c llm.Completer, ch *cache.Cache, l *budget.Limiter, opts ...Option) *Service {
	s := &Service{
		completer:          c,
		cache:              ch,
		limiter:            l,
		temperature:        0.7,
		recommendMaxTokens: 1000,
		chatMaxTokens:      300,
		timeout:            30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend returns course recommendations for prompt drawn from catalog.
//
// A cached answer for the normalized prompt is returned without consuming
// budget. Otherwise the prompt is compiled, one unit of budget is reserved
// and the model is called; the reservation is kept even if the call fails.
// Errors wrap ErrInvalidInput, ErrRateLimited or ErrUpstream.
func (s *Service) Recommend(ctx context.Context, prompt string, catalog []models.CatalogEntry) (models.RecommendationResult, error) {
	log := logging.Ctx(ctx)

	if res, ok := s.cache.Get(prompt); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		s.record(ctx, models.CallRecommend, models.OutcomeCacheHit, 0)
		log.Debug().Msg("recommendation served from cache")
		return res, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	instruction, err := CompilePrompt(prompt, catalog)
	if err != nil {
		s.record(ctx, models.CallRecommend, models.OutcomeInvalid, 0)
		return models.RecommendationResult{}, err
	}

	if err := s.reserve(ctx, models.CallRecommend); err != nil {
		return models.RecommendationResult{}, err
	}

	raw, elapsed, err := s.complete(ctx, models.CallRecommend, llm.Request{
		Prompt:      instruction,
		Temperature: s.temperature,
		MaxTokens:   s.recommendMaxTokens,
	})
	if err != nil {
		return models.RecommendationResult{}, err
	}

	in := interpret(raw)
	if in.kind == replyFallback {
		metrics.FallbackReplies.Inc()
		log.Warn().Int("reply_len", len(raw)).Msg("model reply was not structured, using fallback")
	}

	result := in.result
	result.Cached = false
	ms := elapsed.Milliseconds()
	result.ResponseTimeMs = &ms

	s.cache.Put(prompt, result)
	metrics.CacheEntries.Set(float64(s.cache.Len()))

	log.Info().
		Int("recommendations", len(result.Recommendations)).
		Int64("response_ms", ms).
		Msg("recommendations generated")
	return result, nil
}

// Chat answers a free-form learning question. It shares the budget with
// Recommend and is never cached.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		s.record(ctx, models.CallChat, models.OutcomeInvalid, 0)
		return "", fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	if err := s.reserve(ctx, models.CallChat); err != nil {
		return "", err
	}

	text, _, err := s.complete(ctx, models.CallChat, llm.Request{
		System:      ChatSystemInstruction,
		Prompt:      message,
		Temperature: s.temperature,
		MaxTokens:   s.chatMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// Usage reports budget consumption and cache occupancy.
func (s *Service) Usage() models.AssistantUsage {
	st := s.limiter.Status()
	return models.AssistantUsage{
		Count:     st.Used,
		Limit:     st.Limit,
		Remaining: st.Remaining,
		CacheSize: s.cache.Len(),
	}
}

// CacheStats returns prompt cache metrics.
func (s *Service) CacheStats() models.CacheStats {
	return s.cache.Stats()
}

// PurgeCache drops cached results, or only the expired ones, and returns
// how many were removed. Budget is unaffected.
func (s *Service) PurgeCache(expiredOnly bool) int {
	n := s.cache.Clear(expiredOnly)
	metrics.CacheEntries.Set(float64(s.cache.Len()))
	return n
}

func (s *Service) reserve(ctx context.Context, kind models.CallKind) error {
	if !s.limiter.TryReserve() {
		s.record(ctx, kind, models.OutcomeRateLimited, 0)
		logging.Ctx(ctx).Warn().Str("kind", string(kind)).Int("limit", s.limiter.Limit()).Msg("model call budget exhausted")
		return fmt.Errorf("%w: %w", ErrRateLimited, budget.ErrBudgetExceeded)
	}
	used := s.limiter.Used()
	metrics.BudgetUsed.Set(float64(used))
	logging.Ctx(ctx).Info().Str("kind", string(kind)).Int("used", used).Int("limit", s.limiter.Limit()).Msg("model call reserved")
	return nil
}

// complete runs one model call under the configured timeout and records its outcome.
func (s *Service) complete(ctx context.Context, kind models.CallKind, req llm.Request) (string, time.Duration, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := s.completer.Complete(ctx, req)
	elapsed := time.Since(start)
	metrics.ModelCallDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())

	if err != nil {
		s.record(ctx, kind, models.OutcomeUpstreamError, elapsed)
		logging.Ctx(ctx).Error().Err(err).Str("kind", string(kind)).Dur("elapsed", elapsed).Msg("model call failed")
		return "", elapsed, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	s.record(ctx, kind, models.OutcomeOK, elapsed)
	return text, elapsed, nil
}

func (s *Service) record(ctx context.Context, kind models.CallKind, outcome models.CallOutcome, latency time.Duration) {
	metrics.AssistantRequests.WithLabelValues(string(kind), string(outcome)).Inc()
	if s.recorder == nil {
		return
	}

	caller := logging.CallerIDFromContext(ctx)
	if caller == "" {
		caller = AnonymousCaller
	}
	rec := models.UsageRecord{
		RequestID: logging.RequestIDFromContext(ctx),
		CallerID:  caller,
		Kind:      kind,
		Model:     s.model,
		Outcome:   outcome,
		LatencyMs: latency.Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	// The ledger must outlive a request context that timed out.
	if err := s.recorder.Record(context.WithoutCancel(ctx), rec); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("usage ledger write failed")
	}
}
