package models

import "time"

// CallKind identifies the assistant operation a ledger row belongs to.
type CallKind string

const (
	CallRecommend CallKind = "recommend"
	CallChat      CallKind = "chat"
)

// CallOutcome is how an assistant call ended.
type CallOutcome string

const (
	OutcomeOK            CallOutcome = "ok"
	OutcomeCacheHit      CallOutcome = "cache_hit"
	OutcomeRateLimited   CallOutcome = "rate_limited"
	OutcomeInvalid       CallOutcome = "invalid"
	OutcomeUpstreamError CallOutcome = "upstream_error"
)

// Usage represents token usage from an LLM response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// UsageRecord is one assistant call in the usage ledger.
type UsageRecord struct {
	ID        int64       `json:"id"`
	RequestID string      `json:"request_id,omitempty"`
	CallerID  string      `json:"caller_id"`
	Kind      CallKind    `json:"kind"`
	Model     string      `json:"model"`
	Outcome   CallOutcome `json:"outcome"`
	LatencyMs int64       `json:"latency_ms"`
	CreatedAt time.Time   `json:"created_at"`
}

// UsageSummary aggregates ledger rows per caller and kind.
type UsageSummary struct {
	CallerID     string   `json:"caller_id"`
	Kind         CallKind `json:"kind"`
	RequestCount int      `json:"request_count"`
	CacheHits    int      `json:"cache_hits"`
	ModelCalls   int      `json:"model_calls"`
	Failures     int      `json:"failures"`
	AvgLatencyMs float64  `json:"avg_latency_ms"`
}
