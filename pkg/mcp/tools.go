package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/coursewise/coursewise/pkg/logging"
	"github.com/coursewise/coursewise/pkg/models"
	"github.com/coursewise/coursewise/pkg/recommend"
)

type recommendArgs struct {
	Prompt string `json:"prompt"`
}

type chatArgs struct {
	Message string `json:"message"`
}

type statsArgs struct {
	CallerID string `json:"caller_id"`
}

type recentArgs struct {
	Limit int `json:"limit"`
}

type coursesArgs struct {
	Category string `json:"category"`
	Level    string `json:"level"`
	Search   string `json:"search"`
}

type cacheArgs struct {
	Purge string `json:"purge"`
}

type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

var toolHandlers = map[string]toolHandler{
	"coursewise_recommend": handleRecommend,
	"coursewise_chat":      handleChat,
	"coursewise_usage":     handleUsage,
	"coursewise_courses":   handleCourses,
	"coursewise_stats":     handleStats,
	"coursewise_recent":    handleRecent,
	"coursewise_cache":     handleCache,
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

var allTools = []ToolDefinition{
	{
		Name:        "coursewise_recommend",
		Description: "Recommend up to three published courses for a learning goal. Repeated prompts are answered from cache.",
		InputSchema: map[string]any{
			"type":       "object",
			"required":   []string{"prompt"},
			"properties": map[string]any{"prompt": stringProp("What the learner wants to achieve")},
		},
	},
	{
		Name:        "coursewise_chat",
		Description: "Ask the learning assistant a free-form question. Shares the model call budget with recommendations.",
		InputSchema: map[string]any{
			"type":       "object",
			"required":   []string{"message"},
			"properties": map[string]any{"message": stringProp("The question to ask")},
		},
	},
	{
		Name:        "coursewise_usage",
		Description: "Show model call budget consumption and prompt cache size.",
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	},
	{
		Name:        "coursewise_courses",
		Description: "List published courses, optionally filtered by category, level or a search term.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"category": stringProp("Exact category (optional)"),
				"level":    stringProp("Beginner, Intermediate or Advanced (optional)"),
				"search":   stringProp("Case-insensitive match on title or description (optional)"),
			},
		},
	},
	{
		Name:        "coursewise_stats",
		Description: "Show assistant call statistics per caller and kind, optionally for one caller.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"caller_id": stringProp("Filter by caller id (optional)")},
		},
	},
	{
		Name:        "coursewise_recent",
		Description: "Show the most recent assistant calls.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{"type": "integer", "description": "Number of calls to show (default 20)"},
			},
		},
	},
	{
		Name:        "coursewise_cache",
		Description: "Show prompt cache statistics, optionally purging expired or all entries first.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"purge": map[string]any{"type": "string", "enum": []string{"expired", "all"}, "description": "Entries to remove (optional)"},
			},
		},
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{Content: []ContentBlock{{Type: "text", Text: text}}}
}

func errorResult(text string) ToolCallResult {
	r := textResult(text)
	r.IsError = true
	return r
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func assistantError(ctx context.Context, err error) ToolCallResult {
	switch {
	case errors.Is(err, recommend.ErrInvalidInput):
		return errorResult(err.Error())
	case errors.Is(err, recommend.ErrRateLimited):
		return errorResult("API request limit reached. Please try again later.")
	default:
		logging.Ctx(ctx).Error().Err(err).Msg("mcp: assistant call failed")
		return errorResult("The assistant is unavailable right now.")
	}
}

func handleRecommend(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	var args recommendArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}

	catalog, err := s.catalog.ListPublished(ctx)
	if err != nil {
		return errorResult("Error loading catalog: " + err.Error())
	}
	if len(catalog) == 0 {
		return errorResult("No courses available for recommendations")
	}

	res, err := s.assistant.Recommend(ctx, args.Prompt, catalog)
	if err != nil {
		return assistantError(ctx, err)
	}
	return textResult(formatRecommendations(res))
}

func handleChat(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	var args chatArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}
	text, err := s.assistant.Chat(ctx, args.Message)
	if err != nil {
		return assistantError(ctx, err)
	}
	return textResult(text)
}

func handleUsage(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	return textResult(formatUsage(s.assistant.Usage()))
}

func handleCourses(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	var args coursesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}
	courses, err := s.catalog.List(ctx, models.CourseFilter{
		Category: args.Category,
		Level:    args.Level,
		Search:   args.Search,
	})
	if err != nil {
		return errorResult("Error listing courses: " + err.Error())
	}
	return textResult(formatCourses(courses))
}

func handleStats(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	if s.ledger == nil {
		return textResult("Usage ledger is not configured.")
	}
	var args statsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}
	rows, err := s.ledger.Summary(ctx, args.CallerID)
	if err != nil {
		return errorResult("Error fetching stats: " + err.Error())
	}
	return textResult(formatSummary(rows))
}

func handleRecent(ctx context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	if s.ledger == nil {
		return textResult("Usage ledger is not configured.")
	}
	var args recentArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}
	recs, err := s.ledger.Recent(ctx, args.Limit)
	if err != nil {
		return errorResult("Error fetching recent calls: " + err.Error())
	}
	return textResult(formatRecords(recs))
}

func handleCache(_ context.Context, s *Server, raw json.RawMessage) ToolCallResult {
	var args cacheArgs
	if err := decodeArgs(raw, &args); err != nil {
		return errorResult("invalid arguments: " + err.Error())
	}

	var prefix string
	switch args.Purge {
	case "":
	case "expired", "all":
		n := s.assistant.PurgeCache(args.Purge == "expired")
		prefix = fmt.Sprintf("Removed %d entries.\n\n", n)
	default:
		return errorResult(`purge must be "expired" or "all"`)
	}
	return textResult(prefix + formatCacheStats(s.assistant.CacheStats()))
}
