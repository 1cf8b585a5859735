// Package mcp serves the recommendation assistant to MCP clients as
// JSON-RPC 2.0 over stdio, one message per line.
package mcp

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/coursewise/coursewise/pkg/logging"
	"github.com/coursewise/coursewise/pkg/models"
	"github.com/coursewise/coursewise/pkg/recommend"
)

// CallerID is the caller recorded for every tool call.
const CallerID = "mcp"

// Assistant is the recommendation service.
type Assistant interface {
	Recommend(ctx context.Context, prompt string, catalog []models.CatalogEntry) (models.RecommendationResult, error)
	Chat(ctx context.Context, message string) (string, error)
	Usage() models.AssistantUsage
	CacheStats() models.CacheStats
	PurgeCache(expiredOnly bool) int
}

// Catalog is the read side of the course store.
type Catalog interface {
	recommend.CatalogProvider
	List(ctx context.Context, f models.CourseFilter) ([]models.Course, error)
}

// Ledger is the read side of the usage ledger. It may be nil.
type Ledger interface {
	Summary(ctx context.Context, callerID string) ([]models.UsageSummary, error)
	Recent(ctx context.Context, limit int) ([]models.UsageRecord, error)
}

// Server is a minimal MCP server.
type Server struct {
	assistant Assistant
	catalog   Catalog
	ledger    Ledger
	version   string
}

// New creates a Server. ledger may be nil.
func New(a Assistant, c Catalog, ledger Ledger, version string) *Server {
	return &Server{assistant: a, catalog: c, ledger: ledger, version: version}
}

// Run reads requests from r line by line and writes responses to w.
// It blocks until r is exhausted or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(w, errorResponse(nil, CodeParseError, "parse error"))
			continue
		}
		if req.JSONRPC != "2.0" || req.Method == "" {
			s.write(w, errorResponse(req.ID, CodeInvalidRequest, "invalid request"))
			continue
		}

		if resp := s.dispatch(ctx, &req); resp != nil {
			s.write(w, resp)
		}
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      ServerInfo{Name: "coursewise", Version: s.version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		})
	case "notifications/initialized":
		return nil
	case "ping":
		return resultResponse(req.ID, map[string]any{})
	case "tools/list":
		return resultResponse(req.ID, ToolsListResult{Tools: allTools})
	case "tools/call":
		return s.callTool(ctx, req)
	default:
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("unknown method: %s", req.Method))
	}
}

func (s *Server) callTool(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, CodeInvalidParams, "invalid params")
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return resultResponse(req.ID, errorResult(fmt.Sprintf("unknown tool: %s", params.Name)))
	}

	ctx = logging.ContextWithRequestID(ctx, logging.GenerateRequestID())
	ctx = logging.ContextWithCallerID(ctx, CallerID)
	logging.Ctx(ctx).Debug().Str("tool", params.Name).Msg("tool call")

	return resultResponse(req.ID, handler(ctx, s, params.Arguments))
}

func (s *Server) write(w io.Writer, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("mcp: marshal response")
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("mcp: write response")
	}
}
