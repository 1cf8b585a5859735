package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/coursewise/coursewise/pkg/logging"
	"github.com/coursewise/coursewise/pkg/models"
	"github.com/coursewise/coursewise/pkg/recommend"
)

const maxBodyBytes = 64 << 10

var validate = validator.New(validator.WithRequiredStructEnabled())

type recommendRequest struct {
	Prompt string `json:"prompt" validate:"required,min=5"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

type recommendResponse struct {
	Message         string                  `json:"message"`
	Prompt          string                  `json:"prompt"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Explanation     string                  `json:"explanation"`
	Cached          bool                    `json:"cached"`
	ResponseTimeMs  *int64                  `json:"responseTime,omitempty"`
}

type chatResponse struct {
	Message     string `json:"message"`
	UserMessage string `json:"userMessage"`
	GPTResponse string `json:"gptResponse"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "coursewise API is running",
		"version": Version,
		"endpoints": map[string]string{
			"courses": "/api/courses",
			"gpt":     "/api/gpt",
			"health":  "/healthz",
			"metrics": "/metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if s.breaker != nil {
		if state := s.breaker(); state != "" {
			body["breaker"] = state
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	courses, err := s.catalog.List(r.Context(), models.CourseFilter{
		Category: q.Get("category"),
		Level:    q.Get("level"),
		Search:   q.Get("search"),
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("list courses failed")
		writeJSONError(w, http.StatusInternalServerError, "Server error fetching courses")
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(courses), "courses": courses})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Prompt = strings.TrimSpace(req.Prompt)
	if !validBody(w, &req) {
		return
	}

	catalog, err := s.catalog.ListPublished(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("load catalog failed")
		writeJSONError(w, http.StatusInternalServerError, "Error generating recommendations")
		return
	}
	if len(catalog) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"message":         "No courses available for recommendations",
			"recommendations": []models.Recommendation{},
		})
		return
	}

	res, err := s.assistant.Recommend(r.Context(), req.Prompt, catalog)
	if err != nil {
		s.writeAssistantError(w, r, err, "Error generating recommendations")
		return
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		Message:         "Recommendations generated successfully",
		Prompt:          req.Prompt,
		Recommendations: res.Recommendations,
		Explanation:     res.Explanation,
		Cached:          res.Cached,
		ResponseTimeMs:  res.ResponseTimeMs,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if !validBody(w, &req) {
		return
	}

	text, err := s.assistant.Chat(r.Context(), req.Message)
	if err != nil {
		s.writeAssistantError(w, r, err, "Error communicating with the assistant")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Message:     "Response generated successfully",
		UserMessage: req.Message,
		GPTResponse: text,
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.assistant.Usage())
}

// writeAssistantError maps service errors to status codes. Upstream causes
// are logged, never returned to the client.
func (s *Server) writeAssistantError(w http.ResponseWriter, r *http.Request, err error, upstreamMsg string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidInput):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, recommend.ErrRateLimited):
		writeJSONError(w, http.StatusTooManyRequests, "API request limit reached. Please try again later.")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("assistant call failed")
		writeJSONError(w, http.StatusInternalServerError, upstreamMsg)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func validBody(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	fields := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldError{Field: strings.ToLower(fe.Field()), Message: fieldMessage(fe)})
	}
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"message": fields[0].Message,
		"errors":  fields,
	})
	return false
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters long"
	default:
		return fe.Field() + " is invalid"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"message": message})
}
