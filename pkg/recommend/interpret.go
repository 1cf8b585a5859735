package recommend

import (
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/coursewise/coursewise/pkg/models"
)

const (
	// FallbackCourseTitle names the single recommendation produced when the
	// model reply is not structured JSON.
	FallbackCourseTitle = "Multiple Courses"

	// FallbackExplanation accompanies the fallback recommendation.
	FallbackExplanation = "Recommendations based on your learning goals"

	// MaxFallbackReason bounds the raw reply copied into the fallback reason, in runes.
	MaxFallbackReason = 500
)

type replyKind int

const (
	replyStructured replyKind = iota
	replyFallback
)

type interpretation struct {
	kind   replyKind
	result models.RecommendationResult
}

type structuredReply struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	Explanation     string                  `json:"explanation"`
}

// Interpret turns a raw model reply into a result. It never fails: replies
// that are not the expected JSON shape collapse to a single
// FallbackCourseTitle recommendation carrying the reply text.
func Interpret(raw string) models.RecommendationResult {
	return interpret(raw).result
}

func interpret(raw string) interpretation {
	var reply structuredReply
	if err := json.Unmarshal([]byte(stripFences(raw)), &reply); err == nil &&
		(len(reply.Recommendations) > 0 || reply.Explanation != "") {
		if reply.Recommendations == nil {
			reply.Recommendations = []models.Recommendation{}
		}
		return interpretation{
			kind: replyStructured,
			result: models.RecommendationResult{
				Recommendations: reply.Recommendations,
				Explanation:     reply.Explanation,
			},
		}
	}

	return interpretation{
		kind: replyFallback,
		result: models.RecommendationResult{
			Recommendations: []models.Recommendation{{
				CourseTitle: FallbackCourseTitle,
				Reason:      truncateRunes(strings.TrimSpace(raw), MaxFallbackReason),
			}},
			Explanation: FallbackExplanation,
		},
	}
}

// stripFences removes markdown code-fence markers such as ```json and ```.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			// Drop the info string ("json") on the opening fence line.
			if info := strings.TrimSpace(s[:nl]); !strings.ContainsAny(info, "{[") {
				s = s[nl+1:]
			}
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
