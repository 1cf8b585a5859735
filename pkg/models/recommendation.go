package models

// Recommendation is a single suggested course.
type Recommendation struct {
	CourseTitle string `json:"courseTitle"`
	Reason      string `json:"reason"`
}

// RecommendationResult is what the assistant returns for a prompt.
// Cached and ResponseTimeMs describe where the result came from and are
// overwritten on every read.
type RecommendationResult struct {
	Recommendations []Recommendation `json:"recommendations"`
	Explanation     string           `json:"explanation"`
	Cached          bool             `json:"cached"`
	ResponseTimeMs  *int64           `json:"responseTime,omitempty"`
}

// Clone returns a deep copy of r.
func (r RecommendationResult) Clone() RecommendationResult {
	out := r
	if r.Recommendations != nil {
		out.Recommendations = make([]Recommendation, len(r.Recommendations))
		copy(out.Recommendations, r.Recommendations)
	}
	if r.ResponseTimeMs != nil {
		ms := *r.ResponseTimeMs
		out.ResponseTimeMs = &ms
	}
	return out
}

// AssistantUsage reports request budget consumption and cache occupancy.
type AssistantUsage struct {
	Count     int `json:"count"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
	CacheSize int `json:"cacheSize"`
}
