package mcp

import (
	"fmt"
	"strings"

	"github.com/coursewise/coursewise/pkg/models"
)

func formatRecommendations(res models.RecommendationResult) string {
	var b strings.Builder
	for i, r := range res.Recommendations {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, r.CourseTitle, r.Reason)
	}
	if res.Explanation != "" {
		fmt.Fprintf(&b, "\n%s\n", res.Explanation)
	}
	if res.Cached {
		b.WriteString("\n(cached)\n")
	} else if res.ResponseTimeMs != nil {
		fmt.Fprintf(&b, "\n(model call took %d ms)\n", *res.ResponseTimeMs)
	}
	return b.String()
}

func formatUsage(u models.AssistantUsage) string {
	pct := float64(0)
	if u.Limit > 0 {
		pct = float64(u.Count) / float64(u.Limit) * 100
	}
	return fmt.Sprintf("Assistant Usage\n"+
		"  Model calls: %d / %d (%.1f%%)\n"+
		"  Remaining:   %d\n"+
		"  Cached:      %d prompts\n",
		u.Count, u.Limit, pct, u.Remaining, u.CacheSize)
}

func formatCacheStats(stats models.CacheStats) string {
	total := stats.Hits + stats.Misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}
	return fmt.Sprintf("Prompt Cache\n"+
		"  Entries:  %d / %d\n"+
		"  Hits:     %d\n"+
		"  Misses:   %d\n"+
		"  Hit Rate: %.1f%%\n",
		stats.Entries, stats.Capacity, stats.Hits, stats.Misses, hitRate)
}

func formatCourses(courses []models.Course) string {
	if len(courses) == 0 {
		return "No courses found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %-14s %-20s %s\n", "Title", "Level", "Category", "Duration")
	b.WriteString(strings.Repeat("-", 90) + "\n")
	for _, c := range courses {
		fmt.Fprintf(&b, "%-40s %-14s %-20s %s\n", truncate(c.Title, 40), c.Level, truncate(c.Category, 20), c.Duration)
	}
	return b.String()
}

func formatSummary(rows []models.UsageSummary) string {
	if len(rows) == 0 {
		return "No usage data found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s %-10s %8s %8s %8s %8s %10s\n",
		"Caller", "Kind", "Requests", "Cached", "Model", "Failed", "Avg ms")
	b.WriteString(strings.Repeat("-", 82) + "\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-24s %-10s %8d %8d %8d %8d %10.0f\n",
			truncate(r.CallerID, 24), r.Kind, r.RequestCount, r.CacheHits, r.ModelCalls, r.Failures, r.AvgLatencyMs)
	}
	return b.String()
}

func formatRecords(recs []models.UsageRecord) string {
	if len(recs) == 0 {
		return "No calls recorded."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-24s %-10s %-15s %8s\n", "Time", "Caller", "Kind", "Outcome", "ms")
	b.WriteString(strings.Repeat("-", 81) + "\n")
	for _, r := range recs {
		fmt.Fprintf(&b, "%-20s %-24s %-10s %-15s %8d\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"), truncate(r.CallerID, 24), r.Kind, r.Outcome, r.LatencyMs)
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
