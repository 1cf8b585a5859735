package tracker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/coursewise/coursewise/pkg/models"
)

func newTestTracker(t *testing.T) *SQLiteTracker {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	tr, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func call(caller string, kind models.CallKind, outcome models.CallOutcome, latency int64, at time.Time) models.UsageRecord {
	return models.UsageRecord{
		RequestID: "req",
		CallerID:  caller,
		Kind:      kind,
		Model:     "gpt-3.5-turbo",
		Outcome:   outcome,
		LatencyMs: latency,
		CreatedAt: at,
	}
}

func TestRecordAndQuery(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := tr.Record(ctx, call("u1", models.CallRecommend, models.OutcomeOK, 420, now)); err != nil {
		t.Fatal(err)
	}
	if err := tr.Record(ctx, call("u2", models.CallChat, models.OutcomeOK, 100, now)); err != nil {
		t.Fatal(err)
	}

	records, err := tr.QueryByCaller(ctx, "u1", now.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Kind != models.CallRecommend || r.Outcome != models.OutcomeOK || r.LatencyMs != 420 {
		t.Errorf("unexpected record: %+v", r)
	}
	if r.Model != "gpt-3.5-turbo" || r.RequestID != "req" {
		t.Errorf("unexpected record: %+v", r)
	}
}

func TestQueryByCallerSince(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = tr.Record(ctx, call("u1", models.CallChat, models.OutcomeOK, 10, now.Add(-2*time.Hour)))
	_ = tr.Record(ctx, call("u1", models.CallChat, models.OutcomeOK, 10, now))

	records, err := tr.QueryByCaller(ctx, "u1", now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestRecordStampsCreatedAt(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	if err := tr.Record(ctx, models.UsageRecord{CallerID: "u1", Kind: models.CallChat, Outcome: models.OutcomeOK}); err != nil {
		t.Fatal(err)
	}
	recs, err := tr.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].CreatedAt.IsZero() {
		t.Fatalf("expected stamped record, got %+v", recs)
	}
}

func TestRecent(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := range 5 {
		_ = tr.Record(ctx, call("u1", models.CallChat, models.OutcomeOK, int64(i), now))
	}

	recs, err := tr.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0].LatencyMs != 4 {
		t.Errorf("expected newest first, got latency %d", recs[0].LatencyMs)
	}
}

func TestDispatchedSince(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, o := range []models.CallOutcome{
		models.OutcomeOK,
		models.OutcomeUpstreamError,
		models.OutcomeCacheHit,
		models.OutcomeRateLimited,
		models.OutcomeInvalid,
	} {
		_ = tr.Record(ctx, call("u1", models.CallRecommend, o, 5, now))
	}

	n, err := tr.DispatchedSince(ctx, now.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("expected 2 dispatched calls, got %d", n)
	}
}

func TestSummary(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = tr.Record(ctx, call("u1", models.CallRecommend, models.OutcomeOK, 100, now))
	_ = tr.Record(ctx, call("u1", models.CallRecommend, models.OutcomeUpstreamError, 300, now))
	_ = tr.Record(ctx, call("u1", models.CallRecommend, models.OutcomeCacheHit, 0, now))
	_ = tr.Record(ctx, call("u1", models.CallChat, models.OutcomeOK, 50, now))
	_ = tr.Record(ctx, call("u2", models.CallChat, models.OutcomeRateLimited, 0, now))

	summaries, err := tr.Summary(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(summaries))
	}

	// ordered by caller, kind: u1/chat, u1/recommend, u2/chat
	rec := summaries[1]
	if rec.CallerID != "u1" || rec.Kind != models.CallRecommend {
		t.Fatalf("unexpected ordering: %+v", summaries)
	}
	if rec.RequestCount != 3 || rec.CacheHits != 1 || rec.ModelCalls != 2 || rec.Failures != 1 {
		t.Errorf("unexpected counts: %+v", rec)
	}
	if rec.AvgLatencyMs != 200 {
		t.Errorf("expected avg latency 200, got %v", rec.AvgLatencyMs)
	}

	limited := summaries[2]
	if limited.ModelCalls != 0 || limited.AvgLatencyMs != 0 {
		t.Errorf("rate limited calls should not count as model calls: %+v", limited)
	}
}

func TestSummaryFilteredByCaller(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = tr.Record(ctx, call("u1", models.CallChat, models.OutcomeOK, 1, now))
	_ = tr.Record(ctx, call("u2", models.CallChat, models.OutcomeOK, 1, now))

	summaries, err := tr.Summary(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].CallerID != "u2" {
		t.Errorf("expected only u2, got %+v", summaries)
	}
}

func TestSummaryEmpty(t *testing.T) {
	tr := newTestTracker(t)
	summaries, err := tr.Summary(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 0 {
		t.Errorf("expected no summaries, got %d", len(summaries))
	}
}

var _ Tracker = (*SQLiteTracker)(nil)
