package tracker

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/clinsight-ai/clinsight/pkg/models"
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

func TestRecordAndSummary(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	now := time.Now().UTC()

	_ = tr.Record(ctx, models.Interaction{
		Model: "gpt-5-mini", QueryType: "trend_analysis",
		InputTokens: 1000, OutputTokens: 500, TotalTokens: 1500,
		EstimatedCost: 0.00045, CreatedAt: now,
	})
	_ = tr.Record(ctx, models.Interaction{
		Model: "gpt-5.2", QueryType: "comparison",
		InputTokens: 200, OutputTokens: 100, TotalTokens: 300,
		EstimatedCost: 0.0015, CreatedAt: now,
	})

	summaries, err := tr.Summary(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	summaries, err = tr.Summary(ctx, "gpt-5-mini")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].TotalTokens != 1500 {
		t.Errorf("expected 1500 tokens, got %d", summaries[0].TotalTokens)
	}
	if math.Abs(summaries[0].EstimatedCost-0.00045) > 1e-12 {
		t.Errorf("expected 0.00045 cost, got %v", summaries[0].EstimatedCost)
	}
}

func TestResolveSessionExplicit(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	sid, err := tr.ResolveSession(ctx, "my-session", 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if sid != "my-session" {
		t.Errorf("expected my-session, got %s", sid)
	}

	// Same ID again returns the same session.
	sid2, err := tr.ResolveSession(ctx, "my-session", 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if sid2 != "my-session" {
		t.Errorf("expected my-session, got %s", sid2)
	}
}

func TestResolveSessionAutoDetect(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	sid1, err := tr.ResolveSession(ctx, "", 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if sid1 == "" {
		t.Fatal("expected non-empty session ID")
	}

	// Within the gap: reuse.
	sid2, err := tr.ResolveSession(ctx, "", 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if sid2 != sid1 {
		t.Errorf("expected same session %s, got %s", sid1, sid2)
	}

	// Zero gap timeout: always a new session.
	sid3, err := tr.ResolveSession(ctx, "", 0)
	if err != nil {
		t.Fatal(err)
	}
	if sid3 == sid1 {
		t.Error("expected new session with zero gap timeout")
	}
}

func TestSessionCounters(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	now := time.Now().UTC()

	sid, _ := tr.ResolveSession(ctx, "sess-detail", 30*time.Minute)

	for i, tokens := range []int{500, 1200, 2800} {
		_ = tr.Record(ctx, models.Interaction{
			SessionID: sid, Model: "gpt-5-mini",
			InputTokens: tokens, OutputTokens: 100, TotalTokens: tokens + 100,
			EstimatedCost: 0.001, CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
	}

	ins, err := tr.SessionInteractions(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(ins) != 3 {
		t.Fatalf("expected 3 interactions, got %d", len(ins))
	}
	if ins[0].InputTokens != 500 || ins[2].InputTokens != 2800 {
		t.Error("interactions not in call order")
	}

	sessions, err := tr.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].RequestCount != 3 {
		t.Errorf("expected 3 requests, got %d", sessions[0].RequestCount)
	}
	if sessions[0].TotalTokens != 600+1300+2900 {
		t.Errorf("expected %d tokens, got %d", 600+1300+2900, sessions[0].TotalTokens)
	}
	if math.Abs(sessions[0].EstimatedCost-0.003) > 1e-12 {
		t.Errorf("expected 0.003 session cost, got %v", sessions[0].EstimatedCost)
	}
}

func TestDailyCosts(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

	_ = tr.Record(ctx, models.Interaction{
		Model: "gpt-5-mini", InputTokens: 1000, OutputTokens: 500, TotalTokens: 1500,
		EstimatedCost: 0.00045, CreatedAt: day.Add(10 * time.Hour),
	})
	_ = tr.Record(ctx, models.Interaction{
		Model: "gpt-5.2", InputTokens: 100, OutputTokens: 100, TotalTokens: 200,
		EstimatedCost: 0.00125, CreatedAt: day.Add(23 * time.Hour),
	})
	// Next day, must not be counted.
	_ = tr.Record(ctx, models.Interaction{
		Model: "gpt-5-mini", InputTokens: 999, OutputTokens: 1, TotalTokens: 1000,
		EstimatedCost: 1.0, CreatedAt: day.AddDate(0, 0, 1).Add(time.Hour),
	})

	summary, err := tr.DailyCosts(ctx, day)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Date != "2026-08-25" {
		t.Errorf("expected 2026-08-25, got %s", summary.Date)
	}
	if summary.Requests != 2 {
		t.Errorf("expected 2 requests, got %d", summary.Requests)
	}
	if summary.TokensUsed != 1700 {
		t.Errorf("expected 1700 tokens, got %d", summary.TokensUsed)
	}
	if len(summary.ByModel) != 2 {
		t.Errorf("expected 2 model groups, got %d", len(summary.ByModel))
	}
	if math.Abs(summary.EstimatedCost-0.0017) > 1e-12 {
		t.Errorf("expected 0.0017 cost, got %v", summary.EstimatedCost)
	}
}

func TestSpendSince(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for range 3 {
		_ = tr.Record(ctx, models.Interaction{
			Model: "gpt-5-mini", InputTokens: 100, OutputTokens: 100, TotalTokens: 200,
			EstimatedCost: 0.5, CreatedAt: now,
		})
	}
	_ = tr.Record(ctx, models.Interaction{
		Model: "gpt-5.2", InputTokens: 100, OutputTokens: 100, TotalTokens: 200,
		EstimatedCost: 2.0, CreatedAt: now,
	})

	total, err := tr.SpendSince(ctx, "", now.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(total-3.5) > 1e-12 {
		t.Errorf("expected 3.5, got %v", total)
	}

	mini, err := tr.SpendSince(ctx, "gpt-5-mini", now.Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(mini-1.5) > 1e-12 {
		t.Errorf("expected 1.5, got %v", mini)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	tr1, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	_ = tr1.Close()

	tr2, err := New(dbPath)
	if err != nil {
		t.Fatal("second New() failed:", err)
	}
	_ = tr2.Close()
}
