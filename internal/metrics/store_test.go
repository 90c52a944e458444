package metrics

import (
	"context"
	"testing"
	"time"

	"shoplist/internal/database/dbtest"
	"shoplist/internal/shared"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	store := NewStore(dbtest.New(t))
	store.now = func() time.Time { return now }

	records := []ExecutionMetric{
		{Operation: "categorize", Model: "m", PromptTokens: 100, CompletionTokens: 10, Timestamp: now.Add(-time.Hour)},
		{Operation: "categorize", Model: "m", PromptTokens: 50, CompletionTokens: 5, Timestamp: now.Add(-2 * time.Hour)},
		{Operation: "categorize", Model: "m", PromptTokens: 20, CompletionTokens: 2, Timestamp: now.AddDate(0, 0, -1)},
		{Operation: "categorize", Model: "m", PromptTokens: 1, CompletionTokens: 1, Timestamp: now.AddDate(0, 0, -40)},
	}
	for _, m := range records {
		if err := store.Record(ctx, m); err != nil {
			t.Fatalf("Expected no error recording metric, got %v", err)
		}
	}

	t.Run("RecordMetaSkipsEmptyUsage", func(t *testing.T) {
		err := store.RecordMeta(ctx, shared.CallMeta{Operation: "categorize"})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		var count int
		if err := store.db.QueryRow(`SELECT COUNT(*) FROM execution_metrics`).Scan(&count); err != nil {
			t.Fatalf("Failed to count metrics: %v", err)
		}
		if count != len(records) {
			t.Errorf("Expected %d metrics, got %d", len(records), count)
		}
	})

	t.Run("GetDailyUsage", func(t *testing.T) {
		usage, err := store.GetDailyUsage(ctx, 7)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(usage) != 2 {
			t.Fatalf("Expected 2 days of usage, got %d: %+v", len(usage), usage)
		}
		today := usage[0]
		if today.Date != "2024-06-10" || today.TotalPrompt != 150 || today.TotalCompletion != 15 || today.TotalExecution != 2 {
			t.Errorf("Unexpected usage for today: %+v", today)
		}
		if usage[1].Date != "2024-06-09" || usage[1].TotalExecution != 1 {
			t.Errorf("Unexpected usage for yesterday: %+v", usage[1])
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		removed, err := store.Cleanup(ctx, 30)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if removed != 1 {
			t.Errorf("Expected 1 metric removed, got %d", removed)
		}
	})
}

func TestMapUsage(t *testing.T) {
	m := MapUsage("categorize", shared.TokenUsage{PromptTokens: 3, CompletionTokens: 4, Model: "x"}, 1500*time.Millisecond)
	if m.Operation != "categorize" || m.Model != "x" || m.PromptTokens != 3 || m.CompletionTokens != 4 {
		t.Errorf("Unexpected metric: %+v", m)
	}
	if m.LatencyMS != 1500 {
		t.Errorf("Expected LatencyMS 1500, got %d", m.LatencyMS)
	}
}
