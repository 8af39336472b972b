package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/parleyhq/parley/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	outcome := &models.QueryOutcome{
		ID:       "q-1",
		Agent:    "github",
		FastPath: true,
		Response: "Pull request #42: Add retry logic",
		ToolResults: map[string]models.ExecutionResult{
			"github_get_pull_request": {Success: true, Data: map[string]any{"number": 42}},
		},
		CreatedAt: time.Now(),
	}
	if err := s.Record(ctx, "summarize pr #42", outcome); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	e := entries[0]
	if e.Query != "summarize pr #42" || e.Outcome.ID != "q-1" || !e.Outcome.FastPath {
		t.Errorf("entry round-trip lost fields: %+v", e)
	}
	r, ok := e.Outcome.ToolResults["github_get_pull_request"]
	if !ok || !r.Success {
		t.Errorf("tool results not preserved: %v", e.Outcome.ToolResults)
	}
}

func TestRecent_NewestFirstAndLimited(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		outcome := &models.QueryOutcome{
			ID:        fmt.Sprintf("q-%d", i),
			Agent:     "slack",
			Response:  "ok",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Record(ctx, fmt.Sprintf("query %d", i), outcome); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("limit not applied: got %d entries", len(entries))
	}
	if entries[0].Outcome.ID != "q-4" || entries[2].Outcome.ID != "q-2" {
		t.Errorf("entries not newest first: %s, %s, %s",
			entries[0].Outcome.ID, entries[1].Outcome.ID, entries[2].Outcome.ID)
	}
}

func TestRecord_SameIDReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &models.QueryOutcome{ID: "q-1", Agent: "github", Response: "first", CreatedAt: time.Now()}
	second := &models.QueryOutcome{ID: "q-1", Agent: "github", Response: "second", CreatedAt: time.Now()}
	if err := s.Record(ctx, "q", first); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, "q", second); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Outcome.Response != "second" {
		t.Errorf("same-ID record did not replace: %+v", entries)
	}
}

func TestRecent_DefaultLimit(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Recent(context.Background(), 0); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	outcome := &models.QueryOutcome{ID: "q-1", Agent: "github", Response: "ok", CreatedAt: time.Now()}
	if err := s.Record(context.Background(), "q", outcome); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopen and confirm persistence.
	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	entries, err := s2.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("entries not persisted across reopen: %d", len(entries))
	}
}
