package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hiroakis/scanledger/internal/model"
)

func TestCreateSession(t *testing.T) {
	t.Parallel()

	t.Run("creates a running session", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.CreateSession(ctx, "session-1", 100); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		session, err := db.GetSession(ctx, "session-1")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if session == nil {
			t.Fatal("expected session, got nil")
		}
		if session.ID != "session-1" {
			t.Errorf("expected id session-1, got %s", session.ID)
		}
		if session.TotalItems != 100 {
			t.Errorf("expected 100 total items, got %d", session.TotalItems)
		}
		if session.Status != model.StatusRunning {
			t.Errorf("expected status %s, got %s", model.StatusRunning, session.Status)
		}
		if session.StartTime.IsZero() {
			t.Error("expected non-zero start time")
		}
		if session.EndTime != nil {
			t.Errorf("expected nil end time for running session, got %v", session.EndTime)
		}
	})

	t.Run("duplicate id returns ErrDuplicateSession", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.CreateSession(ctx, "dup", 10); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		err := db.CreateSession(ctx, "dup", 20)
		if !errors.Is(err, ErrDuplicateSession) {
			t.Errorf("expected ErrDuplicateSession, got %v", err)
		}
	})
}

func TestGetSession(t *testing.T) {
	t.Parallel()

	t.Run("unknown id returns nil without error", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		session, err := db.GetSession(context.Background(), "nope")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if session != nil {
			t.Errorf("expected nil session, got %+v", session)
		}
	})
}

func TestGetAllSessions(t *testing.T) {
	t.Parallel()

	t.Run("empty database returns no sessions", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		sessions, err := db.GetAllSessions(context.Background())
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(sessions) != 0 {
			t.Errorf("expected 0 sessions, got %d", len(sessions))
		}
	})

	t.Run("orders by start time descending", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

		insertSessionAt(t, db, "oldest", base.Add(-2*time.Hour), 1)
		insertSessionAt(t, db, "middle", base.Add(-1*time.Hour), 1)
		insertSessionAt(t, db, "newest", base, 1)

		sessions, err := db.GetAllSessions(context.Background())
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(sessions) != 3 {
			t.Fatalf("expected 3 sessions, got %d", len(sessions))
		}

		want := []string{"newest", "middle", "oldest"}
		for i, id := range want {
			if sessions[i].ID != id {
				t.Errorf("position %d: expected %s, got %s", i, id, sessions[i].ID)
			}
		}
	})

	t.Run("identical start times fall back to id order", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

		insertSessionAt(t, db, "alpha", at, 1)
		insertSessionAt(t, db, "zulu", at, 1)
		insertSessionAt(t, db, "mike", at, 1)

		sessions, err := db.GetAllSessions(context.Background())
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}

		want := []string{"zulu", "mike", "alpha"}
		for i, id := range want {
			if sessions[i].ID != id {
				t.Errorf("position %d: expected %s, got %s", i, id, sessions[i].ID)
			}
		}
	})
}

func TestCompleteSession(t *testing.T) {
	t.Parallel()

	t.Run("sets end time and completed status", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.CreateSession(ctx, "done", 5); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if err := db.CompleteSession(ctx, "done"); err != nil {
			t.Fatalf("failed to complete session: %v", err)
		}

		session, err := db.GetSession(ctx, "done")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if session.Status != model.StatusCompleted {
			t.Errorf("expected status %s, got %s", model.StatusCompleted, session.Status)
		}
		if session.EndTime == nil {
			t.Fatal("expected end time to be set")
		}
	})

	t.Run("completing twice preserves the first end time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.CreateSession(ctx, "twice", 5); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if err := db.CompleteSession(ctx, "twice"); err != nil {
			t.Fatalf("failed to complete session: %v", err)
		}

		first, err := db.GetSession(ctx, "twice")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}

		time.Sleep(1100 * time.Millisecond)
		if err := db.CompleteSession(ctx, "twice"); err != nil {
			t.Fatalf("second complete failed: %v", err)
		}

		second, err := db.GetSession(ctx, "twice")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if !second.EndTime.Equal(*first.EndTime) {
			t.Errorf("end time changed on second complete: %v -> %v", first.EndTime, second.EndTime)
		}
	})

	t.Run("completing an unknown session is not an error", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		if err := db.CompleteSession(context.Background(), "ghost"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestDeleteSession(t *testing.T) {
	t.Parallel()

	t.Run("removes session, results, and progress together", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.CreateSession(ctx, "victim", 3); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		for i := 0; i < 3; i++ {
			if _, err := db.InsertResult(ctx, "victim", testResult("storefront", "B000000010", true)); err != nil {
				t.Fatalf("failed to insert result: %v", err)
			}
		}
		if err := db.UpdateProgress(ctx, &model.ScanProgress{SessionID: "victim", CurrentStore: "storefront", CurrentIndex: 3, TotalItems: 3}); err != nil {
			t.Fatalf("failed to update progress: %v", err)
		}

		deleted, err := db.DeleteSession(ctx, "victim")
		if err != nil {
			t.Fatalf("failed to delete session: %v", err)
		}
		if deleted != 3 {
			t.Errorf("expected 3 deleted results, got %d", deleted)
		}

		session, err := db.GetSession(ctx, "victim")
		if err != nil {
			t.Fatalf("failed to get session: %v", err)
		}
		if session != nil {
			t.Error("session still present after delete")
		}

		count, err := db.GetResultCount(ctx, "victim")
		if err != nil {
			t.Fatalf("failed to count results: %v", err)
		}
		if count != 0 {
			t.Errorf("expected 0 results after delete, got %d", count)
		}

		progress, err := db.GetProgress(ctx, "victim")
		if err != nil {
			t.Fatalf("failed to get progress: %v", err)
		}
		if progress != nil {
			t.Error("progress still present after delete")
		}
	})

	t.Run("deleting twice reports zero the second time", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.CreateSession(ctx, "once", 1); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}
		if _, err := db.InsertResult(ctx, "once", testResult("storefront", "B000000011", true)); err != nil {
			t.Fatalf("failed to insert result: %v", err)
		}

		if _, err := db.DeleteSession(ctx, "once"); err != nil {
			t.Fatalf("first delete failed: %v", err)
		}

		deleted, err := db.DeleteSession(ctx, "once")
		if err != nil {
			t.Fatalf("second delete failed: %v", err)
		}
		if deleted != 0 {
			t.Errorf("expected 0 deleted results on second delete, got %d", deleted)
		}
	})

	t.Run("deleting an unknown id reports zero", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)

		deleted, err := db.DeleteSession(context.Background(), "never-existed")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted != 0 {
			t.Errorf("expected 0 deleted results, got %d", deleted)
		}
	})
}

func TestDeleteSessionsBefore(t *testing.T) {
	t.Parallel()

	t.Run("removes only sessions strictly older than cutoff", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		cutoff := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

		insertSessionAt(t, db, "ancient", cutoff.Add(-48*time.Hour), 1)
		insertSessionAt(t, db, "boundary", cutoff, 1)
		insertSessionAt(t, db, "fresh", cutoff.Add(24*time.Hour), 1)

		if _, err := db.InsertResult(ctx, "ancient", testResult("storefront", "B000000020", true)); err != nil {
			t.Fatalf("failed to insert result: %v", err)
		}
		if _, err := db.InsertResult(ctx, "fresh", testResult("storefront", "B000000021", true)); err != nil {
			t.Fatalf("failed to insert result: %v", err)
		}

		sessions, results, err := db.DeleteSessionsBefore(ctx, cutoff)
		if err != nil {
			t.Fatalf("failed to delete old sessions: %v", err)
		}
		if sessions != 1 {
			t.Errorf("expected 1 deleted session, got %d", sessions)
		}
		if results != 1 {
			t.Errorf("expected 1 deleted result, got %d", results)
		}

		// A session starting exactly at the cutoff survives.
		remaining, err := db.GetAllSessions(ctx)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		ids := make(map[string]bool)
		for _, s := range remaining {
			ids[s.ID] = true
		}
		if !ids["boundary"] || !ids["fresh"] || ids["ancient"] {
			t.Errorf("unexpected surviving sessions: %v", ids)
		}
	})

	t.Run("no old sessions is a no-op", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.CreateSession(ctx, "current", 1); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		sessions, results, err := db.DeleteSessionsBefore(ctx, time.Now().Add(-24*time.Hour))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sessions != 0 || results != 0 {
			t.Errorf("expected no deletions, got %d sessions, %d results", sessions, results)
		}
	})
}

func TestDeleteAllButLatest(t *testing.T) {
	t.Parallel()

	t.Run("keeps the N most recently started sessions", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

		for i, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
			insertSessionAt(t, db, id, base.Add(time.Duration(i)*time.Hour), 1)
		}
		if _, err := db.InsertResult(ctx, "s1", testResult("storefront", "B000000030", true)); err != nil {
			t.Fatalf("failed to insert result: %v", err)
		}

		sessions, results, err := db.DeleteAllButLatest(ctx, 2)
		if err != nil {
			t.Fatalf("failed to prune sessions: %v", err)
		}
		if sessions != 3 {
			t.Errorf("expected 3 deleted sessions, got %d", sessions)
		}
		if results != 1 {
			t.Errorf("expected 1 deleted result, got %d", results)
		}

		remaining, err := db.GetAllSessions(ctx)
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(remaining) != 2 {
			t.Fatalf("expected 2 remaining sessions, got %d", len(remaining))
		}
		if remaining[0].ID != "s5" || remaining[1].ID != "s4" {
			t.Errorf("expected s5, s4 to survive, got %s, %s", remaining[0].ID, remaining[1].ID)
		}
	})

	t.Run("count at or above total is a no-op", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.CreateSession(ctx, "only", 1); err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		sessions, results, err := db.DeleteAllButLatest(ctx, 5)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sessions != 0 || results != 0 {
			t.Errorf("expected no deletions, got %d sessions, %d results", sessions, results)
		}
	})

	t.Run("tie on start time keeps the higher session id", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

		insertSessionAt(t, db, "aaa", at, 1)
		insertSessionAt(t, db, "bbb", at, 1)
		insertSessionAt(t, db, "ccc", at, 1)

		if _, _, err := db.DeleteAllButLatest(context.Background(), 1); err != nil {
			t.Fatalf("failed to prune sessions: %v", err)
		}

		remaining, err := db.GetAllSessions(context.Background())
		if err != nil {
			t.Fatalf("failed to list sessions: %v", err)
		}
		if len(remaining) != 1 {
			t.Fatalf("expected 1 remaining session, got %d", len(remaining))
		}
		if remaining[0].ID != "ccc" {
			t.Errorf("expected ccc to survive the tie, got %s", remaining[0].ID)
		}
	})
}
