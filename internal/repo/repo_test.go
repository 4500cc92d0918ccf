package repo_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"smartdesk/internal/db"
	"smartdesk/internal/domain"
	"smartdesk/internal/migrate"
	"smartdesk/internal/repo"
)

func newTestRepo(t *testing.T) (repo.Repo, *sql.DB) {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo.Repo{DB: conn}, conn
}

func insertTask(t *testing.T, r repo.Repo, conn *sql.DB, task domain.Task) int64 {
	t.Helper()
	ctx := context.Background()
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	id, err := r.InsertTask(ctx, tx, task)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return id
}

func TestTaskRoundTrip(t *testing.T) {
	r, conn := newTestRepo(t)
	ctx := context.Background()
	start := time.Date(2026, 4, 1, 8, 0, 0, 0, time.Local)
	due := time.Date(2026, 4, 1, 17, 30, 0, 0, time.Local)
	created := time.Date(2026, 3, 30, 12, 0, 0, 0, time.Local)
	task := domain.Task{
		Title:               "round trip",
		Description:         "all fields set",
		StartAt:             &start,
		DueAt:               &due,
		Priority:            domain.PriorityUrgent,
		Type:                domain.TypeEvent,
		ReminderEnabled:     true,
		ReminderLeadMinutes: 45,
		Status:              domain.StatusInProgress,
		CreatedAt:           &created,
		UpdatedAt:           &created,
	}
	id := insertTask(t, r, conn, task)

	loaded, err := r.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Title != task.Title || loaded.Description != task.Description {
		t.Fatalf("text fields: %+v", loaded)
	}
	if loaded.Priority != domain.PriorityUrgent || loaded.Type != domain.TypeEvent || loaded.Status != domain.StatusInProgress {
		t.Fatalf("enums: %+v", loaded)
	}
	if !loaded.ReminderEnabled || loaded.ReminderLeadMinutes != 45 {
		t.Fatalf("reminder fields: %+v", loaded)
	}
	if loaded.StartAt == nil || !loaded.StartAt.Equal(start) || loaded.DueAt == nil || !loaded.DueAt.Equal(due) {
		t.Fatalf("timestamps: start=%v due=%v", loaded.StartAt, loaded.DueAt)
	}
	if loaded.LastRemindedAt != nil {
		t.Fatalf("last_reminded_at should stay null")
	}
}

func TestGetTaskNotFound(t *testing.T) {
	r, _ := newTestRepo(t)
	_, err := r.GetTask(context.Background(), 404)
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReminderCandidates(t *testing.T) {
	r, conn := newTestRepo(t)
	ctx := context.Background()
	due := time.Date(2026, 4, 2, 9, 0, 0, 0, time.Local)
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.Local)
	insertTask(t, r, conn, domain.Task{Title: "armed", DueAt: &due, ReminderEnabled: true, Status: domain.StatusPlanned, Priority: domain.PriorityNormal, Type: domain.TypeTodo, CreatedAt: &created, UpdatedAt: &created})
	insertTask(t, r, conn, domain.Task{Title: "disarmed", DueAt: &due, Status: domain.StatusPlanned, Priority: domain.PriorityNormal, Type: domain.TypeTodo, CreatedAt: &created, UpdatedAt: &created})
	insertTask(t, r, conn, domain.Task{Title: "undated", ReminderEnabled: true, Status: domain.StatusPlanned, Priority: domain.PriorityNormal, Type: domain.TypeTodo, CreatedAt: &created, UpdatedAt: &created})

	candidates, err := r.ListReminderCandidates(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Title != "armed" {
		t.Fatalf("candidates: %+v", candidates)
	}
}

func TestMarkReminderTriggeredStampsOnlyReminderColumns(t *testing.T) {
	r, conn := newTestRepo(t)
	ctx := context.Background()
	due := time.Date(2026, 4, 2, 9, 0, 0, 0, time.Local)
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.Local)
	id := insertTask(t, r, conn, domain.Task{Title: "stamp", DueAt: &due, ReminderEnabled: true, Status: domain.StatusPlanned, Priority: domain.PriorityHigh, Type: domain.TypeTodo, CreatedAt: &created, UpdatedAt: &created})

	stamp := time.Date(2026, 4, 2, 8, 45, 0, 0, time.Local)
	if err := r.MarkReminderTriggered(ctx, id, stamp); err != nil {
		t.Fatalf("mark: %v", err)
	}
	loaded, err := r.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.LastRemindedAt == nil || !loaded.LastRemindedAt.Equal(stamp) {
		t.Fatalf("last_reminded_at = %v", loaded.LastRemindedAt)
	}
	if loaded.Title != "stamp" || loaded.Priority != domain.PriorityHigh || !loaded.DueAt.Equal(due) {
		t.Fatalf("other columns changed: %+v", loaded)
	}
}

func TestNoteRoundTripAndTagFilter(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()
	older := domain.Note{Title: "older", Content: "body", Tag: "school", Date: time.Date(2026, 1, 1, 9, 0, 0, 0, time.Local)}
	newer := domain.Note{Title: "newer", Tag: "school", Date: time.Date(2026, 2, 1, 9, 0, 0, 0, time.Local)}
	other := domain.Note{Title: "other", Tag: "home", Date: time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)}
	for _, n := range []domain.Note{older, newer, other} {
		if _, err := r.InsertNote(ctx, n); err != nil {
			t.Fatalf("insert %s: %v", n.Title, err)
		}
	}

	school, err := r.ListNotes(ctx, "school")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(school) != 2 || school[0].Title != "newer" || school[1].Title != "older" {
		t.Fatalf("tag filter or order wrong: %+v", school)
	}

	all, err := r.ListNotes(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %v %d", err, len(all))
	}

	affected, err := r.DeleteNote(ctx, *school[0].ID)
	if err != nil || affected != 1 {
		t.Fatalf("delete: %v %d", err, affected)
	}
	if _, err := r.GetNote(ctx, *school[0].ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
