// Package engine implements the task service: CRUD over the repository,
// derived-field maintenance, dashboard lane classification and the reminder
// query operations consumed by the background scheduler.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"smartdesk/internal/config"
	"smartdesk/internal/domain"
	"smartdesk/internal/events"
	"smartdesk/internal/repo"
)

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Now    func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// CreateTask persists a new task. Status defaults to PLANNED, created_at is
// set on first persistence and updated_at always refreshes.
func (e Engine) CreateTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	now := e.now()
	b := task.ToBuilder().WithUpdatedAt(&now)
	if !task.Status.Valid() {
		b.WithStatus(domain.StatusPlanned)
	}
	if task.CreatedAt == nil {
		b.WithCreatedAt(&now)
	}
	normalized, err := b.Build()
	if err != nil {
		return domain.Task{}, err
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	id, err := e.Repo.InsertTask(ctx, tx, normalized)
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	normalized.ID = &id
	if err := e.Events.Append(ctx, tx, "task.created", "task", itoa(id), events.EventPayload{
		"title":  normalized.Title,
		"status": normalized.Status,
	}); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return normalized, nil
}

// UpdateTask rewrites the persisted state of an existing task. The id must be
// present; updated_at is always refreshed before the write.
func (e Engine) UpdateTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	return e.persistUpdate(ctx, task, "task.updated", events.EventPayload{"title": task.Title})
}

func (e Engine) persistUpdate(ctx context.Context, task domain.Task, evtType string, payload events.EventPayload) (domain.Task, error) {
	if task.ID == nil {
		return domain.Task{}, domain.ValidationError{Field: "id", Reason: "must be present for updates"}
	}
	now := e.now()
	updated, err := task.ToBuilder().WithUpdatedAt(&now).Build()
	if err != nil {
		return domain.Task{}, err
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	affected, err := e.Repo.UpdateTask(ctx, tx, updated)
	if err != nil {
		return domain.Task{}, fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return domain.Task{}, repo.ErrNotFound
	}
	if err := e.Events.Append(ctx, tx, evtType, "task", itoa(*updated.ID), payload); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes a task by identity. Deleting a missing id reports false
// rather than an error.
func (e Engine) DeleteTask(ctx context.Context, id int64) (bool, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	affected, err := e.Repo.DeleteTask(ctx, tx, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	if affected > 0 {
		if err := e.Events.Append(ctx, tx, "task.deleted", "task", itoa(id), nil); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (e Engine) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	return e.Repo.GetTask(ctx, id)
}

// MarkTaskCompleted closes a task and disarms its reminder in one step.
func (e Engine) MarkTaskCompleted(ctx context.Context, id int64) (domain.Task, error) {
	existing, err := e.Repo.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	now := e.now()
	completed, err := existing.ToBuilder().
		WithStatus(domain.StatusCompleted).
		WithReminderEnabled(false).
		WithLastRemindedAt(&now).
		Build()
	if err != nil {
		return domain.Task{}, err
	}
	return e.persistUpdate(ctx, completed, "task.completed", nil)
}

// StartTask moves a task into IN_PROGRESS without touching reminder fields.
func (e Engine) StartTask(ctx context.Context, id int64) (domain.Task, error) {
	existing, err := e.Repo.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	started, err := existing.ToBuilder().WithStatus(domain.StatusInProgress).Build()
	if err != nil {
		return domain.Task{}, err
	}
	return e.persistUpdate(ctx, started, "task.started", nil)
}

// SnoozeTask pushes the deadline forward. A task without a due date gets one
// relative to now. Status always resets to PLANNED; snoozing un-starts the
// task.
func (e Engine) SnoozeTask(ctx context.Context, id int64, duration time.Duration) (domain.Task, error) {
	if duration <= 0 {
		return domain.Task{}, domain.ValidationError{Field: "duration", Reason: "must be positive"}
	}
	existing, err := e.Repo.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	base := e.now()
	if existing.DueAt != nil {
		base = *existing.DueAt
	}
	due := base.Add(duration)
	snoozed, err := existing.ToBuilder().
		WithDueAt(&due).
		WithStatus(domain.StatusPlanned).
		Build()
	if err != nil {
		return domain.Task{}, err
	}
	return e.persistUpdate(ctx, snoozed, "task.snoozed", events.EventPayload{
		"due_at": due.Format(domain.TimeLayout),
	})
}

// ListAllTasks returns every task in the canonical display order: due date
// ascending with undated tasks last, then priority descending. Read failures
// degrade to an empty list so UI rendering keeps working.
func (e Engine) ListAllTasks(ctx context.Context) []domain.Task {
	tasks, err := e.Repo.ListTasks(ctx)
	if err != nil {
		log.Printf("engine: list tasks failed: %v", err)
		return []domain.Task{}
	}
	sortTasks(tasks)
	return tasks
}

// sortTasks applies the canonical ordering in place.
func sortTasks(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch {
		case a.DueAt == nil && b.DueAt == nil:
		case a.DueAt == nil:
			return false
		case b.DueAt == nil:
			return true
		case !a.DueAt.Equal(*b.DueAt):
			return a.DueAt.Before(*b.DueAt)
		}
		return a.Priority.Level() > b.Priority.Level()
	})
}

// FilterOptions constrains FilterTasks; nil fields are not applied.
type FilterOptions struct {
	Type            *domain.TaskType
	Status          *domain.TaskStatus
	MinimumPriority *domain.TaskPriority
	From            *time.Time
	To              *time.Time
}

// FilterTasks applies type, status, minimum priority and inclusive due-date
// range filters over the canonically sorted task list. A task without a due
// date never matches a bounded date range.
func (e Engine) FilterTasks(ctx context.Context, opts FilterOptions) []domain.Task {
	out := []domain.Task{}
	for _, task := range e.ListAllTasks(ctx) {
		if opts.Type != nil && task.Type != *opts.Type {
			continue
		}
		if opts.Status != nil && task.Status != *opts.Status {
			continue
		}
		if opts.MinimumPriority != nil && task.Priority.Level() < opts.MinimumPriority.Level() {
			continue
		}
		if opts.From != nil || opts.To != nil {
			if task.DueAt == nil {
				continue
			}
			dueDate := startOfDay(*task.DueAt)
			if opts.From != nil && dueDate.Before(startOfDay(*opts.From)) {
				continue
			}
			if opts.To != nil && dueDate.After(startOfDay(*opts.To)) {
				continue
			}
		}
		out = append(out, task)
	}
	return out
}

func itoa(id int64) string {
	return fmt.Sprintf("%d", id)
}

// IsNotFound reports whether err means the task does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound)
}
