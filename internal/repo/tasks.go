package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"smartdesk/internal/domain"
)

const taskColumns = `id, title, description, start_at, due_at, priority, type,
	reminder_enabled, reminder_lead_minutes, status, last_reminded_at,
	created_at, updated_at`

const selectTasksSQL = `SELECT ` + taskColumns + ` FROM tasks`

func scanTask(row rowScanner) (domain.Task, error) {
	var (
		t                                    domain.Task
		id                                   int64
		desc, startAt, dueAt, lastRemindedAt sql.NullString
		createdAt, updatedAt                 sql.NullString
		priority, reminderEnabled            int
		taskType, status                     string
	)
	err := row.Scan(&id, &t.Title, &desc, &startAt, &dueAt, &priority, &taskType,
		&reminderEnabled, &t.ReminderLeadMinutes, &status, &lastRemindedAt,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	t.ID = &id
	if desc.Valid {
		t.Description = desc.String
	}
	t.Priority = domain.PriorityFromLevel(priority)
	t.Type = domain.TaskType(taskType)
	t.Status = domain.TaskStatus(status)
	t.ReminderEnabled = reminderEnabled == 1
	if t.StartAt, err = parseTime(startAt); err != nil {
		return t, fmt.Errorf("parse start_at: %w", err)
	}
	if t.DueAt, err = parseTime(dueAt); err != nil {
		return t, fmt.Errorf("parse due_at: %w", err)
	}
	if t.LastRemindedAt, err = parseTime(lastRemindedAt); err != nil {
		return t, fmt.Errorf("parse last_reminded_at: %w", err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return t, fmt.Errorf("parse created_at: %w", err)
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return t, fmt.Errorf("parse updated_at: %w", err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// InsertTask persists a new task and returns its generated identity.
func (r Repo) InsertTask(ctx context.Context, tx *sql.Tx, t domain.Task) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO tasks
		(title, description, start_at, due_at, priority, type,
		 reminder_enabled, reminder_lead_minutes, status, last_reminded_at,
		 created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.Title, nullable(t.Description), formatTime(t.StartAt), formatTime(t.DueAt),
		t.Priority.Level(), string(t.Type), boolToInt(t.ReminderEnabled),
		t.ReminderLeadMinutes, string(t.Status), formatTime(t.LastRemindedAt),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateTask rewrites every column of an existing row and reports how many
// rows were affected.
func (r Repo) UpdateTask(ctx context.Context, tx *sql.Tx, t domain.Task) (int64, error) {
	if t.ID == nil {
		return 0, fmt.Errorf("task id required")
	}
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET title=?, description=?,
		start_at=?, due_at=?, priority=?, type=?, reminder_enabled=?,
		reminder_lead_minutes=?, status=?, last_reminded_at=?, created_at=?,
		updated_at=? WHERE id=?`,
		t.Title, nullable(t.Description), formatTime(t.StartAt), formatTime(t.DueAt),
		t.Priority.Level(), string(t.Type), boolToInt(t.ReminderEnabled),
		t.ReminderLeadMinutes, string(t.Status), formatTime(t.LastRemindedAt),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt), *t.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r Repo) DeleteTask(ctx context.Context, tx *sql.Tx, id int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r Repo) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	return scanTask(r.DB.QueryRowContext(ctx, selectTasksSQL+` WHERE id=?`, id))
}

func (r Repo) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return r.queryTasks(ctx, selectTasksSQL)
}

// ListReminderCandidates returns every task with reminders armed and a due
// date set. The reminder window test itself is applied by the caller.
func (r Repo) ListReminderCandidates(ctx context.Context) ([]domain.Task, error) {
	return r.queryTasks(ctx, selectTasksSQL+` WHERE reminder_enabled = 1 AND due_at IS NOT NULL`)
}

func (r Repo) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// MarkReminderTriggered stamps last_reminded_at and updated_at without
// touching any other column.
func (r Repo) MarkReminderTriggered(ctx context.Context, id int64, ts time.Time) error {
	stamp := ts.Format(domain.TimeLayout)
	_, err := r.DB.ExecContext(ctx,
		`UPDATE tasks SET last_reminded_at=?, updated_at=? WHERE id=?`, stamp, stamp, id)
	return err
}
