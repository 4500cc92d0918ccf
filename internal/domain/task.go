package domain

import (
	"strings"
	"time"
)

// TimeLayout is the textual timestamp representation stored in SQLite.
// It matches ISO local date-time with optional fractional seconds.
const TimeLayout = "2006-01-02T15:04:05.999999999"

// DefaultReminderLeadMinutes is applied when a task does not set its own lead.
const DefaultReminderLeadMinutes = 15

// Task is an immutable work item. Mutation goes through ToBuilder, which
// copies the value; live tasks are never aliased between the service and the
// reminder scheduler.
type Task struct {
	ID                  *int64       `json:"id,omitempty"`
	Title               string       `json:"title"`
	Description         string       `json:"description,omitempty"`
	StartAt             *time.Time   `json:"start_at,omitempty"`
	DueAt               *time.Time   `json:"due_at,omitempty"`
	Priority            TaskPriority `json:"priority"`
	Type                TaskType     `json:"type"`
	ReminderEnabled     bool         `json:"reminder_enabled"`
	ReminderLeadMinutes int          `json:"reminder_lead_minutes"`
	Status              TaskStatus   `json:"status" enum:"PLANNED,IN_PROGRESS,COMPLETED,CANCELLED"`
	LastRemindedAt      *time.Time   `json:"last_reminded_at,omitempty"`
	CreatedAt           *time.Time   `json:"created_at,omitempty"`
	UpdatedAt           *time.Time   `json:"updated_at,omitempty"`
}

// ReminderWindowStart is the instant at which the task's reminder window
// opens: due date minus the configured lead.
func (t Task) ReminderWindowStart() *time.Time {
	if t.DueAt == nil {
		return nil
	}
	ws := t.DueAt.Add(-time.Duration(t.ReminderLeadMinutes) * time.Minute)
	return &ws
}

// ToBuilder returns a builder seeded with the task's current state.
func (t Task) ToBuilder() *TaskBuilder {
	b := NewTaskBuilder()
	b.task = t
	return b
}

// TaskBuilder assembles Task values. Setters silently ignore values that
// would leave a field invalid (nil enums, negative lead minutes), keeping the
// previous value instead; Build enforces the structural invariants.
type TaskBuilder struct {
	task Task
}

func NewTaskBuilder() *TaskBuilder {
	return &TaskBuilder{task: Task{
		Priority:            PriorityNormal,
		Type:                TypeTodo,
		Status:              StatusPlanned,
		ReminderLeadMinutes: DefaultReminderLeadMinutes,
	}}
}

func (b *TaskBuilder) WithID(id int64) *TaskBuilder {
	b.task.ID = &id
	return b
}

func (b *TaskBuilder) WithTitle(title string) *TaskBuilder {
	b.task.Title = title
	return b
}

func (b *TaskBuilder) WithDescription(description string) *TaskBuilder {
	b.task.Description = description
	return b
}

func (b *TaskBuilder) WithStartAt(start *time.Time) *TaskBuilder {
	b.task.StartAt = cloneTime(start)
	return b
}

func (b *TaskBuilder) WithDueAt(due *time.Time) *TaskBuilder {
	b.task.DueAt = cloneTime(due)
	return b
}

func (b *TaskBuilder) WithPriority(priority TaskPriority) *TaskBuilder {
	if priority.Valid() {
		b.task.Priority = priority
	}
	return b
}

func (b *TaskBuilder) WithType(taskType TaskType) *TaskBuilder {
	if taskType.Valid() {
		b.task.Type = taskType
	}
	return b
}

func (b *TaskBuilder) WithReminderEnabled(enabled bool) *TaskBuilder {
	b.task.ReminderEnabled = enabled
	return b
}

// WithReminderLeadMinutes ignores negative values and keeps the previous lead.
func (b *TaskBuilder) WithReminderLeadMinutes(minutes int) *TaskBuilder {
	if minutes >= 0 {
		b.task.ReminderLeadMinutes = minutes
	}
	return b
}

func (b *TaskBuilder) WithStatus(status TaskStatus) *TaskBuilder {
	if status.Valid() {
		b.task.Status = status
	}
	return b
}

func (b *TaskBuilder) WithLastRemindedAt(ts *time.Time) *TaskBuilder {
	b.task.LastRemindedAt = cloneTime(ts)
	return b
}

func (b *TaskBuilder) WithCreatedAt(ts *time.Time) *TaskBuilder {
	b.task.CreatedAt = cloneTime(ts)
	return b
}

func (b *TaskBuilder) WithUpdatedAt(ts *time.Time) *TaskBuilder {
	b.task.UpdatedAt = cloneTime(ts)
	return b
}

func (b *TaskBuilder) Build() (Task, error) {
	if strings.TrimSpace(b.task.Title) == "" {
		return Task{}, ValidationError{Field: "title", Reason: "must not be blank"}
	}
	if b.task.StartAt != nil && b.task.DueAt != nil && b.task.DueAt.Before(*b.task.StartAt) {
		return Task{}, ValidationError{Field: "due_at", Reason: "must not precede start_at"}
	}
	if b.task.ReminderLeadMinutes < 0 {
		return Task{}, ValidationError{Field: "reminder_lead_minutes", Reason: "must not be negative"}
	}
	return b.task, nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
