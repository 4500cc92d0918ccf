package server

import (
	"time"

	"smartdesk/internal/domain"
)

// TaskRequest carries task fields over the wire. Timestamps use the same
// ISO local layout the store persists. Nil fields are left untouched on
// update; an empty timestamp string clears the value.
type TaskRequest struct {
	Title               *string `json:"title,omitempty"`
	Description         *string `json:"description,omitempty"`
	StartAt             *string `json:"start_at,omitempty"`
	DueAt               *string `json:"due_at,omitempty"`
	Priority            *int    `json:"priority,omitempty" minimum:"1" maximum:"5"`
	Type                *string `json:"type,omitempty" enum:"TODO,COURSE,ANNIVERSARY,EVENT"`
	Status              *string `json:"status,omitempty" enum:"PLANNED,IN_PROGRESS,COMPLETED,CANCELLED"`
	ReminderEnabled     *bool   `json:"reminder_enabled,omitempty"`
	ReminderLeadMinutes *int    `json:"reminder_lead_minutes,omitempty"`
}

// apply copies the provided fields onto the builder.
func (r TaskRequest) apply(b *domain.TaskBuilder) error {
	if r.Title != nil {
		b.WithTitle(*r.Title)
	}
	if r.Description != nil {
		b.WithDescription(*r.Description)
	}
	if r.StartAt != nil {
		ts, err := parseTimestamp(*r.StartAt, "start_at")
		if err != nil {
			return err
		}
		b.WithStartAt(ts)
	}
	if r.DueAt != nil {
		ts, err := parseTimestamp(*r.DueAt, "due_at")
		if err != nil {
			return err
		}
		b.WithDueAt(ts)
	}
	if r.Priority != nil {
		b.WithPriority(domain.TaskPriority(*r.Priority))
	}
	if r.Type != nil {
		b.WithType(domain.TaskType(*r.Type))
	}
	if r.Status != nil {
		b.WithStatus(domain.TaskStatus(*r.Status))
	}
	if r.ReminderEnabled != nil {
		b.WithReminderEnabled(*r.ReminderEnabled)
	}
	if r.ReminderLeadMinutes != nil {
		b.WithReminderLeadMinutes(*r.ReminderLeadMinutes)
	}
	return nil
}

func parseTimestamp(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	ts, err := time.ParseInLocation(domain.TimeLayout, value, time.Local)
	if err != nil {
		return nil, domain.ValidationError{Field: field, Reason: "invalid timestamp"}
	}
	return &ts, nil
}

type taskList struct {
	Items []domain.Task `json:"items"`
}

type boardResponse struct {
	ReferenceDate string                  `json:"reference_date"`
	Columns       []boardColumnResponse   `json:"columns"`
	Lanes         map[string][]domain.Task `json:"lanes"`
}

type boardColumnResponse struct {
	Lane            domain.TaskLane `json:"lane"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	AccentColor     string          `json:"accent_color"`
	Icon            string          `json:"icon"`
	Total           int             `json:"total"`
	Completed       int             `json:"completed"`
	Active          int             `json:"active"`
	CompletionRatio float64         `json:"completion_ratio"`
	Tasks           []domain.Task   `json:"tasks"`
}

func boardColumn(c domain.TaskBoardColumn) boardColumnResponse {
	return boardColumnResponse{
		Lane:            c.Lane,
		Title:           c.Title,
		Description:     c.Description,
		AccentColor:     c.AccentColor,
		Icon:            c.Icon,
		Total:           c.TotalTasks(),
		Completed:       c.CompletedTasks(),
		Active:          c.ActiveTasks(),
		CompletionRatio: c.CompletionRatio(),
		Tasks:           c.Tasks,
	}
}

type NoteRequest struct {
	Title   string  `json:"title"`
	Content *string `json:"content,omitempty"`
	Tag     *string `json:"tag,omitempty"`
}

type noteList struct {
	Items []domain.Note `json:"items"`
}

type eventList struct {
	Items []domain.Event `json:"items"`
}
