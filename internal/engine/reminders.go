package engine

import (
	"context"
	"log"
	"time"

	"smartdesk/internal/domain"
	"smartdesk/internal/events"
)

// FetchTasksRequiringReminder returns every task whose reminder window has
// opened and has not fired inside that window yet. Query failures degrade to
// an empty result; the next scan retries naturally.
func (e Engine) FetchTasksRequiringReminder(ctx context.Context, referenceTime time.Time) []domain.Task {
	candidates, err := e.Repo.ListReminderCandidates(ctx)
	if err != nil {
		log.Printf("engine: fetch reminder candidates failed: %v", err)
		return []domain.Task{}
	}
	due := []domain.Task{}
	for _, task := range candidates {
		if shouldTriggerReminder(task, referenceTime) {
			due = append(due, task)
		}
	}
	return due
}

// shouldTriggerReminder applies the reminder window test:
//
//	windowStart = due - lead
//	eligible    = ref >= windowStart AND (lastReminded absent OR < windowStart)
//
// Once last_reminded_at lands at or after windowStart the window never
// re-fires; a rescheduled due date produces a new windowStart and re-arms.
func shouldTriggerReminder(task domain.Task, referenceTime time.Time) bool {
	if !task.ReminderEnabled {
		return false
	}
	if task.Status == domain.StatusCompleted || task.Status == domain.StatusCancelled {
		return false
	}
	windowStart := task.ReminderWindowStart()
	if windowStart == nil {
		return false
	}
	if referenceTime.Before(*windowStart) {
		return false
	}
	return task.LastRemindedAt == nil || task.LastRemindedAt.Before(*windowStart)
}

// MarkReminderTriggered stamps last_reminded_at and updated_at for a fired
// reminder. No other field changes; in particular the reminder stays armed
// for future due dates.
func (e Engine) MarkReminderTriggered(ctx context.Context, task domain.Task, reminderTime time.Time) error {
	if task.ID == nil {
		return nil
	}
	if err := e.Repo.MarkReminderTriggered(ctx, *task.ID, reminderTime); err != nil {
		return err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Events.Append(ctx, tx, "task.reminder.triggered", "task", itoa(*task.ID), events.EventPayload{
		"reminded_at": reminderTime.Format(domain.TimeLayout),
	}); err != nil {
		return err
	}
	return tx.Commit()
}
