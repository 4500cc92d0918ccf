// Package notify holds the reminder listeners that surface fired reminders:
// a log notifier for the foreground CLI and a webhook notifier that posts to
// configured HTTP targets.
package notify

import (
	"fmt"
	"io"
	"time"

	"smartdesk/internal/domain"
)

// LogNotifier prints fired reminders to a writer, used by `smartdesk remind`.
type LogNotifier struct {
	Out io.Writer
}

func NewLogNotifier(out io.Writer) *LogNotifier {
	return &LogNotifier{Out: out}
}

func (n *LogNotifier) OnReminder(task domain.Task, remaining time.Duration) {
	due := "no due date"
	if task.DueAt != nil {
		due = task.DueAt.Format("2006-01-02 15:04")
	}
	fmt.Fprintf(n.Out, "reminder: %s (due %s, %s remaining)\n",
		task.Title, due, remaining.Round(time.Second))
}
