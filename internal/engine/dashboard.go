package engine

import (
	"context"
	"time"

	"smartdesk/internal/domain"
)

// BuildDashboard classifies every non-cancelled task into exactly one lane
// for the given reference date. Precedence puts completion and the special
// task types ahead of pure date bucketing, so a completed course task lands
// in COMPLETED, never COURSE. The result always contains every lane.
func (e Engine) BuildDashboard(ctx context.Context, referenceDate time.Time, upcomingDays int) (domain.DashboardSnapshot, error) {
	if upcomingDays < 0 {
		return domain.DashboardSnapshot{}, domain.ValidationError{Field: "upcomingDays", Reason: "must not be negative"}
	}

	lanes := make(map[domain.TaskLane][]domain.Task, len(domain.Lanes()))
	for _, lane := range domain.Lanes() {
		lanes[lane] = []domain.Task{}
	}

	todayStart := startOfDay(referenceDate)
	todayEnd := endOfDay(referenceDate)
	upcomingLimit := endOfDay(referenceDate.AddDate(0, 0, upcomingDays))

	for _, task := range e.ListAllTasks(ctx) {
		lane, ok := classify(task, todayStart, todayEnd, upcomingLimit)
		if !ok {
			continue
		}
		lanes[lane] = append(lanes[lane], task)
	}

	for lane := range lanes {
		sortTasks(lanes[lane])
	}

	return domain.DashboardSnapshot{ReferenceDate: todayStart, Lanes: lanes}, nil
}

// classify resolves a task's lane; cancelled tasks report ok=false and are
// excluded from the dashboard entirely.
func classify(task domain.Task, todayStart, todayEnd, upcomingLimit time.Time) (domain.TaskLane, bool) {
	switch {
	case task.Status == domain.StatusCancelled:
		return "", false
	case task.Status == domain.StatusCompleted:
		return domain.LaneCompleted, true
	case task.Type == domain.TypeCourse:
		return domain.LaneCourse, true
	case task.Type == domain.TypeAnniversary:
		return domain.LaneAnniversary, true
	case task.DueAt == nil:
		return domain.LaneSomeday, true
	case task.DueAt.Before(todayStart):
		return domain.LaneOverdue, true
	case !task.DueAt.After(todayEnd):
		return domain.LaneToday, true
	case !task.DueAt.After(upcomingLimit):
		return domain.LaneUpcoming, true
	default:
		return domain.LaneSomeday, true
	}
}

// BuildBoard augments the dashboard with per-lane display metadata, ordered
// for direct consumption by a board view.
func (e Engine) BuildBoard(ctx context.Context, referenceDate time.Time, upcomingDays int) ([]domain.TaskBoardColumn, error) {
	snapshot, err := e.BuildDashboard(ctx, referenceDate, upcomingDays)
	if err != nil {
		return nil, err
	}
	return snapshot.BoardColumns(), nil
}

// BuildBoardLane builds a single column, handy when only one lane refreshes.
func (e Engine) BuildBoardLane(ctx context.Context, lane domain.TaskLane, referenceDate time.Time, upcomingDays int) (domain.TaskBoardColumn, error) {
	snapshot, err := e.BuildDashboard(ctx, referenceDate, upcomingDays)
	if err != nil {
		return domain.TaskBoardColumn{}, err
	}
	return snapshot.BoardColumn(lane), nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
