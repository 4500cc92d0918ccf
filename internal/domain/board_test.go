package domain_test

import (
	"testing"

	"smartdesk/internal/domain"
)

func mustTask(t *testing.T, title string, status domain.TaskStatus) domain.Task {
	t.Helper()
	task, err := domain.NewTaskBuilder().WithTitle(title).WithStatus(status).Build()
	if err != nil {
		t.Fatalf("build %s: %v", title, err)
	}
	return task
}

func TestBoardColumnCounts(t *testing.T) {
	tasks := []domain.Task{
		mustTask(t, "a", domain.StatusPlanned),
		mustTask(t, "b", domain.StatusInProgress),
		mustTask(t, "c", domain.StatusCompleted),
		mustTask(t, "d", domain.StatusCancelled),
	}
	col := domain.BoardColumnForLane(domain.LaneToday, tasks)
	if col.TotalTasks() != 4 {
		t.Fatalf("total = %d", col.TotalTasks())
	}
	if col.CompletedTasks() != 1 {
		t.Fatalf("completed = %d", col.CompletedTasks())
	}
	if col.ActiveTasks() != 2 {
		t.Fatalf("active = %d", col.ActiveTasks())
	}
	if ratio := col.CompletionRatio(); ratio != 0.25 {
		t.Fatalf("ratio = %f", ratio)
	}
}

func TestEmptyBoardColumnRatioIsZero(t *testing.T) {
	col := domain.BoardColumnForLane(domain.LaneSomeday, nil)
	if col.Tasks == nil {
		t.Fatalf("tasks must never be nil")
	}
	if col.CompletionRatio() != 0 {
		t.Fatalf("empty column ratio must be 0, got %f", col.CompletionRatio())
	}
}

func TestBoardColumnCarriesLaneMetadata(t *testing.T) {
	col := domain.BoardColumnForLane(domain.LaneOverdue, nil)
	info := domain.LaneOverdue.Info()
	if col.Title != info.DisplayName || col.AccentColor != info.AccentColor || col.Icon != info.Icon {
		t.Fatalf("metadata mismatch: %+v", col)
	}
}

func TestSnapshotBoardColumnsOrder(t *testing.T) {
	snapshot := domain.DashboardSnapshot{Lanes: map[domain.TaskLane][]domain.Task{}}
	columns := snapshot.BoardColumns()
	lanes := domain.Lanes()
	if len(columns) != len(lanes) {
		t.Fatalf("expected %d columns, got %d", len(lanes), len(columns))
	}
	for i, col := range columns {
		if col.Lane != lanes[i] {
			t.Fatalf("column %d lane = %s, want %s", i, col.Lane, lanes[i])
		}
		if col.Tasks == nil {
			t.Fatalf("column %s tasks must not be nil", col.Lane)
		}
	}
}
