package domain

import "time"

// TaskBoardColumn pairs a lane with its classified task list for one
// dashboard build. The column carries the lane's display metadata so UI
// layers can render it directly.
type TaskBoardColumn struct {
	Lane        TaskLane `json:"lane"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	AccentColor string   `json:"accent_color"`
	Icon        string   `json:"icon"`
	Tasks       []Task   `json:"tasks"`
}

// BoardColumnForLane fills the column metadata from the lane definition.
func BoardColumnForLane(lane TaskLane, tasks []Task) TaskBoardColumn {
	info := lane.Info()
	if tasks == nil {
		tasks = []Task{}
	}
	return TaskBoardColumn{
		Lane:        lane,
		Title:       info.DisplayName,
		Description: info.Description,
		AccentColor: info.AccentColor,
		Icon:        info.Icon,
		Tasks:       tasks,
	}
}

func (c TaskBoardColumn) TotalTasks() int { return len(c.Tasks) }

func (c TaskBoardColumn) CompletedTasks() int {
	n := 0
	for _, t := range c.Tasks {
		if t.Status == StatusCompleted {
			n++
		}
	}
	return n
}

func (c TaskBoardColumn) ActiveTasks() int {
	n := 0
	for _, t := range c.Tasks {
		if t.Status != StatusCompleted && t.Status != StatusCancelled {
			n++
		}
	}
	return n
}

// CompletionRatio is in [0.0, 1.0]; an empty column reports 0 rather than NaN.
func (c TaskBoardColumn) CompletionRatio() float64 {
	total := c.TotalTasks()
	if total == 0 {
		return 0
	}
	return float64(c.CompletedTasks()) / float64(total)
}

// DashboardSnapshot maps every lane to its classified tasks for one
// (referenceDate, upcomingDays) pair. Snapshots are computed fresh per
// request and never cached.
type DashboardSnapshot struct {
	ReferenceDate time.Time           `json:"reference_date"`
	Lanes         map[TaskLane][]Task `json:"lanes"`
}

// Tasks returns the classified list for a lane, never nil.
func (s DashboardSnapshot) Tasks(lane TaskLane) []Task {
	if tasks, ok := s.Lanes[lane]; ok {
		return tasks
	}
	return []Task{}
}

// BoardColumns converts the snapshot into ordered columns with lane metadata.
func (s DashboardSnapshot) BoardColumns() []TaskBoardColumn {
	columns := make([]TaskBoardColumn, 0, len(s.Lanes))
	for _, lane := range Lanes() {
		columns = append(columns, BoardColumnForLane(lane, s.Tasks(lane)))
	}
	return columns
}

// BoardColumn builds a single column, handy when only one lane refreshes.
func (s DashboardSnapshot) BoardColumn(lane TaskLane) TaskBoardColumn {
	return BoardColumnForLane(lane, s.Tasks(lane))
}
