package domain

// TaskLane is a derived dashboard bucket, never persisted.
type TaskLane string

const (
	LaneToday       TaskLane = "TODAY"
	LaneUpcoming    TaskLane = "UPCOMING"
	LaneSomeday     TaskLane = "SOMEDAY"
	LaneCourse      TaskLane = "COURSE"
	LaneAnniversary TaskLane = "ANNIVERSARY"
	LaneOverdue     TaskLane = "OVERDUE"
	LaneCompleted   TaskLane = "COMPLETED"
)

// Lanes returns every lane in board display order.
func Lanes() []TaskLane {
	return []TaskLane{
		LaneOverdue,
		LaneToday,
		LaneUpcoming,
		LaneSomeday,
		LaneCourse,
		LaneAnniversary,
		LaneCompleted,
	}
}

// LaneInfo is static presentation metadata for a lane.
type LaneInfo struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	AccentColor string `json:"accent_color"`
	Icon        string `json:"icon"`
}

var laneInfos = map[TaskLane]LaneInfo{
	LaneToday:       {"Today", "Tasks that must be finished or started today", "#ff7a45", "calendar-today"},
	LaneUpcoming:    {"Upcoming", "Tasks that need attention in the coming days", "#40a9ff", "calendar"},
	LaneSomeday:     {"Someday", "Ideas and long-term goals without a scheduled date", "#595959", "inbox"},
	LaneCourse:      {"Courses", "Tasks tied to courses or study plans", "#73d13d", "book"},
	LaneAnniversary: {"Anniversaries", "Anniversaries, birthdays and other special reminders", "#9254de", "gift"},
	LaneOverdue:     {"Overdue", "Tasks past their due date and still unfinished", "#f5222d", "alert"},
	LaneCompleted:   {"Completed", "Archive of everything marked as done", "#52c41a", "check-circle"},
}

func (l TaskLane) Info() LaneInfo {
	return laneInfos[l]
}
