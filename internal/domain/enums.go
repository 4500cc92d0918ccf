package domain

import "fmt"

// TaskPriority is persisted as its numeric level (1..5).
type TaskPriority int

const (
	PriorityLow TaskPriority = iota + 1
	PriorityNormal
	PriorityHigh
	PriorityUrgent
	PriorityCritical
)

// Level returns the numeric priority level stored in the database.
func (p TaskPriority) Level() int { return int(p) }

func (p TaskPriority) Valid() bool {
	return p >= PriorityLow && p <= PriorityCritical
}

func (p TaskPriority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityNormal:
		return "NORMAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityUrgent:
		return "URGENT"
	case PriorityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("TaskPriority(%d)", int(p))
	}
}

// PriorityFromLevel resolves a stored numeric level. Values outside the
// supported range fall back to NORMAL.
func PriorityFromLevel(level int) TaskPriority {
	p := TaskPriority(level)
	if !p.Valid() {
		return PriorityNormal
	}
	return p
}

// ParsePriority resolves a priority by name, case-sensitive.
func ParsePriority(name string) (TaskPriority, error) {
	for p := PriorityLow; p <= PriorityCritical; p++ {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", name)
}

// TaskStatus is a lifecycle state, persisted by name.
type TaskStatus string

const (
	StatusPlanned    TaskStatus = "PLANNED"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
	StatusCancelled  TaskStatus = "CANCELLED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TaskType is the high-level category a task belongs to, persisted by name.
type TaskType string

const (
	TypeTodo        TaskType = "TODO"
	TypeCourse      TaskType = "COURSE"
	TypeAnniversary TaskType = "ANNIVERSARY"
	TypeEvent       TaskType = "EVENT"
)

func (t TaskType) Valid() bool {
	switch t {
	case TypeTodo, TypeCourse, TypeAnniversary, TypeEvent:
		return true
	}
	return false
}
