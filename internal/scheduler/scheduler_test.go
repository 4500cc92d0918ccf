package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smartdesk/internal/domain"
	"smartdesk/internal/scheduler"
)

type fakePort struct {
	mu      sync.Mutex
	pending []domain.Task
	marked  []int64
	markErr error
	order   []string
}

func (p *fakePort) FetchTasksRequiringReminder(ctx context.Context, ref time.Time) []domain.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Task, len(p.pending))
	copy(out, p.pending)
	return out
}

func (p *fakePort) MarkReminderTriggered(ctx context.Context, task domain.Task, ts time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if task.ID != nil {
		p.marked = append(p.marked, *task.ID)
	}
	p.order = append(p.order, "mark")
	return p.markErr
}

func (p *fakePort) recordNotify() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.order = append(p.order, "notify")
}

type recordingListener struct {
	mu    sync.Mutex
	fired []domain.Task
	port  *fakePort
}

func (l *recordingListener) OnReminder(task domain.Task, remaining time.Duration) {
	if l.port != nil {
		l.port.recordNotify()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fired = append(l.fired, task)
}

type panickingListener struct{}

func (panickingListener) OnReminder(domain.Task, time.Duration) {
	panic("listener exploded")
}

func pendingTask(id int64, due time.Time) domain.Task {
	return domain.Task{
		ID:              &id,
		Title:           "pending",
		DueAt:           &due,
		ReminderEnabled: true,
		Status:          domain.StatusPlanned,
	}
}

func TestScanNotifiesBeforeMarking(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	port := &fakePort{pending: []domain.Task{pendingTask(1, now.Add(10 * time.Minute))}}
	listener := &recordingListener{port: port}

	s := scheduler.New(port)
	s.Now = func() time.Time { return now }
	s.AddReminderListener(listener)
	s.ScanOnce(context.Background())

	if len(listener.fired) != 1 || listener.fired[0].Title != "pending" {
		t.Fatalf("fired: %+v", listener.fired)
	}
	if len(port.marked) != 1 || port.marked[0] != 1 {
		t.Fatalf("marked: %v", port.marked)
	}
	if len(port.order) != 2 || port.order[0] != "notify" || port.order[1] != "mark" {
		t.Fatalf("listeners must run before the mark: %v", port.order)
	}
}

func TestScanComputesRemainingTime(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	overdueBy := now.Add(-time.Hour)
	port := &fakePort{pending: []domain.Task{pendingTask(1, overdueBy)}}

	var got time.Duration = -1
	listener := &captureListener{capture: func(_ domain.Task, remaining time.Duration) { got = remaining }}
	s := scheduler.New(port)
	s.Now = func() time.Time { return now }
	s.AddReminderListener(listener)
	s.ScanOnce(context.Background())

	// past-due tasks report zero remaining, never negative
	if got != 0 {
		t.Fatalf("remaining = %v", got)
	}
}

type captureListener struct {
	capture func(domain.Task, time.Duration)
}

func (l *captureListener) OnReminder(task domain.Task, remaining time.Duration) {
	l.capture(task, remaining)
}

func TestPanickingListenerDoesNotStopSiblings(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	port := &fakePort{pending: []domain.Task{pendingTask(1, now.Add(time.Minute))}}
	healthy := &recordingListener{}

	s := scheduler.New(port)
	s.Now = func() time.Time { return now }
	s.AddReminderListener(panickingListener{})
	s.AddReminderListener(healthy)
	s.ScanOnce(context.Background())

	if len(healthy.fired) != 1 {
		t.Fatalf("healthy listener should still fire: %+v", healthy.fired)
	}
	if len(port.marked) != 1 {
		t.Fatalf("reminder should still be marked: %v", port.marked)
	}
}

func TestMarkFailureDoesNotStopScan(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	port := &fakePort{
		pending: []domain.Task{
			pendingTask(1, now.Add(time.Minute)),
			pendingTask(2, now.Add(2*time.Minute)),
		},
		markErr: errors.New("disk full"),
	}
	listener := &recordingListener{}
	s := scheduler.New(port)
	s.Now = func() time.Time { return now }
	s.AddReminderListener(listener)
	s.ScanOnce(context.Background())

	if len(listener.fired) != 2 {
		t.Fatalf("both reminders should fire despite mark errors: %+v", listener.fired)
	}
}

func TestSetScanIntervalRejectsSubMinute(t *testing.T) {
	s := scheduler.New(&fakePort{})
	err := s.SetScanInterval(30 * time.Second)
	var verr domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := s.SetScanInterval(time.Minute); err != nil {
		t.Fatalf("one minute must be accepted: %v", err)
	}
}

func TestAddRemoveListeners(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	port := &fakePort{pending: []domain.Task{pendingTask(1, now.Add(time.Minute))}}
	a := &recordingListener{}
	b := &recordingListener{}

	s := scheduler.New(port)
	s.Now = func() time.Time { return now }
	s.AddReminderListener(a)
	s.AddReminderListener(a) // duplicate registration is a no-op
	s.AddReminderListener(b)
	s.RemoveReminderListener(b)
	s.ScanOnce(context.Background())

	if len(a.fired) != 1 {
		t.Fatalf("a fired %d times", len(a.fired))
	}
	if len(b.fired) != 0 {
		t.Fatalf("removed listener must not fire")
	}
}

func TestStartScansImmediately(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.Local)
	port := &fakePort{pending: []domain.Task{pendingTask(1, now.Add(time.Minute))}}
	fired := make(chan struct{}, 1)
	listener := &captureListener{capture: func(domain.Task, time.Duration) {
		select {
		case fired <- struct{}{}:
		default:
		}
	}}

	s := scheduler.New(port)
	s.Now = func() time.Time { return now }
	s.AddReminderListener(listener)
	s.Start()
	defer s.Close()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("start should trigger an immediate scan")
	}
}

func TestCloseIsTerminal(t *testing.T) {
	port := &fakePort{}
	s := scheduler.New(port)
	s.Start()
	s.Close()
	// a closed scheduler ignores further starts instead of panicking
	s.Start()
	s.Close()
}
