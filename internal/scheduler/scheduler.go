// Package scheduler runs the background reminder scanner. It polls the task
// store through a narrow two-method port so it can be tested against an
// in-memory fake, and fans reminders out to registered listeners with
// per-listener fault isolation.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"smartdesk/internal/domain"
)

// DefaultScanInterval is used until SetScanInterval overrides it.
const DefaultScanInterval = time.Minute

// MinScanInterval bounds storage load from the polling loop.
const MinScanInterval = time.Minute

// TaskQuerySupport is the reminder query port implemented by the engine.
type TaskQuerySupport interface {
	FetchTasksRequiringReminder(ctx context.Context, referenceTime time.Time) []domain.Task
	MarkReminderTriggered(ctx context.Context, task domain.Task, reminderTime time.Time) error
}

// Listener receives one callback per fired reminder. Implementations must be
// comparable values (typically struct pointers) so they can be removed again.
type Listener interface {
	OnReminder(task domain.Task, remainingUntilDue time.Duration)
}

// ReminderScheduler polls for due reminders on a dedicated goroutine. Start
// is restart-safe, SetScanInterval atomically reschedules a running loop and
// Close is terminal.
type ReminderScheduler struct {
	port TaskQuerySupport
	Now  func() time.Time

	mu        sync.Mutex
	interval  time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closed    bool
	listeners []Listener
}

func New(port TaskQuerySupport) *ReminderScheduler {
	return &ReminderScheduler{
		port:     port,
		Now:      time.Now,
		interval: DefaultScanInterval,
	}
}

func (s *ReminderScheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SetScanInterval configures the polling period. Intervals below one minute
// are rejected. A running scheduler is rescheduled immediately.
func (s *ReminderScheduler) SetScanInterval(interval time.Duration) error {
	if interval < MinScanInterval {
		return domain.ValidationError{Field: "scan_interval", Reason: "must be at least one minute"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = interval
	if s.stopCh != nil {
		s.restartLocked()
	}
	return nil
}

// Start begins polling: one scan fires immediately, then one per interval.
// Calling Start on a running scheduler simply restarts the cycle.
func (s *ReminderScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		log.Printf("scheduler: start ignored after close")
		return
	}
	s.restartLocked()
}

func (s *ReminderScheduler) restartLocked() {
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	stop := make(chan struct{})
	s.stopCh = stop
	s.wg.Add(1)
	go s.run(stop, s.interval)
}

func (s *ReminderScheduler) run(stop chan struct{}, interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.ScanOnce(context.Background())
	for {
		select {
		case <-ticker.C:
			s.ScanOnce(context.Background())
		case <-stop:
			return
		}
	}
}

// ScanOnce executes a single scan cycle. Any panic escaping the cycle is
// caught and logged so the timer keeps firing on schedule.
func (s *ReminderScheduler) ScanOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: reminder scan failed: %v", r)
		}
	}()
	now := s.now()
	for _, task := range s.port.FetchTasksRequiringReminder(ctx, now) {
		remaining := time.Duration(0)
		if task.DueAt != nil {
			remaining = task.DueAt.Sub(now)
			if remaining < 0 {
				remaining = 0
			}
		}
		s.notifyListeners(task, remaining)
		if err := s.port.MarkReminderTriggered(ctx, task, now); err != nil {
			log.Printf("scheduler: mark reminder triggered: %v", err)
		}
	}
}

// notifyListeners fans out to a snapshot of the listener set, so concurrent
// add/remove never corrupts an in-flight iteration. A panicking listener is
// logged and does not affect its siblings.
func (s *ReminderScheduler) notifyListeners(task domain.Task, remaining time.Duration) {
	s.mu.Lock()
	snapshot := make([]Listener, len(s.listeners))
	copy(snapshot, s.listeners)
	s.mu.Unlock()
	for _, listener := range snapshot {
		notify(listener, task, remaining)
	}
}

func notify(listener Listener, task domain.Task, remaining time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: reminder listener failed: %v", r)
		}
	}()
	listener.OnReminder(task, remaining)
}

func (s *ReminderScheduler) AddReminderListener(listener Listener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.listeners {
		if existing == listener {
			return
		}
	}
	s.listeners = append(s.listeners, listener)
}

func (s *ReminderScheduler) RemoveReminderListener(listener Listener) {
	if listener == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.listeners {
		if existing == listener {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Close cancels pending and future scans. The scheduler cannot be restarted
// afterwards.
func (s *ReminderScheduler) Close() {
	s.mu.Lock()
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}
