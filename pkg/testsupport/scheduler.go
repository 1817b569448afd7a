package testsupport

import (
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// ManualScheduler is a wizard.Scheduler driven by the test. Callbacks only run
// when Advance moves the virtual clock past their deadline.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	scheduler *ManualScheduler
	id        int
	at        time.Duration
	fn        func()
	stopped   bool
	fired     bool
}

// Ensure the implementation satisfies the wizard contract.
var _ wizard.Scheduler = (*ManualScheduler)(nil)

// NewManualScheduler returns a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc registers fn to run d after the current virtual time.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) wizard.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task := &manualTask{scheduler: s, id: s.seq, at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, task)
	return task
}

// Advance moves the clock forward by d and runs every due callback in
// deadline order. Callbacks run without the scheduler lock held.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	target := s.now
	s.mu.Unlock()

	ran := 0
	for {
		task := s.nextDue(target)
		if task == nil {
			return ran
		}
		task.fn()
		ran++
	}
}

// Pending reports how many callbacks are scheduled and not stopped.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, task := range s.tasks {
		if !task.stopped && !task.fired {
			count++
		}
	}
	return count
}

func (s *ManualScheduler) nextDue(target time.Duration) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []*manualTask
	for _, task := range s.tasks {
		if !task.stopped && !task.fired && task.at <= target {
			due = append(due, task)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at == due[j].at {
			return due[i].id < due[j].id
		}
		return due[i].at < due[j].at
	})
	due[0].fired = true
	return due[0]
}

func (t *manualTask) Stop() bool {
	t.scheduler.mu.Lock()
	defer t.scheduler.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
