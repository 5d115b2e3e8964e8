// Package debouncetest provides a virtual-clock debounce.Scheduler for tests.
package debouncetest

import (
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/intentsearch/internal/debounce"
)

var _ debounce.Scheduler = (*ManualScheduler)(nil)

// ManualScheduler is a debounce.Scheduler driven by Advance instead of wall time.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
	done      bool
	owner     *ManualScheduler
}

func (t *manualTask) Cancel() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.done || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule records fn to run once virtual time reaches now+delay.
func (m *ManualScheduler) Schedule(fn func(), delay time.Duration) debounce.CancelToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{due: m.now + delay, seq: m.seq, fn: fn, owner: m}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves virtual time forward and runs every task that became due, in due order.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	var due []*manualTask
	rest := m.tasks[:0]
	for _, t := range m.tasks {
		switch {
		case t.cancelled:
		case t.due <= m.now:
			t.done = true
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	m.tasks = rest
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.fn()
	}
}

// Pending returns the number of scheduled, not yet run or cancelled tasks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
