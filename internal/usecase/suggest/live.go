package suggest

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/intentsearch/internal/debounce"
)

// DefaultDebounce is the quiet window before a keystroke burst is answered.
const DefaultDebounce = 300 * time.Millisecond

// EmitFunc receives the suggestions computed for partial.
type EmitFunc func(partial string, suggestions []Suggestion)

// LiveSession answers a stream of keystrokes with debounced suggestions.
// Only the last input of a burst is looked up; input shorter than the
// provider's minimum cancels pending work and emits an empty list at once.
// A lookup still running when newer input arrives is discarded.
type LiveSession struct {
	ctx      context.Context
	provider *Provider
	device   string
	deb      *debounce.Debouncer
	emit     EmitFunc
	closed   atomic.Bool

	mu  sync.Mutex // guards gen and serializes emit
	gen uint64
}

// NewLiveSession binds a provider to one connection. ctx bounds the lookups;
// a nil scheduler uses real timers.
func NewLiveSession(
	ctx context.Context, provider *Provider, device string,
	sched debounce.Scheduler, delay time.Duration, emit EmitFunc,
) *LiveSession {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &LiveSession{
		ctx:      ctx,
		provider: provider,
		device:   device,
		deb:      debounce.New(sched, delay),
		emit:     emit,
	}
}

// Input records a keystroke.
func (l *LiveSession) Input(partial string) {
	if l.closed.Load() {
		return
	}
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if utf8.RuneCountInString(strings.TrimSpace(partial)) < l.provider.MinChars() {
		l.deb.Cancel()
		l.emit(partial, []Suggestion{})
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	l.deb.Trigger(func() {
		if l.ctx.Err() != nil {
			return
		}
		suggestions := l.provider.Suggest(l.ctx, l.device, partial)

		l.mu.Lock()
		defer l.mu.Unlock()
		if gen != l.gen || l.closed.Load() {
			return
		}
		l.emit(partial, suggestions)
	})
}

// Close stops pending lookups. Later input is ignored.
func (l *LiveSession) Close() {
	l.closed.Store(true)
	l.deb.Stop()
}
