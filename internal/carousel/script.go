package carousel

import (
	"context"
	"sync"
	"time"
)

// ScriptState is the lifecycle state of the shared embed script.
type ScriptState int

const (
	// ScriptUnloaded means no load has been requested yet.
	ScriptUnloaded ScriptState = iota

	// ScriptLoading means a load is in flight; waiters block until it
	// completes.
	ScriptLoading

	// ScriptLoaded means the script is ready and re-scans can run.
	ScriptLoaded
)

func (s ScriptState) String() string {
	switch s {
	case ScriptUnloaded:
		return "unloaded"
	case ScriptLoading:
		return "loading"
	case ScriptLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// LoadFunc performs the actual script load. It is invoked at most once per
// loader regardless of how many carousels request the script.
type LoadFunc func(ctx context.Context) error

// RescanFunc asks the loaded script to scan for un-upgraded embeds.
type RescanFunc func()

// ScriptLoader manages the shared embed script: a single load shared by all
// carousel instances, waiters signalled on completion, and deferred re-scan
// scheduling. A failed load returns the loader to unloaded so a later
// request can retry.
type ScriptLoader struct {
	mu     sync.Mutex
	cond   *sync.Cond
	state  ScriptState
	load   LoadFunc
	rescan RescanFunc

	// timers tracks pending re-scan timers so Stop can cancel them.
	timers map[*time.Timer]struct{}
}

// NewScriptLoader creates a loader. rescan may be nil when no re-scan hook
// is needed.
func NewScriptLoader(load LoadFunc, rescan RescanFunc) *ScriptLoader {
	l := &ScriptLoader{
		load:   load,
		rescan: rescan,
		timers: make(map[*time.Timer]struct{}),
	}
	l.cond = sync.NewCond(&l.mu)

	return l
}

// State returns the current lifecycle state.
func (l *ScriptLoader) State() ScriptState {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.state
}

// EnsureLoaded makes sure the script is loaded, blocking until it is. The
// first caller performs the load; concurrent callers wait for its outcome.
// When the load fails, the state returns to unloaded and the error is
// delivered to the caller that initiated that load; waiters observe the
// reset state and one of them retries.
func (l *ScriptLoader) EnsureLoaded(ctx context.Context) error {
	for {
		l.mu.Lock()

		switch l.state {
		case ScriptLoaded:
			l.mu.Unlock()
			return nil

		case ScriptLoading:
			// Wake on any state change, then re-evaluate. The
			// context is checked between waits so a cancelled
			// caller does not sleep forever.
			done := make(chan struct{})
			go func() {
				defer close(done)

				l.cond.L.Lock()
				for l.state == ScriptLoading {
					l.cond.Wait()
				}
				l.cond.L.Unlock()
			}()
			l.mu.Unlock()

			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}

		case ScriptUnloaded:
			l.state = ScriptLoading
			l.mu.Unlock()

			err := l.load(ctx)

			l.mu.Lock()
			if err != nil {
				l.state = ScriptUnloaded
			} else {
				l.state = ScriptLoaded
			}
			l.cond.Broadcast()
			l.mu.Unlock()

			if err != nil {
				return err
			}

			return nil
		}
	}
}

// ScheduleRescan schedules one re-scan per delay. Scans scheduled before the
// script finishes loading are dropped when they fire against a non-loaded
// script, matching the behaviour of scanning with nothing to run.
func (l *ScriptLoader) ScheduleRescan(delays ...time.Duration) {
	if l.rescan == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, delay := range delays {
		var timer *time.Timer

		timer = time.AfterFunc(delay, func() {
			l.mu.Lock()
			delete(l.timers, timer)
			ready := l.state == ScriptLoaded
			l.mu.Unlock()

			if ready {
				l.rescan()
			}
		})

		l.timers[timer] = struct{}{}
	}
}

// Stop cancels all pending re-scan timers.
func (l *ScriptLoader) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for timer := range l.timers {
		timer.Stop()
		delete(l.timers, timer)
	}
}
