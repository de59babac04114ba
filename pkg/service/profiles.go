package service

import (
	"sync"
	"time"

	"github.com/blueline-project/blueline-go/pkg/log"
)

// Profile is a dependent profile service whose lifetime is bound to the
// adapter's user-visible on state. Stop may block while the profile winds
// down; the runner calls it off the state machine worker.
type Profile interface {
	Name() string
	Start() error
	Stop() error
}

// StopSink is told when all running profiles finished stopping. The
// Manager turns this into a STOPPED event.
type StopSink interface {
	ProfilesStopped()
}

// ProfileRunner starts and stops the dependent profile services.
type ProfileRunner struct {
	mu       sync.Mutex
	profiles []Profile
	running  map[string]bool

	sink   StopSink
	logger log.Logger
}

// NewProfileRunner creates a runner for the given profiles.
func NewProfileRunner(sink StopSink, logger log.Logger, profiles ...Profile) *ProfileRunner {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &ProfileRunner{
		profiles: profiles,
		running:  make(map[string]bool),
		sink:     sink,
		logger:   logger,
	}
}

// StartAll starts every profile that is not already running. Individual
// start failures are logged and skipped.
func (r *ProfileRunner) StartAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if r.running[p.Name()] {
			continue
		}
		if err := p.Start(); err != nil {
			r.logError("start "+p.Name(), err.Error())
			continue
		}
		r.running[p.Name()] = true
	}
}

// StopAll begins stopping every running profile. It returns true when a
// stop is in progress, in which case the sink is notified once all
// profiles are down; false means nothing was running. A profile whose
// Stop never returns leaves the sink unnotified, which the state machine
// resolves through its stop timeout.
func (r *ProfileRunner) StopAll() bool {
	r.mu.Lock()
	var stopping []Profile
	for _, p := range r.profiles {
		if r.running[p.Name()] {
			stopping = append(stopping, p)
			delete(r.running, p.Name())
		}
	}
	r.mu.Unlock()

	if len(stopping) == 0 {
		return false
	}

	go func() {
		for _, p := range stopping {
			if err := p.Stop(); err != nil {
				r.logError("stop "+p.Name(), err.Error())
			}
		}
		r.sink.ProfilesStopped()
	}()
	return true
}

// Running returns the names of the profiles currently running.
func (r *ProfileRunner) Running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, p := range r.profiles {
		if r.running[p.Name()] {
			out = append(out, p.Name())
		}
	}
	return out
}

func (r *ProfileRunner) logError(op, msg string) {
	r.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentService,
		Category:  log.CategoryError,
		Error:     &log.ErrorEvent{Op: op, Message: msg},
	})
}
