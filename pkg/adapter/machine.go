package adapter

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/blueline-project/blueline-go/pkg/event"
	"github.com/blueline-project/blueline-go/pkg/log"
)

// Config holds state machine configuration.
type Config struct {
	// Timeouts for the guarded hardware steps. Zero fields fall back to
	// defaults.
	Timeouts Timeouts

	// Logger receives dispatch, transition and error events. Defaults to
	// NoopLogger.
	Logger log.Logger

	// Fatal is invoked for unrecoverable timeout outcomes. Defaults to a
	// no-op; the composition root should map it to process termination.
	Fatal FatalFunc
}

// Machine is the adapter power state machine. Construct it with NewMachine,
// feed it through Send/SendDelayed, and drive its lifecycle with Start,
// Quit and Cleanup. All event processing happens on a single worker
// goroutine.
type Machine struct {
	queue    *event.Queue
	timeouts Timeouts
	logger   log.Logger
	fatal    FatalFunc

	// Revocable collaborator set. Nil after Cleanup.
	collab atomic.Pointer[Collaborators]

	// mu guards the fields below; the worker writes them, external
	// callers read them through IsTurningOn/IsTurningOff/CurrentState.
	mu         sync.Mutex
	state      State
	turningOn  bool
	turningOff bool
	userOp     bool

	// fatalFired is touched only by the worker.
	fatalFired bool

	started atomic.Bool
	wg      sync.WaitGroup
}

// NewMachine creates a state machine in the off state with the given
// collaborators. The machine does not process events until Start is called.
func NewMachine(collab Collaborators, cfg Config) *Machine {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	fatal := cfg.Fatal
	if fatal == nil {
		fatal = func(string) {}
	}

	m := &Machine{
		queue:    event.NewQueue(),
		timeouts: cfg.Timeouts.withDefaults(),
		logger:   logger,
		fatal:    fatal,
		state:    StateOff,
	}
	m.collab.Store(&collab)
	return m
}

// Start reports the initial off state to the owner and launches the worker.
// Calling Start more than once has no effect.
func (m *Machine) Start() {
	if m.started.Swap(true) {
		return
	}
	if c := m.collab.Load(); c != nil {
		c.Owner.UpdateStateMachineState(StateOff)
	}
	m.wg.Add(1)
	go m.run()
}

// Quit stops the worker and drops all pending events. It does not revoke
// collaborators; call Cleanup for that.
func (m *Machine) Quit() {
	m.queue.Close()
	m.wg.Wait()
}

// Cleanup revokes the collaborator references. Any event processed
// afterwards is logged and dropped.
func (m *Machine) Cleanup() {
	m.collab.Store(nil)
}

// Send posts an event to the tail of the machine's queue. Safe to call
// from any goroutine.
func (m *Machine) Send(ev event.Event) {
	m.queue.Post(ev)
}

// SendDelayed schedules an event for delivery after d. Safe to call from
// any goroutine.
func (m *Machine) SendDelayed(ev event.Event, d time.Duration) {
	m.queue.PostDelayed(ev, d)
}

// CurrentState returns the machine's current state.
func (m *Machine) CurrentState() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsTurningOn reports whether an enable sequence is in flight.
func (m *Machine) IsTurningOn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turningOn
}

// IsTurningOff reports whether a disable sequence is in flight.
func (m *Machine) IsTurningOff() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turningOff
}

// run is the single consumer draining the queue.
func (m *Machine) run() {
	defer m.wg.Done()
	for {
		ev, ok := m.queue.Next()
		if !ok {
			return
		}
		m.process(ev)
	}
}

// process dispatches one event against the current state.
func (m *Machine) process(ev event.Event) {
	c := m.collab.Load()
	state := m.CurrentState()
	if c == nil {
		m.logDispatch(state, ev, log.OutcomeDropped)
		m.logError("process", "event received after cleanup: "+ev.Type.String())
		return
	}

	switch state {
	case StateOff:
		m.processOff(c, ev)
	case StatePending:
		m.processPending(c, ev)
	case StatePowered:
		m.processPowered(c, ev)
	case StateOn:
		m.processOn(c, ev)
	}
}

// processOff handles events in the off state.
func (m *Machine) processOff(c *Collaborators, ev event.Event) {
	switch ev.Type {
	case event.TypeUserTurnOn:
		m.logDispatch(StateOff, ev, log.OutcomeHandled)
		m.notifyStateChange(c, LifecycleTurningOn)
		m.setUserOp(true)
		m.beginPowerOn(c)

	case event.TypePowerOn:
		m.logDispatch(StateOff, ev, log.OutcomeHandled)
		m.beginPowerOn(c)

	case event.TypeUserTurnOff, event.TypePowerOff:
		// Already off.
		m.logDispatch(StateOff, ev, log.OutcomeIgnored)

	default:
		m.logDispatch(StateOff, ev, log.OutcomeUnexpected)
	}
}

// beginPowerOn starts the enable sequence. Shared between the user and
// power-hold entry points.
func (m *Machine) beginPowerOn(c *Collaborators) {
	m.setTurningOn(true)
	m.transitionTo(c, StatePending, "power on")
	m.queue.PostDelayed(event.Event{Type: event.TypeStartTimeout}, m.timeouts.Start)
	c.Controller.ProcessStart()
}

// processOn handles events in the on state.
func (m *Machine) processOn(c *Collaborators, ev event.Event) {
	switch ev.Type {
	case event.TypeUserTurnOff:
		m.logDispatch(StateOn, ev, log.OutcomeHandled)
		m.notifyStateChange(c, LifecycleTurningOff)
		m.setTurningOff(true)
		m.setUserOp(true)
		m.transitionTo(c, StatePending, "user turn off")
		m.queue.PostDelayed(event.Event{Type: event.TypeSetScanModeTimeout}, m.timeouts.SetScanMode)
		c.Properties.OnRadioDisable()

	case event.TypeUserTurnOn:
		// Already on.
		m.logDispatch(StateOn, ev, log.OutcomeIgnored)

	case event.TypePowerOn, event.TypePowerOff:
		// Power holds are re-evaluated when a disable begins.
		m.logDispatch(StateOn, ev, log.OutcomeIgnored)

	default:
		m.logDispatch(StateOn, ev, log.OutcomeUnexpected)
	}
}

// processPowered handles events in the powered (not promoted) state.
func (m *Machine) processPowered(c *Collaborators, ev event.Event) {
	switch ev.Type {
	case event.TypeUserTurnOn:
		// Hardware is already up; only the promotion step runs.
		m.logDispatch(StatePowered, ev, log.OutcomeHandled)
		m.notifyStateChange(c, LifecycleTurningOn)
		c.Properties.OnRadioReady()
		m.transitionTo(c, StateOn, "promoted to on")
		m.notifyStateChange(c, LifecycleOn)

	case event.TypeUserTurnOff, event.TypePowerOn:
		m.logDispatch(StatePowered, ev, log.OutcomeIgnored)

	case event.TypePowerOff:
		m.logDispatch(StatePowered, ev, log.OutcomeHandled)
		c.Controller.SetVendorEventsEnabled(false)
		if !c.Controller.Disable() {
			m.logError("disable", "error while powering radio down")
			break
		}
		m.queue.PostDelayed(event.Event{Type: event.TypeDisableTimeout}, m.timeouts.Disable)
		m.setTurningOff(true)
		m.setUserOp(false)
		m.transitionTo(c, StatePending, "power hold released")

	default:
		m.logDispatch(StatePowered, ev, log.OutcomeUnexpected)
	}
}

// processPending handles events while a transition is in flight.
func (m *Machine) processPending(c *Collaborators, ev event.Event) {
	m.mu.Lock()
	turningOn := m.turningOn
	turningOff := m.turningOff
	userOp := m.userOp
	m.mu.Unlock()

	switch ev.Type {
	case event.TypeUserTurnOn:
		if turningOn {
			if userOp {
				m.logDispatch(StatePending, ev, log.OutcomeIgnored)
			} else {
				// Upgrade the in-flight power-hold start to a user
				// operation; the turning-on notification fires
				// retroactively, timers stay armed.
				m.logDispatch(StatePending, ev, log.OutcomeHandled)
				m.setUserOp(true)
				m.notifyStateChange(c, LifecycleTurningOn)
			}
		} else {
			m.logDispatch(StatePending, ev, log.OutcomeDeferred)
			m.queue.Defer(ev)
		}

	case event.TypeUserTurnOff:
		if turningOff {
			m.logDispatch(StatePending, ev, log.OutcomeIgnored)
		} else {
			m.logDispatch(StatePending, ev, log.OutcomeDeferred)
			m.queue.Defer(ev)
		}

	case event.TypePowerOn:
		if turningOn {
			m.logDispatch(StatePending, ev, log.OutcomeIgnored)
		} else {
			m.logDispatch(StatePending, ev, log.OutcomeDeferred)
			m.queue.Defer(ev)
		}

	case event.TypePowerOff:
		if turningOff {
			m.logDispatch(StatePending, ev, log.OutcomeIgnored)
		} else {
			m.logDispatch(StatePending, ev, log.OutcomeDeferred)
			m.queue.Defer(ev)
		}

	case event.TypeStarted:
		m.logDispatch(StatePending, ev, log.OutcomeHandled)
		m.queue.Cancel(event.TypeStartTimeout)
		if !c.Controller.Enable() {
			m.logError("enable", "error while enabling radio")
			m.notifyStateChange(c, LifecycleOff)
			m.setTurningOn(false)
			m.transitionTo(c, StateOff, "enable request failed")
		} else {
			m.queue.PostDelayed(event.Event{Type: event.TypeEnableTimeout}, m.timeouts.Enable)
		}

	case event.TypeEnabledReady:
		m.logDispatch(StatePending, ev, log.OutcomeHandled)
		m.queue.Cancel(event.TypeEnableTimeout)
		if !c.Controller.SetVendorEventsEnabled(true) {
			m.logError("vendor-events", "unable to enable vendor event reception")
		}
		m.setTurningOn(false)
		if userOp {
			c.Properties.OnRadioReady()
			m.transitionTo(c, StateOn, "enable complete")
			m.notifyStateChange(c, LifecycleOn)
		} else {
			m.transitionTo(c, StatePowered, "power hold satisfied")
		}

	case event.TypeSetScanModeTimeout:
		m.logDispatch(StatePending, ev, log.OutcomeHandled)
		m.logError("scan-mode", "timeout clearing scan mode, continuing with disable")
		m.beginDisable(c)

	case event.TypeBeginDisable:
		m.logDispatch(StatePending, ev, log.OutcomeHandled)
		m.beginDisable(c)

	case event.TypeDisabled:
		m.logDispatch(StatePending, ev, log.OutcomeHandled)
		if turningOn {
			// Hardware went down while an enable was in flight.
			m.queue.Cancel(event.TypeEnableTimeout)
			m.logError("enable", "error enabling radio: hardware init failed")
			m.setTurningOn(false)
			m.transitionTo(c, StateOff, "hardware init failed")
			c.Owner.StopProfileServices()
			if userOp {
				m.notifyStateChange(c, LifecycleOff)
			}
			break
		}
		m.queue.Cancel(event.TypeDisableTimeout)
		m.queue.PostDelayed(event.Event{Type: event.TypeStopTimeout}, m.timeouts.Stop)
		if c.Owner.StopProfileServices() {
			// Await STOPPED from the profile runner.
			break
		}
		m.finishStop(c, userOp)

	case event.TypeStopped:
		m.logDispatch(StatePending, ev, log.OutcomeHandled)
		m.finishStop(c, userOp)

	case event.TypeStartTimeout:
		m.logDispatch(StatePending, ev, log.OutcomeHandled)
		m.logError("start", "timeout starting radio process")
		m.setTurningOn(false)
		m.transitionTo(c, StateOff, "start timeout")
		if userOp {
			m.notifyStateChange(c, LifecycleOff)
		}

	case event.TypeEnableTimeout:
		m.logDispatch(StatePending, ev, log.OutcomeHandled)
		m.logError("enable", "timeout enabling radio")
		m.setTurningOn(false)
		m.transitionTo(c, StateOff, "enable timeout")
		if userOp {
			m.notifyStateChange(c, LifecycleOff)
		}

	case event.TypeStopTimeout:
		m.logDispatch(StatePending, ev, log.OutcomeHandled)
		m.logFatal("stop", "timeout stopping profile services")
		m.setTurningOff(false)
		m.transitionTo(c, StateOff, "stop timeout")
		m.notifyStateChange(c, LifecycleOff)
		m.terminate("profile services failed to stop")

	case event.TypeDisableTimeout:
		m.logDispatch(StatePending, ev, log.OutcomeHandled)
		m.logFatal("disable", "timeout disabling radio")
		m.setTurningOff(false)
		c.Controller.ForceCleanup()
		m.transitionTo(c, StateOff, "disable timeout")
		m.notifyStateChange(c, LifecycleOff)
		m.terminate("radio failed to disable")

	default:
		m.logDispatch(StatePending, ev, log.OutcomeUnexpected)
	}
}

// beginDisable runs the disable sequence. Shared between BEGIN_DISABLE and
// the scan-mode timeout falling into it.
func (m *Machine) beginDisable(c *Collaborators) {
	m.queue.Cancel(event.TypeSetScanModeTimeout)
	if c.Owner.IsPowerLockHeld() {
		// A held radio cannot fully power off; abandon the disable and
		// fall back to powered without a misleading user notification.
		m.setTurningOff(false)
		m.transitionTo(c, StatePowered, "power lock held, disable abandoned")
		return
	}
	c.Controller.SetVendorEventsEnabled(false)
	m.queue.PostDelayed(event.Event{Type: event.TypeDisableTimeout}, m.timeouts.Disable)
	if !c.Controller.Disable() {
		m.queue.Cancel(event.TypeDisableTimeout)
		m.logError("disable", "error while powering radio down")
		m.setTurningOff(false)
		m.transitionTo(c, StateOn, "disable request failed")
		m.notifyStateChange(c, LifecycleOn)
	}
}

// finishStop completes the disable sequence once profile services are
// down. Shared between STOPPED and DISABLED-with-nothing-running.
func (m *Machine) finishStop(c *Collaborators, userOp bool) {
	m.queue.Cancel(event.TypeStopTimeout)
	m.setTurningOff(false)
	m.transitionTo(c, StateOff, "stop complete")
	if userOp {
		m.notifyStateChange(c, LifecycleOff)
	}
}

// transitionTo moves the machine to a new state, runs the entry actions
// and replays deferred events when leaving pending.
func (m *Machine) transitionTo(c *Collaborators, newState State, reason string) {
	m.mu.Lock()
	oldState := m.state
	m.state = newState
	if oldState == StatePending {
		m.userOp = false
	}
	m.mu.Unlock()

	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentMachine,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState: oldState.String(),
			NewState: newState.String(),
			Reason:   reason,
		},
	})

	c.Owner.UpdateStateMachineState(newState)
	if newState == StateOn {
		c.Owner.AutoConnect()
	}

	if oldState == StatePending {
		m.queue.ReplayDeferred()
	}
}

// notifyStateChange records and broadcasts a user-visible lifecycle change.
func (m *Machine) notifyStateChange(c *Collaborators, newState LifecycleState) {
	oldState := c.Properties.State()
	c.Properties.SetState(newState)
	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentMachine,
		Category:  log.CategoryBroadcast,
		Broadcast: &log.BroadcastEvent{
			OldState: oldState.String(),
			NewState: newState.String(),
		},
	})
	c.Owner.UpdateAdapterState(oldState, newState)
}

// terminate invokes the fatal hook, at most once per machine lifetime.
func (m *Machine) terminate(reason string) {
	if m.fatalFired {
		return
	}
	m.fatalFired = true
	m.fatal(reason)
}

func (m *Machine) setTurningOn(v bool) {
	m.mu.Lock()
	m.turningOn = v
	m.mu.Unlock()
}

func (m *Machine) setTurningOff(v bool) {
	m.mu.Lock()
	m.turningOff = v
	m.mu.Unlock()
}

func (m *Machine) setUserOp(v bool) {
	m.mu.Lock()
	m.userOp = v
	m.mu.Unlock()
}

func (m *Machine) logDispatch(state State, ev event.Event, outcome log.Outcome) {
	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentMachine,
		Category:  log.CategoryDispatch,
		Dispatch: &log.DispatchEvent{
			State:   state.String(),
			Event:   ev.Type.String(),
			Outcome: outcome,
		},
	})
}

func (m *Machine) logError(op, msg string) {
	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentMachine,
		Category:  log.CategoryError,
		Error:     &log.ErrorEvent{Op: op, Message: msg},
	})
}

func (m *Machine) logFatal(op, msg string) {
	m.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentMachine,
		Category:  log.CategoryFatal,
		Error:     &log.ErrorEvent{Op: op, Message: msg},
	})
}
