package adapter

// Controller is the hardware abstraction the machine drives. Calls either
// complete synchronously and fast, or start an asynchronous operation
// whose completion arrives later as a STARTED, ENABLED_READY or DISABLED
// event on the machine's queue. Implementations must never block for a
// hardware response inside these calls.
type Controller interface {
	// ProcessStart launches the radio process. Completion is reported by
	// a later STARTED event.
	ProcessStart()

	// Enable begins full radio bring-up. A false return means the request
	// could not be issued; success is reported by a later ENABLED_READY
	// event.
	Enable() bool

	// Disable begins radio power-down. A false return means the request
	// could not be issued; success is reported by a later DISABLED event.
	Disable() bool

	// SetVendorEventsEnabled switches reception of vendor-specific
	// events. Best effort; a false return is logged, never fatal.
	SetVendorEventsEnabled(enabled bool) bool

	// ForceCleanup tears hardware state down after a fatal disable
	// timeout.
	ForceCleanup()
}

// Properties is the collaborator tracking persisted adapter properties and
// the user-visible lifecycle state mirror.
type Properties interface {
	// State returns the last lifecycle state recorded by SetState.
	State() LifecycleState

	// SetState records a new lifecycle state.
	SetState(state LifecycleState)

	// OnRadioReady applies post-enable property setup (adapter name,
	// scan mode defaults).
	OnRadioReady()

	// OnRadioDisable begins disable preparation by clearing scan mode.
	// Completion is reported by a later BEGIN_DISABLE event; if it never
	// arrives the machine proceeds on SET_SCAN_MODE_TIMEOUT.
	OnRadioDisable()
}

// Owner is the service that owns the machine's process lifecycle and the
// subscriber registry.
type Owner interface {
	// UpdateStateMachineState informs the owner of every internal state
	// transition. The owner forwards this to the subscriber registry.
	UpdateStateMachineState(state State)

	// UpdateAdapterState broadcasts a user-visible lifecycle change.
	UpdateAdapterState(oldState, newState LifecycleState)

	// AutoConnect reconnects previously bonded peers after the adapter
	// reaches the on state.
	AutoConnect()

	// StopProfileServices begins stopping dependent profile services.
	// A true return means a stop is in progress and a STOPPED event will
	// follow; false means nothing was running.
	StopProfileServices() bool

	// IsPowerLockHeld reports whether at least one subscriber currently
	// holds the radio powered.
	IsPowerLockHeld() bool
}

// Collaborators bundles the machine's external references. The machine
// holds them through a single atomically revocable pointer, so teardown is
// one swap instead of scattered per-field checks.
type Collaborators struct {
	Controller Controller
	Properties Properties
	Owner      Owner
}

// FatalFunc is invoked for unrecoverable timeout outcomes, after the
// forced off notification. The composition root maps it to process
// termination; tests record it.
type FatalFunc func(reason string)
