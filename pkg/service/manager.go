package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/blueline-project/blueline-go/pkg/adapter"
	"github.com/blueline-project/blueline-go/pkg/event"
	"github.com/blueline-project/blueline-go/pkg/log"
	"github.com/blueline-project/blueline-go/pkg/subscriber"
)

// EventSink receives completion events from the hardware controller and
// feeds them to the state machine.
type EventSink interface {
	Send(ev event.Event)
}

// ControllerFactory builds the hardware controller. The sink it receives
// routes completion events into the manager's state machine, which breaks
// the construction cycle between controller and machine.
type ControllerFactory func(sink EventSink) adapter.Controller

// StateListener is notified of user-visible lifecycle changes.
type StateListener func(oldState, newState adapter.LifecycleState)

// ManagerConfig holds manager configuration.
type ManagerConfig struct {
	// Timeouts for the guarded hardware steps. Zero fields fall back to
	// defaults.
	Timeouts adapter.Timeouts

	// Logger receives events from all components. Defaults to NoopLogger.
	Logger log.Logger

	// Fatal is invoked for unrecoverable timeout outcomes. The composition
	// root should map it to process termination.
	Fatal adapter.FatalFunc

	// Properties is the adapter property store. Required.
	Properties *Properties

	// Profiles are the dependent profile services bound to the adapter's
	// on state.
	Profiles []Profile

	// OnAutoConnect, if set, is called with the bonded peer addresses
	// after the adapter reaches the on state.
	OnAutoConnect func(peers []string)
}

// Manager composes the state machine, the subscriber registry, the
// property store and the profile runner into the adapter service. It is
// the machine's owner, the registry's power sink and the controller's
// event sink.
type Manager struct {
	machine    *adapter.Machine
	registry   *subscriber.Registry
	props      *Properties
	profiles   *ProfileRunner
	controller adapter.Controller
	logger     log.Logger

	onAutoConnect func(peers []string)

	mu        sync.Mutex
	listeners map[uuid.UUID]StateListener
}

// NewManager wires the adapter service together. The controller is built
// through factory; the machine does not run until Start is called.
func NewManager(factory ControllerFactory, cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}

	m := &Manager{
		props:         cfg.Properties,
		logger:        logger,
		onAutoConnect: cfg.OnAutoConnect,
		listeners:     make(map[uuid.UUID]StateListener),
	}
	m.props.SetDisableReporter(m)
	m.registry = subscriber.NewRegistry(m, logger)
	m.profiles = NewProfileRunner(m, logger, cfg.Profiles...)
	m.controller = factory(m)
	m.machine = adapter.NewMachine(adapter.Collaborators{
		Controller: m.controller,
		Properties: m.props,
		Owner:      m,
	}, adapter.Config{
		Timeouts: cfg.Timeouts,
		Logger:   logger,
		Fatal:    cfg.Fatal,
	})
	return m
}

// Start launches the state machine worker.
func (m *Manager) Start() {
	m.machine.Start()
}

// Stop terminates the state machine and revokes its collaborator
// references. Events arriving afterwards are dropped.
func (m *Manager) Stop() {
	m.machine.Quit()
	m.machine.Cleanup()
}

// Enable requests a user-initiated adapter turn on.
func (m *Manager) Enable() {
	m.machine.Send(event.Event{Type: event.TypeUserTurnOn})
}

// Disable requests a user-initiated adapter turn off.
func (m *Manager) Disable() {
	m.machine.Send(event.Event{Type: event.TypeUserTurnOff})
}

// State returns the last broadcast user-visible lifecycle state.
func (m *Manager) State() adapter.LifecycleState {
	return m.props.State()
}

// MachineState returns the internal state machine state.
func (m *Manager) MachineState() adapter.State {
	return m.machine.CurrentState()
}

// IsTurningOn reports whether an enable sequence is in flight.
func (m *Manager) IsTurningOn() bool {
	return m.machine.IsTurningOn()
}

// IsTurningOff reports whether a disable sequence is in flight.
func (m *Manager) IsTurningOff() bool {
	return m.machine.IsTurningOff()
}

// Properties returns the adapter property store.
func (m *Manager) Properties() *Properties {
	return m.props
}

// Controller returns the hardware controller built at construction.
func (m *Manager) Controller() adapter.Controller {
	return m.controller
}

// RegisterCallback adds a subscriber to the registry and returns its
// handle.
func (m *Manager) RegisterCallback(cb subscriber.Callback) (uuid.UUID, error) {
	return m.registry.Register(cb)
}

// UnregisterCallback removes a subscriber. Unknown handles are ignored.
func (m *Manager) UnregisterCallback(id uuid.UUID) {
	m.registry.Unregister(id)
}

// SetVendorFilter installs a vendor event filter for a subscription.
func (m *Manager) SetVendorFilter(id uuid.UUID, mask, value []byte) {
	m.registry.SetFilter(id, mask, value)
}

// SubscriberCount returns the number of active subscriptions.
func (m *Manager) SubscriberCount() int {
	return m.registry.Count()
}

// AddStateListener registers a lifecycle change listener and returns a
// handle for removal.
func (m *Manager) AddStateListener(l StateListener) uuid.UUID {
	id := uuid.New()
	m.mu.Lock()
	m.listeners[id] = l
	m.mu.Unlock()
	return id
}

// RemoveStateListener removes a previously added listener.
func (m *Manager) RemoveStateListener(id uuid.UUID) {
	m.mu.Lock()
	delete(m.listeners, id)
	m.mu.Unlock()
}

// Send feeds a controller completion event to the state machine. It
// implements the controller's event sink.
func (m *Manager) Send(ev event.Event) {
	m.machine.Send(ev)
}

// UpdateStateMachineState mirrors every internal transition into the
// subscriber registry and starts the profile services once the adapter
// is fully on. It implements adapter.Owner.
func (m *Manager) UpdateStateMachineState(state adapter.State) {
	m.registry.OnAdapterState(state)
	if state == adapter.StateOn {
		m.profiles.StartAll()
	}
}

// UpdateAdapterState fans a user-visible lifecycle change out to the
// registered listeners. It implements adapter.Owner.
func (m *Manager) UpdateAdapterState(oldState, newState adapter.LifecycleState) {
	m.mu.Lock()
	snapshot := make([]StateListener, 0, len(m.listeners))
	for _, l := range m.listeners {
		snapshot = append(snapshot, l)
	}
	m.mu.Unlock()

	for _, l := range snapshot {
		l(oldState, newState)
	}
}

// AutoConnect hands the bonded peer addresses to the configured reconnect
// hook. It implements adapter.Owner.
func (m *Manager) AutoConnect() {
	if m.onAutoConnect == nil {
		return
	}
	peers := m.props.BondedPeers()
	if len(peers) == 0 {
		return
	}
	m.onAutoConnect(peers)
}

// StopProfileServices begins stopping the running profile services. It
// implements adapter.Owner.
func (m *Manager) StopProfileServices() bool {
	return m.profiles.StopAll()
}

// IsPowerLockHeld reports whether a subscriber holds the radio powered.
// It implements adapter.Owner.
func (m *Manager) IsPowerLockHeld() bool {
	return m.registry.HoldsPower()
}

// RequestPowerOn asks the machine to bring the radio up without a user
// request. It implements subscriber.PowerSink.
func (m *Manager) RequestPowerOn() {
	m.machine.Send(event.Event{Type: event.TypePowerOn})
}

// RequestPowerOff releases the subscriber power hold. It implements
// subscriber.PowerSink.
func (m *Manager) RequestPowerOff() {
	m.machine.Send(event.Event{Type: event.TypePowerOff})
}

// ScanModeCleared signals that disable preparation finished. It
// implements the property store's disable reporter.
func (m *Manager) ScanModeCleared() {
	m.machine.Send(event.Event{Type: event.TypeBeginDisable})
}

// ProfilesStopped signals that all profile services finished stopping. It
// implements the profile runner's stop sink.
func (m *Manager) ProfilesStopped() {
	m.machine.Send(event.Event{Type: event.TypeStopped})
}

// HandleVendorEvent fans a vendor event out through the registry. It
// implements the controller's vendor handler.
func (m *Manager) HandleVendorEvent(payload []byte) {
	m.registry.OnVendorEvent(payload)
}

// HandleVendorCommandComplete fans a vendor command completion out
// through the registry. It implements the controller's vendor handler.
func (m *Manager) HandleVendorCommandComplete(opcode uint16, payload []byte) {
	m.registry.OnVendorCommandComplete(opcode, payload)
}
