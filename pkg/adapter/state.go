package adapter

// State is the internal state of the power state machine.
type State uint8

const (
	// StateOff indicates the radio is fully down.
	StateOff State = iota

	// StatePending indicates an enable or disable sequence is in flight.
	StatePending

	// StatePowered indicates the radio hardware is up due to a power hold
	// but the adapter is not in the user-visible on state.
	StatePowered

	// StateOn indicates the adapter is fully operational and user-visible.
	StateOn
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateOff:
		return "OFF"
	case StatePending:
		return "PENDING"
	case StatePowered:
		return "POWERED"
	case StateOn:
		return "ON"
	default:
		return "UNKNOWN"
	}
}

// LifecycleState is the user-visible adapter state carried by state-change
// broadcasts. Unlike State it includes the transient turning states and
// never exposes the powered-but-not-promoted condition.
type LifecycleState uint8

const (
	// LifecycleOff indicates the adapter is off.
	LifecycleOff LifecycleState = iota

	// LifecycleTurningOn indicates a user-requested enable is in flight.
	LifecycleTurningOn

	// LifecycleOn indicates the adapter is on.
	LifecycleOn

	// LifecycleTurningOff indicates a user-requested disable is in flight.
	LifecycleTurningOff
)

// String returns a human-readable lifecycle state name.
func (s LifecycleState) String() string {
	switch s {
	case LifecycleOff:
		return "OFF"
	case LifecycleTurningOn:
		return "TURNING_ON"
	case LifecycleOn:
		return "ON"
	case LifecycleTurningOff:
		return "TURNING_OFF"
	default:
		return "UNKNOWN"
	}
}
