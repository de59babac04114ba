package event

// Type identifies an adapter power event.
type Type uint8

const (
	// TypeUserTurnOn is an explicit caller request to bring the radio to
	// the user-visible on state.
	TypeUserTurnOn Type = iota + 1

	// TypePowerOn is an automatic power-hold request to keep the radio
	// hardware up without promoting it to the user-visible on state.
	TypePowerOn

	// TypeStarted reports that the radio process came up.
	TypeStarted

	// TypeEnabledReady reports that the radio completed full bring-up.
	TypeEnabledReady

	// TypeUserTurnOff is an explicit caller request to power the radio
	// down.
	TypeUserTurnOff

	// TypePowerOff reports that the last power hold was released.
	TypePowerOff

	// TypeBeginDisable starts the disable sequence once scan mode has been
	// cleared.
	TypeBeginDisable

	// TypeDisabled reports that the radio hardware is fully down.
	TypeDisabled

	// TypeStopped reports that all dependent profile services stopped.
	TypeStopped

	// TypeStartTimeout fires when the radio process failed to come up in
	// time.
	TypeStartTimeout

	// TypeEnableTimeout fires when full bring-up failed to complete in
	// time.
	TypeEnableTimeout

	// TypeDisableTimeout fires when the radio failed to power down in
	// time.
	TypeDisableTimeout

	// TypeStopTimeout fires when profile services failed to stop in time.
	TypeStopTimeout

	// TypeSetScanModeTimeout fires when clearing scan mode ahead of a
	// disable took too long.
	TypeSetScanModeTimeout
)

// String returns the event type name.
func (t Type) String() string {
	switch t {
	case TypeUserTurnOn:
		return "USER_TURN_ON"
	case TypePowerOn:
		return "POWER_ON"
	case TypeStarted:
		return "STARTED"
	case TypeEnabledReady:
		return "ENABLED_READY"
	case TypeUserTurnOff:
		return "USER_TURN_OFF"
	case TypePowerOff:
		return "POWER_OFF"
	case TypeBeginDisable:
		return "BEGIN_DISABLE"
	case TypeDisabled:
		return "DISABLED"
	case TypeStopped:
		return "STOPPED"
	case TypeStartTimeout:
		return "START_TIMEOUT"
	case TypeEnableTimeout:
		return "ENABLE_TIMEOUT"
	case TypeDisableTimeout:
		return "DISABLE_TIMEOUT"
	case TypeStopTimeout:
		return "STOP_TIMEOUT"
	case TypeSetScanModeTimeout:
		return "SET_SCAN_MODE_TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// Event is a single entry on the queue.
type Event struct {
	// Type identifies what happened.
	Type Type
}
