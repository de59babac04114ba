package log

import (
	"time"
)

// Event represents a log event emitted by an adapter stack component.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Component that produced the event.
	Component Component `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Type-specific payload (one of these will be set).
	Dispatch    *DispatchEvent    `cbor:"4,keyasint,omitempty"` // Event delivered to the state machine
	StateChange *StateChangeEvent `cbor:"5,keyasint,omitempty"` // Internal state transition
	Broadcast   *BroadcastEvent   `cbor:"6,keyasint,omitempty"` // User-visible adapter state change
	Subscriber  *SubscriberEvent  `cbor:"7,keyasint,omitempty"` // Registry activity
	Error       *ErrorEvent       `cbor:"8,keyasint,omitempty"` // Errors, including fatal outcomes
}

// Component identifies the source of an event.
type Component uint8

const (
	// ComponentMachine is the adapter power state machine.
	ComponentMachine Component = 0
	// ComponentRegistry is the subscriber registry.
	ComponentRegistry Component = 1
	// ComponentService is the owning adapter service.
	ComponentService Component = 2
	// ComponentController is the hardware controller.
	ComponentController Component = 3
)

// String returns the component name.
func (c Component) String() string {
	switch c {
	case ComponentMachine:
		return "MACHINE"
	case ComponentRegistry:
		return "REGISTRY"
	case ComponentService:
		return "SERVICE"
	case ComponentController:
		return "CONTROLLER"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryDispatch indicates an event delivered to the state machine.
	CategoryDispatch Category = 0
	// CategoryState indicates an internal state transition.
	CategoryState Category = 1
	// CategoryBroadcast indicates a user-visible adapter state change.
	CategoryBroadcast Category = 2
	// CategorySubscriber indicates registry activity.
	CategorySubscriber Category = 3
	// CategoryError indicates a recoverable error.
	CategoryError Category = 4
	// CategoryFatal indicates an unrecoverable outcome that terminates
	// the hosting process.
	CategoryFatal Category = 5
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryDispatch:
		return "DISPATCH"
	case CategoryState:
		return "STATE"
	case CategoryBroadcast:
		return "BROADCAST"
	case CategorySubscriber:
		return "SUBSCRIBER"
	case CategoryError:
		return "ERROR"
	case CategoryFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// DispatchEvent records how the state machine classified one event.
type DispatchEvent struct {
	// State the machine was in when the event arrived.
	State string `cbor:"1,keyasint"`

	// Event that was dispatched.
	Event string `cbor:"2,keyasint"`

	// Outcome of dispatching the event.
	Outcome Outcome `cbor:"3,keyasint"`
}

// Outcome is the classified result of dispatching an event.
type Outcome uint8

const (
	// OutcomeHandled indicates the event triggered a transition or side
	// effect.
	OutcomeHandled Outcome = 0
	// OutcomeIgnored indicates the event was a recognized no-op
	// (duplicate request, irrelevant in the current state).
	OutcomeIgnored Outcome = 1
	// OutcomeDeferred indicates the event was parked for redelivery after
	// the next transition.
	OutcomeDeferred Outcome = 2
	// OutcomeUnexpected indicates the event is not defined for the
	// current state.
	OutcomeUnexpected Outcome = 3
	// OutcomeDropped indicates the event arrived after teardown.
	OutcomeDropped Outcome = 4
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeHandled:
		return "HANDLED"
	case OutcomeIgnored:
		return "IGNORED"
	case OutcomeDeferred:
		return "DEFERRED"
	case OutcomeUnexpected:
		return "UNEXPECTED"
	case OutcomeDropped:
		return "DROPPED"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures an internal state transition.
type StateChangeEvent struct {
	// OldState is the previous state.
	OldState string `cbor:"1,keyasint"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// BroadcastEvent captures a user-visible adapter state change.
type BroadcastEvent struct {
	// OldState is the previously broadcast lifecycle state.
	OldState string `cbor:"1,keyasint"`

	// NewState is the lifecycle state being broadcast.
	NewState string `cbor:"2,keyasint"`
}

// SubscriberEvent captures registry activity.
type SubscriberEvent struct {
	// Action that occurred.
	Action SubscriberAction `cbor:"1,keyasint"`

	// Handle identifies the subscription involved, if any.
	Handle string `cbor:"2,keyasint,omitempty"`

	// Count is the subscription count after the action.
	Count int `cbor:"3,keyasint"`

	// Size is the payload size in bytes for vendor deliveries.
	Size int `cbor:"4,keyasint,omitempty"`
}

// SubscriberAction identifies registry activity.
type SubscriberAction uint8

const (
	// ActionRegistered indicates a new subscription was added.
	ActionRegistered SubscriberAction = 0
	// ActionUnregistered indicates a subscription was removed.
	ActionUnregistered SubscriberAction = 1
	// ActionReady indicates an interface-ready delivery.
	ActionReady SubscriberAction = 2
	// ActionDown indicates a terminal interface-down delivery.
	ActionDown SubscriberAction = 3
	// ActionVendorEvent indicates a vendor event fan-out pass.
	ActionVendorEvent SubscriberAction = 4
	// ActionCommandComplete indicates a command-complete fan-out pass.
	ActionCommandComplete SubscriberAction = 5
	// ActionPowerHold indicates the registry requested power on.
	ActionPowerHold SubscriberAction = 6
	// ActionPowerRelease indicates the registry released its power hold.
	ActionPowerRelease SubscriberAction = 7
)

// String returns the action name.
func (a SubscriberAction) String() string {
	switch a {
	case ActionRegistered:
		return "REGISTERED"
	case ActionUnregistered:
		return "UNREGISTERED"
	case ActionReady:
		return "READY"
	case ActionDown:
		return "DOWN"
	case ActionVendorEvent:
		return "VENDOR_EVENT"
	case ActionCommandComplete:
		return "COMMAND_COMPLETE"
	case ActionPowerHold:
		return "POWER_HOLD"
	case ActionPowerRelease:
		return "POWER_RELEASE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEvent captures a recoverable or fatal error.
type ErrorEvent struct {
	// Op describes what operation was being performed.
	Op string `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`
}
