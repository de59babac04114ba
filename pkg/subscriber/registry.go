package subscriber

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blueline-project/blueline-go/pkg/adapter"
	"github.com/blueline-project/blueline-go/pkg/log"
)

// Registry errors.
var (
	// ErrNilCallback is returned when registering a nil callback.
	ErrNilCallback = errors.New("subscriber: nil callback")
)

// Callback is the interface observers implement to receive notifications.
// Methods may be called concurrently with respect to each other but never
// concurrently for the same subscription. A returned error is logged and
// does not abort delivery to other observers; subscription reconciliation
// stays with the transport layer's death path, which calls Unregister.
type Callback interface {
	// InterfaceReady reports that the radio is up and usable.
	InterfaceReady() error

	// InterfaceDown reports that the radio went fully down. Terminal:
	// the subscription is removed after this call.
	InterfaceDown() error

	// VendorEvent delivers a vendor-specific event that passed the
	// subscription's filter.
	VendorEvent(payload []byte) error

	// VendorCommandComplete delivers a vendor command completion.
	// Not filtered.
	VendorCommandComplete(opcode uint16, payload []byte) error
}

// PowerSink receives the registry's power-hold requests. The owning
// service routes them into the state machine's queue as POWER_ON and
// POWER_OFF events.
type PowerSink interface {
	// RequestPowerOn is emitted when the subscription set becomes
	// non-empty.
	RequestPowerOn()

	// RequestPowerOff is emitted when the subscription set becomes
	// empty.
	RequestPowerOff()
}

// subscription is one registered observer with its filter and the flags
// guarding notification races.
type subscription struct {
	mu sync.Mutex

	id uuid.UUID
	cb Callback

	// filterMask / filterValue form the vendor-event filter. Nil mask
	// means the observer opted out of vendor events. filterValue is
	// stored pre-masked so matching needs no extra masking.
	filterMask  []byte
	filterValue []byte

	// updated guards the race between the asynchronous initial-ready
	// delivery and a state broadcast observed first.
	updated bool

	// seenStable records that the observer saw the adapter in a stable
	// state, which is the precondition for a down notification.
	seenStable bool
}

// Registry tracks vendor-event observers and aggregates them into a power
// hold on the state machine.
type Registry struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]*subscription
	order  []uuid.UUID
	prev   adapter.State
	sink   PowerSink
	logger log.Logger
}

// NewRegistry creates an empty registry feeding power-hold requests into
// sink.
func NewRegistry(sink PowerSink, logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Registry{
		subs:   make(map[uuid.UUID]*subscription),
		prev:   adapter.StateOff,
		sink:   sink,
		logger: logger,
	}
}

// Register adds an observer and returns its handle. If the adapter is
// currently up, a one-shot interface-ready notification is delivered on a
// separate goroutine, unless a racing state broadcast gets there first.
// Registering the first observer requests power on.
func (r *Registry) Register(cb Callback) (uuid.UUID, error) {
	if cb == nil {
		return uuid.Nil, ErrNilCallback
	}

	sub := &subscription{id: uuid.New(), cb: cb}

	r.mu.Lock()
	r.subs[sub.id] = sub
	r.order = append(r.order, sub.id)
	count := len(r.subs)
	prev := r.prev
	r.mu.Unlock()

	r.logAction(log.ActionRegistered, sub.id.String(), count, 0)

	if prev == adapter.StateOn || prev == adapter.StatePowered {
		go r.deliverInitialReady(sub)
	}

	if count == 1 {
		r.logAction(log.ActionPowerHold, "", count, 0)
		r.sink.RequestPowerOn()
	}
	return sub.id, nil
}

// deliverInitialReady sends the one-shot ready notification to a new
// observer, skipping it if a broadcast already reached the subscription.
func (r *Registry) deliverInitialReady(sub *subscription) {
	count := r.Count()

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.updated {
		return
	}
	if err := sub.cb.InterfaceReady(); err != nil {
		r.logDeliveryError(sub.id, "initial interface ready", err)
		return
	}
	r.logAction(log.ActionReady, sub.id.String(), count, 0)
}

// Unregister removes an observer. Idempotent; unknown handles are no-ops.
// Removing the last observer releases the power hold.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	if _, ok := r.subs[id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.subs, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	count := len(r.subs)
	r.mu.Unlock()

	r.logAction(log.ActionUnregistered, id.String(), count, 0)

	if count == 0 {
		r.logAction(log.ActionPowerRelease, "", count, 0)
		r.sink.RequestPowerOff()
	}
}

// SetFilter replaces an observer's vendor-event filter. A mask longer than
// the value is truncated to the value's length; the stored value is
// pre-masked so later comparisons need no masking. Passing a nil mask or
// value clears the filter. Unknown handles are no-ops.
func (r *Registry) SetFilter(id uuid.UUID, mask, value []byte) {
	r.mu.Lock()
	sub, ok := r.subs[id]
	r.mu.Unlock()
	if !ok {
		return
	}

	var storedMask, storedValue []byte
	if mask != nil && value != nil {
		if len(mask) > len(value) {
			mask = mask[:len(value)]
		}
		storedMask = make([]byte, len(mask))
		storedValue = make([]byte, len(mask))
		copy(storedMask, mask)
		for i := range storedMask {
			storedValue[i] = value[i] & mask[i]
		}
	}

	sub.mu.Lock()
	sub.filterMask = storedMask
	sub.filterValue = storedValue
	sub.mu.Unlock()
}

// HoldsPower reports whether at least one observer is registered.
func (r *Registry) HoldsPower() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs) > 0
}

// Count returns the number of registered observers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// OnAdapterState is driven by the state machine on every transition. It
// collapses states to up/down, skips pending and unchanged values, and
// broadcasts lifecycle notifications. Down notifications go only to
// observers that saw a stable state and remove their subscriptions.
func (r *Registry) OnAdapterState(newState adapter.State) {
	up, mapped := mapState(newState)

	r.mu.Lock()
	prevUp, prevMapped := mapState(r.prev)
	if !mapped || (prevMapped && up == prevUp) {
		r.mu.Unlock()
		return
	}
	r.prev = newState
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	var down []uuid.UUID
	for _, sub := range snapshot {
		sub.mu.Lock()
		sub.updated = true
		if up {
			if err := sub.cb.InterfaceReady(); err != nil {
				r.logDeliveryError(sub.id, "interface ready", err)
			} else {
				r.logAction(log.ActionReady, sub.id.String(), len(snapshot), 0)
			}
		} else if sub.seenStable {
			if err := sub.cb.InterfaceDown(); err != nil {
				r.logDeliveryError(sub.id, "interface down", err)
			} else {
				r.logAction(log.ActionDown, sub.id.String(), len(snapshot), 0)
			}
			// Down is terminal for a subscription regardless of
			// delivery outcome.
			down = append(down, sub.id)
		}
		sub.seenStable = true
		sub.mu.Unlock()
	}

	for _, id := range down {
		r.Unregister(id)
	}
}

// mapState collapses machine states for observer notification. The second
// return is false for states that produce no notification.
func mapState(s adapter.State) (up bool, mapped bool) {
	switch s {
	case adapter.StateOff:
		return false, true
	case adapter.StateOn, adapter.StatePowered:
		return true, true
	default:
		return false, false
	}
}

// OnVendorEvent fans a vendor-specific event out to every observer whose
// filter matches. Observers without a filter receive nothing.
func (r *Registry) OnVendorEvent(payload []byte) {
	r.mu.Lock()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.logAction(log.ActionVendorEvent, "", len(snapshot), len(payload))

	for _, sub := range snapshot {
		sub.mu.Lock()
		match := sub.filterMask != nil && filterMatches(payload, sub.filterMask, sub.filterValue)
		cb := sub.cb
		sub.mu.Unlock()
		if !match {
			continue
		}
		if err := cb.VendorEvent(payload); err != nil {
			r.logDeliveryError(sub.id, "vendor event", err)
		}
	}
}

// filterMatches reports whether payload passes a pre-masked filter.
func filterMatches(payload, mask, value []byte) bool {
	if len(payload) < len(mask) {
		return false
	}
	for i := range mask {
		if payload[i]&mask[i] != value[i] {
			return false
		}
	}
	return true
}

// OnVendorCommandComplete fans a vendor command completion out to every
// observer, unfiltered.
func (r *Registry) OnVendorCommandComplete(opcode uint16, payload []byte) {
	r.mu.Lock()
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.logAction(log.ActionCommandComplete, "", len(snapshot), len(payload))

	for _, sub := range snapshot {
		if err := sub.cb.VendorCommandComplete(opcode, payload); err != nil {
			r.logDeliveryError(sub.id, "vendor command complete", err)
		}
	}
}

// snapshotLocked returns the subscriptions in registration order. Caller
// must hold r.mu.
func (r *Registry) snapshotLocked() []*subscription {
	out := make([]*subscription, 0, len(r.order))
	for _, id := range r.order {
		if sub, ok := r.subs[id]; ok {
			out = append(out, sub)
		}
	}
	return out
}

func (r *Registry) logAction(action log.SubscriberAction, handle string, count, size int) {
	r.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentRegistry,
		Category:  log.CategorySubscriber,
		Subscriber: &log.SubscriberEvent{
			Action: action,
			Handle: handle,
			Count:  count,
			Size:   size,
		},
	})
}

func (r *Registry) logDeliveryError(id uuid.UUID, op string, err error) {
	r.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentRegistry,
		Category:  log.CategoryError,
		Error: &log.ErrorEvent{
			Op:      op,
			Message: "delivery to " + id.String() + " failed: " + err.Error(),
		},
	})
}
