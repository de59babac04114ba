// Package subscriber implements the registry of vendor-event observers.
//
// The registry plays two roles. It fans adapter activity out to observers:
// lifecycle notifications (interface ready / interface down) derived from
// the state machine's transitions, vendor-specific events matched against
// each observer's mask/value filter, and vendor command completions. And
// it feeds back into the state machine: as long as at least one observer
// is registered the registry holds the radio powered, requesting power on
// when the first observer arrives and releasing the hold when the last one
// leaves.
//
// # Notification rules
//
// Lifecycle fan-out collapses the machine's four states to up (on,
// powered) and down (off); pending transitions are skipped. An observer is
// told the interface is down only after it has previously seen a stable
// state, so a client that registers during a disable never mistakes the
// resulting off state for a failed enable. A down notification is terminal:
// the registry drops the subscription after delivering it.
//
// Vendor events are opt-in: an observer without a filter receives none.
// A filter is a mask/value byte pair of equal length; a payload matches
// when (payload[i] & mask[i]) == value[i] for every filter byte, and a
// payload shorter than the mask never matches.
//
// # Concurrency
//
// The registry is called from the state machine worker, from transport
// death callbacks, from arbitrary caller goroutines and from the
// controller's event path. A registry mutex guards the subscription set;
// each subscription additionally guards its own filter and race flags, so
// a slow delivery to one observer never blocks filter updates on another.
// Broadcasts iterate over a snapshot taken under the registry lock and
// tolerate concurrent unregistration. A delivery error is logged and never
// aborts the rest of a broadcast.
package subscriber
