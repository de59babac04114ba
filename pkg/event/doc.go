// Package event provides the message queue that drives the adapter power
// state machine.
//
// The queue is a FIFO with three extensions the state machine relies on:
//
//   - Delayed posting: PostDelayed delivers an event no earlier than the
//     given duration. Delayed events of the same type are delivered in the
//     order they were scheduled; there is no ordering guarantee between
//     delayed events of different types.
//   - Cancellation by type: Cancel removes every not-yet-delivered event of
//     a type, both queued entries and pending delayed timers. This is how
//     the state machine disarms a timeout once the awaited completion
//     arrives.
//   - Deferral: Defer parks an event so that it is redelivered after the
//     machine's next state transition, ahead of anything posted later and
//     preserving relative order among deferred events. The state machine
//     calls ReplayDeferred when it leaves the pending state.
//
// # Threading
//
// Producers (Post, PostDelayed, Cancel) are safe to call from any
// goroutine. There must be exactly one consumer calling Next; the consumer
// processes one event to completion before taking the next, which is what
// lets the state machine mutate its fields without internal locking.
// Defer and ReplayDeferred may only be called from the consumer.
package event
