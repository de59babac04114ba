// Package adapter implements the power lifecycle state machine for the
// radio adapter.
//
// The machine has four states:
//
//   - Off: the radio is fully down. Initial state.
//   - Pending: an enable or disable sequence is in flight. The only state
//     where the turning-on / turning-off flags carry meaning.
//   - Powered: the radio hardware is up because at least one power hold is
//     active, but the adapter has not been promoted to the user-visible on
//     state.
//   - On: fully operational, user-visible powered state.
//
// # Event processing
//
// A single worker goroutine drains the event queue and processes one event
// at a time to completion, so the machine's fields need no internal
// locking. External callers feed the machine through Send and SendDelayed;
// hardware completions (STARTED, ENABLED_READY, DISABLED) arrive the same
// way. A request that cannot be acted on while Pending is either ignored
// (duplicate), upgraded (a non-user start becomes a user operation), or
// deferred for redelivery after the next transition; it is never cancelled.
//
// # Timeouts
//
// Every asynchronous hardware step is guarded by a timeout. Start and
// enable timeouts are recoverable: the machine returns to Off and reports
// the failure to observers. Disable and stop timeouts are fatal: the
// machine forces an off notification and then invokes the injected
// FatalFunc, which the composition root translates into process
// termination. No other event class is fatal.
//
// # Teardown
//
// Cleanup atomically revokes the collaborator set. Every handler loads the
// set once at the top and drops the event with a logged classification
// when it is absent, so late events never fault the worker.
package adapter
