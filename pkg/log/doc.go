// Package log implements structured event logging for the adapter stack.
//
// Components emit typed Events rather than formatted strings. An Event
// records which component produced it (state machine, subscriber registry,
// owning service, controller) and carries one category-specific payload:
// an event dispatch classification, a state change, a user-visible
// broadcast, a subscriber action, or an error.
//
// Loggers implement the single-method Logger interface:
//
//   - FileLogger persists events to a file in compact CBOR.
//   - SlogAdapter writes events to a log/slog logger for console output.
//   - MultiLogger fans out to several loggers at once.
//   - NoopLogger discards everything.
//
// Reader streams events back out of a CBOR log file, optionally filtered.
//
// Every event dispatched by the state machine is logged with an explicit
// outcome (handled, ignored, deferred, unexpected, dropped), so a log file
// is a complete account of the machine's decisions.
package log
