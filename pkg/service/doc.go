// Package service composes the adapter stack: the power state machine,
// the subscriber registry, the properties store and the profile runner,
// wired together behind a single Manager.
//
// Manager is the machine's owner. It routes internal state transitions to
// the subscriber registry, broadcasts user-visible lifecycle changes to
// registered listeners, answers power-lock queries from the registry's
// subscription count, and turns the registry's power-hold requests, scan
// mode completion and profile stop completion back into events on the
// machine's queue.
//
// Nothing in here is a process-wide singleton: the composition root
// constructs one Manager and hands references down.
package service
