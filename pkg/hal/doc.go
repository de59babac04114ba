// Package hal provides a simulated radio controller for development and
// testing.
//
// Sim implements the adapter.Controller contract: control calls return
// immediately and completions arrive later as events on the state
// machine's queue, the same invoke-then-await shape real hardware glue
// has. Latencies are configurable, and failure switches allow individual
// steps to be refused or to hang, which is how the timeout and fatal
// recovery paths are exercised without hardware.
//
// Sim also carries a small vendor-event side channel: injected vendor
// events and command completions are handed to a configurable handler
// (normally the owning service, which fans them out through the
// subscriber registry) while vendor event reception is enabled.
package hal
