package adapter

import "time"

// Default timeout values. Tuning concerns, not correctness ones; override
// via the Timeouts struct.
const (
	DefaultStartTimeout       = 5 * time.Second
	DefaultEnableTimeout      = 8 * time.Second
	DefaultDisableTimeout     = 8 * time.Second
	DefaultStopTimeout        = 5 * time.Second
	DefaultSetScanModeTimeout = 2 * time.Second
)

// Timeouts holds the per-step timeout configuration for the state machine.
type Timeouts struct {
	// Start guards radio process launch (OFF -> PENDING).
	Start time.Duration

	// Enable guards full bring-up after the process started.
	Enable time.Duration

	// Disable guards radio power-down.
	Disable time.Duration

	// Stop guards profile service shutdown after power-down.
	Stop time.Duration

	// SetScanMode guards the scan-mode-clearing step ahead of a disable.
	SetScanMode time.Duration
}

// DefaultTimeouts returns the default timeout configuration.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Start:       DefaultStartTimeout,
		Enable:      DefaultEnableTimeout,
		Disable:     DefaultDisableTimeout,
		Stop:        DefaultStopTimeout,
		SetScanMode: DefaultSetScanModeTimeout,
	}
}

// withDefaults fills any zero field with its default value.
func (t Timeouts) withDefaults() Timeouts {
	if t.Start == 0 {
		t.Start = DefaultStartTimeout
	}
	if t.Enable == 0 {
		t.Enable = DefaultEnableTimeout
	}
	if t.Disable == 0 {
		t.Disable = DefaultDisableTimeout
	}
	if t.Stop == 0 {
		t.Stop = DefaultStopTimeout
	}
	if t.SetScanMode == 0 {
		t.SetScanMode = DefaultSetScanModeTimeout
	}
	return t
}
