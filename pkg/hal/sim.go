package hal

import (
	"sync"
	"time"

	"github.com/blueline-project/blueline-go/pkg/event"
	"github.com/blueline-project/blueline-go/pkg/log"
)

// EventSink receives completion events from the controller. The state
// machine satisfies it directly.
type EventSink interface {
	Send(ev event.Event)
}

// VendorHandler receives injected vendor traffic while vendor event
// reception is enabled.
type VendorHandler interface {
	HandleVendorEvent(payload []byte)
	HandleVendorCommandComplete(opcode uint16, payload []byte)
}

// SimConfig holds the simulated controller's tuning and failure switches.
type SimConfig struct {
	// StartLatency delays the STARTED completion. Zero means immediate.
	StartLatency time.Duration

	// EnableLatency delays the ENABLED_READY completion.
	EnableLatency time.Duration

	// DisableLatency delays the DISABLED completion.
	DisableLatency time.Duration

	// FailEnable makes Enable refuse the request (returns false).
	FailEnable bool

	// FailDisable makes Disable refuse the request (returns false).
	FailDisable bool

	// FailVendorEvents makes SetVendorEventsEnabled report failure.
	FailVendorEvents bool

	// HangStart suppresses the STARTED completion so the start timeout
	// fires.
	HangStart bool

	// HangEnable suppresses the ENABLED_READY completion so the enable
	// timeout fires.
	HangEnable bool

	// HangDisable suppresses the DISABLED completion so the disable
	// timeout fires.
	HangDisable bool
}

// Sim is a simulated radio controller.
type Sim struct {
	mu     sync.Mutex
	config SimConfig
	sink   EventSink
	logger log.Logger

	powered       bool
	vendorEvents  bool
	vendorHandler VendorHandler
}

// NewSim creates a simulated controller delivering completions to sink.
func NewSim(sink EventSink, config SimConfig, logger log.Logger) *Sim {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Sim{
		config: config,
		sink:   sink,
		logger: logger,
	}
}

// SetVendorHandler installs the receiver for injected vendor traffic.
func (s *Sim) SetVendorHandler(h VendorHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendorHandler = h
}

// Configure replaces the failure switches at runtime. Latencies of
// in-flight operations are unaffected.
func (s *Sim) Configure(config SimConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}

// ProcessStart launches the simulated radio process.
func (s *Sim) ProcessStart() {
	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()

	if cfg.HangStart {
		s.logOp("process-start", "suppressing STARTED completion")
		return
	}
	s.complete(event.TypeStarted, cfg.StartLatency)
}

// Enable begins simulated radio bring-up.
func (s *Sim) Enable() bool {
	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()

	if cfg.FailEnable {
		return false
	}
	if cfg.HangEnable {
		s.logOp("enable", "suppressing ENABLED_READY completion")
		return true
	}
	time.AfterFunc(cfg.EnableLatency, func() {
		s.mu.Lock()
		s.powered = true
		s.mu.Unlock()
		s.sink.Send(event.Event{Type: event.TypeEnabledReady})
	})
	return true
}

// Disable begins simulated radio power-down.
func (s *Sim) Disable() bool {
	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()

	if cfg.FailDisable {
		return false
	}
	if cfg.HangDisable {
		s.logOp("disable", "suppressing DISABLED completion")
		return true
	}
	time.AfterFunc(cfg.DisableLatency, func() {
		s.mu.Lock()
		s.powered = false
		s.mu.Unlock()
		s.sink.Send(event.Event{Type: event.TypeDisabled})
	})
	return true
}

// SetVendorEventsEnabled switches vendor event reception.
func (s *Sim) SetVendorEventsEnabled(enabled bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config.FailVendorEvents {
		return false
	}
	s.vendorEvents = enabled
	return true
}

// ForceCleanup tears simulated hardware state down.
func (s *Sim) ForceCleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.powered = false
	s.vendorEvents = false
}

// IsPowered reports whether the simulated radio is up.
func (s *Sim) IsPowered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.powered
}

// InjectVendorEvent feeds a vendor-specific event into the stack, as the
// hardware would. Dropped while vendor event reception is disabled.
func (s *Sim) InjectVendorEvent(payload []byte) {
	s.mu.Lock()
	enabled := s.vendorEvents
	handler := s.vendorHandler
	s.mu.Unlock()

	if !enabled || handler == nil {
		return
	}
	handler.HandleVendorEvent(payload)
}

// InjectCommandComplete feeds a vendor command completion into the stack.
// Dropped while vendor event reception is disabled.
func (s *Sim) InjectCommandComplete(opcode uint16, payload []byte) {
	s.mu.Lock()
	enabled := s.vendorEvents
	handler := s.vendorHandler
	s.mu.Unlock()

	if !enabled || handler == nil {
		return
	}
	handler.HandleVendorCommandComplete(opcode, payload)
}

// complete delivers a completion event after the configured latency.
func (s *Sim) complete(t event.Type, latency time.Duration) {
	if latency == 0 {
		s.sink.Send(event.Event{Type: t})
		return
	}
	time.AfterFunc(latency, func() {
		s.sink.Send(event.Event{Type: t})
	})
}

func (s *Sim) logOp(op, msg string) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		Component: log.ComponentController,
		Category:  log.CategoryError,
		Error:     &log.ErrorEvent{Op: op, Message: msg},
	})
}
