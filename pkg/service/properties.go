package service

import (
	"sync"

	"github.com/blueline-project/blueline-go/pkg/adapter"
)

// ScanMode is the adapter's discoverability setting.
type ScanMode uint8

const (
	// ScanModeNone means the adapter is neither connectable nor
	// discoverable.
	ScanModeNone ScanMode = iota

	// ScanModeConnectable means the adapter accepts connections but is
	// not discoverable.
	ScanModeConnectable

	// ScanModeDiscoverable means the adapter is connectable and
	// discoverable.
	ScanModeDiscoverable
)

// String returns the scan mode name.
func (m ScanMode) String() string {
	switch m {
	case ScanModeNone:
		return "NONE"
	case ScanModeConnectable:
		return "CONNECTABLE"
	case ScanModeDiscoverable:
		return "DISCOVERABLE"
	default:
		return "UNKNOWN"
	}
}

// DisableReporter is told when disable preparation (clearing scan mode)
// completed. The Manager turns this into a BEGIN_DISABLE event.
type DisableReporter interface {
	ScanModeCleared()
}

// Properties tracks persisted adapter properties and mirrors the
// user-visible lifecycle state. Safe for concurrent use.
type Properties struct {
	mu sync.RWMutex

	state    adapter.LifecycleState
	name     string
	address  string
	scanMode ScanMode
	bonded   []string

	reporter DisableReporter
}

// NewProperties creates a properties store for an adapter with the given
// name and address.
func NewProperties(name, address string) *Properties {
	return &Properties{
		state:   adapter.LifecycleOff,
		name:    name,
		address: address,
	}
}

// SetDisableReporter installs the receiver for disable-preparation
// completion. A nil reporter leaves OnRadioDisable without a completion
// path, in which case the machine proceeds on the scan-mode timeout.
func (p *Properties) SetDisableReporter(r DisableReporter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reporter = r
}

// State returns the last recorded lifecycle state.
func (p *Properties) State() adapter.LifecycleState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// SetState records a new lifecycle state.
func (p *Properties) SetState(state adapter.LifecycleState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = state
}

// OnRadioReady applies post-enable property setup.
func (p *Properties) OnRadioReady() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scanMode = ScanModeConnectable
}

// OnRadioDisable clears scan mode ahead of a disable and reports
// completion to the disable reporter.
func (p *Properties) OnRadioDisable() {
	p.mu.Lock()
	p.scanMode = ScanModeNone
	reporter := p.reporter
	p.mu.Unlock()

	if reporter != nil {
		reporter.ScanModeCleared()
	}
}

// Name returns the adapter name.
func (p *Properties) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.name
}

// SetName sets the adapter name.
func (p *Properties) SetName(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
}

// Address returns the adapter address.
func (p *Properties) Address() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.address
}

// ScanMode returns the current scan mode.
func (p *Properties) ScanMode() ScanMode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.scanMode
}

// SetScanMode sets the scan mode.
func (p *Properties) SetScanMode(mode ScanMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scanMode = mode
}

// AddBondedPeer records a bonded peer address. Duplicates are ignored.
func (p *Properties) AddBondedPeer(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range p.bonded {
		if b == address {
			return
		}
	}
	p.bonded = append(p.bonded, address)
}

// RemoveBondedPeer removes a bonded peer address.
func (p *Properties) RemoveBondedPeer(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, b := range p.bonded {
		if b == address {
			p.bonded = append(p.bonded[:i], p.bonded[i+1:]...)
			return
		}
	}
}

// BondedPeers returns a copy of the bonded peer list.
func (p *Properties) BondedPeers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.bonded))
	copy(out, p.bonded)
	return out
}

// Compile-time interface satisfaction check.
var _ adapter.Properties = (*Properties)(nil)
