package service_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blueline-project/blueline-go/pkg/adapter"
	"github.com/blueline-project/blueline-go/pkg/service"
)

// recordingReporter counts scan mode clear reports.
type recordingReporter struct {
	mu    sync.Mutex
	calls int
}

func (r *recordingReporter) ScanModeCleared() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestPropertiesStateMirror(t *testing.T) {
	p := service.NewProperties("adapter", "00:11:22:33:44:55")

	assert.Equal(t, adapter.LifecycleOff, p.State())

	p.SetState(adapter.LifecycleTurningOn)
	assert.Equal(t, adapter.LifecycleTurningOn, p.State())
}

func TestPropertiesRadioReadySetsScanMode(t *testing.T) {
	p := service.NewProperties("adapter", "00:11:22:33:44:55")

	assert.Equal(t, service.ScanModeNone, p.ScanMode())

	p.OnRadioReady()
	assert.Equal(t, service.ScanModeConnectable, p.ScanMode())
}

func TestPropertiesRadioDisableClearsAndReports(t *testing.T) {
	p := service.NewProperties("adapter", "00:11:22:33:44:55")
	reporter := &recordingReporter{}
	p.SetDisableReporter(reporter)

	p.OnRadioReady()
	p.SetScanMode(service.ScanModeDiscoverable)

	p.OnRadioDisable()

	assert.Equal(t, service.ScanModeNone, p.ScanMode())
	assert.Equal(t, 1, reporter.count())
}

func TestPropertiesBondedPeers(t *testing.T) {
	p := service.NewProperties("adapter", "00:11:22:33:44:55")

	p.AddBondedPeer("AA:BB:CC:DD:EE:01")
	p.AddBondedPeer("AA:BB:CC:DD:EE:02")
	p.AddBondedPeer("AA:BB:CC:DD:EE:01") // duplicate

	assert.Equal(t, []string{"AA:BB:CC:DD:EE:01", "AA:BB:CC:DD:EE:02"}, p.BondedPeers())

	p.RemoveBondedPeer("AA:BB:CC:DD:EE:01")
	assert.Equal(t, []string{"AA:BB:CC:DD:EE:02"}, p.BondedPeers())

	p.RemoveBondedPeer("AA:BB:CC:DD:EE:99") // unknown
	assert.Equal(t, []string{"AA:BB:CC:DD:EE:02"}, p.BondedPeers())
}

func TestPropertiesIdentity(t *testing.T) {
	p := service.NewProperties("adapter", "00:11:22:33:44:55")

	assert.Equal(t, "adapter", p.Name())
	assert.Equal(t, "00:11:22:33:44:55", p.Address())

	p.SetName("renamed")
	assert.Equal(t, "renamed", p.Name())
}
