package subscriber

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/blueline-project/blueline-go/pkg/adapter"
)

// recordingCallback counts deliveries.
type recordingCallback struct {
	mu        sync.Mutex
	ready     int
	down      int
	events    [][]byte
	completes int

	readyErr error
	downErr  error
	eventErr error
}

func (c *recordingCallback) InterfaceReady() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready++
	return c.readyErr
}

func (c *recordingCallback) InterfaceDown() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.down++
	return c.downErr
}

func (c *recordingCallback) VendorEvent(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	c.events = append(c.events, cp)
	return c.eventErr
}

func (c *recordingCallback) VendorCommandComplete(opcode uint16, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completes++
	return nil
}

func (c *recordingCallback) readyCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *recordingCallback) downCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.down
}

func (c *recordingCallback) eventCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *recordingCallback) completeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completes
}

// recordingSink counts power requests.
type recordingSink struct {
	mu  sync.Mutex
	on  int
	off int
}

func (s *recordingSink) RequestPowerOn() {
	s.mu.Lock()
	s.on++
	s.mu.Unlock()
}

func (s *recordingSink) RequestPowerOff() {
	s.mu.Lock()
	s.off++
	s.mu.Unlock()
}

func (s *recordingSink) counts() (on, off int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on, s.off
}

func TestRegisterNilCallback(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)

	_, err := r.Register(nil)
	if !errors.Is(err, ErrNilCallback) {
		t.Errorf("Register(nil) error = %v, want ErrNilCallback", err)
	}
	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}

func TestPowerHoldEdgeTriggered(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink, nil)

	id1, err := r.Register(&recordingCallback{})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	id2, _ := r.Register(&recordingCallback{})

	if on, _ := sink.counts(); on != 1 {
		t.Errorf("RequestPowerOn calls = %d after two registrations, want 1", on)
	}

	r.Unregister(id1)
	if _, off := sink.counts(); off != 0 {
		t.Errorf("RequestPowerOff calls = %d with one subscriber left, want 0", off)
	}

	r.Unregister(id2)
	if on, off := sink.counts(); on != 1 || off != 1 {
		t.Errorf("power requests = (%d on, %d off), want (1, 1)", on, off)
	}
	if r.HoldsPower() {
		t.Error("HoldsPower() = true after last unregister")
	}
}

func TestUnregisterUnknownIsNoop(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink, nil)

	r.Unregister(uuid.New())
	if _, off := sink.counts(); off != 0 {
		t.Errorf("RequestPowerOff calls = %d, want 0", off)
	}
}

func TestUnregisterIdempotent(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink, nil)

	id, _ := r.Register(&recordingCallback{})
	r.Unregister(id)
	r.Unregister(id)

	if _, off := sink.counts(); off != 1 {
		t.Errorf("RequestPowerOff calls = %d, want 1", off)
	}
}

func TestReadyBroadcastOnUp(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{}
	r.Register(cb)

	r.OnAdapterState(adapter.StateOn)

	if cb.readyCount() != 1 {
		t.Errorf("ready deliveries = %d, want 1", cb.readyCount())
	}
}

func TestPendingProducesNoNotification(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{}
	r.Register(cb)

	r.OnAdapterState(adapter.StatePending)
	r.OnAdapterState(adapter.StateOn)
	r.OnAdapterState(adapter.StatePending)

	if cb.readyCount() != 1 {
		t.Errorf("ready deliveries = %d, want 1", cb.readyCount())
	}
	if cb.downCount() != 0 {
		t.Errorf("down deliveries = %d, want 0", cb.downCount())
	}
}

func TestUnchangedMappedValueSkipped(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{}
	r.Register(cb)

	r.OnAdapterState(adapter.StatePowered)
	r.OnAdapterState(adapter.StateOn)

	// Powered and on both map to up; only the first edge counts.
	if cb.readyCount() != 1 {
		t.Errorf("ready deliveries = %d, want 1", cb.readyCount())
	}
}

func TestInitialReadyForLateRegistration(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	r.OnAdapterState(adapter.StateOn)

	cb := &recordingCallback{}
	r.Register(cb)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && cb.readyCount() == 0 {
		time.Sleep(2 * time.Millisecond)
	}
	if cb.readyCount() != 1 {
		t.Errorf("ready deliveries = %d, want 1", cb.readyCount())
	}
}

func TestNoInitialReadyWhenDown(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)

	cb := &recordingCallback{}
	r.Register(cb)

	time.Sleep(20 * time.Millisecond)
	if cb.readyCount() != 0 {
		t.Errorf("ready deliveries = %d, want 0", cb.readyCount())
	}
}

func TestDownOnlyAfterStableState(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{}
	r.Register(cb)

	// Off while already off: no notification of any kind.
	r.OnAdapterState(adapter.StateOff)
	if cb.downCount() != 0 {
		t.Errorf("down deliveries = %d after first off, want 0", cb.downCount())
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}

	r.OnAdapterState(adapter.StateOn)
	r.OnAdapterState(adapter.StateOff)
	if cb.downCount() != 1 {
		t.Errorf("down deliveries = %d, want 1", cb.downCount())
	}
}

func TestDownIsTerminal(t *testing.T) {
	sink := &recordingSink{}
	r := NewRegistry(sink, nil)
	cb := &recordingCallback{}
	r.Register(cb)

	r.OnAdapterState(adapter.StateOn)
	r.OnAdapterState(adapter.StateOff)

	if r.Count() != 0 {
		t.Errorf("Count() = %d after down, want 0", r.Count())
	}
	if _, off := sink.counts(); off != 1 {
		t.Errorf("RequestPowerOff calls = %d, want 1", off)
	}
}

func TestDownDeliveryErrorStillRemoves(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{downErr: errors.New("peer gone")}
	r.Register(cb)

	r.OnAdapterState(adapter.StateOn)
	r.OnAdapterState(adapter.StateOff)

	if r.Count() != 0 {
		t.Errorf("Count() = %d after failed down delivery, want 0", r.Count())
	}
}

func TestReadyDeliveryErrorDoesNotAbortBroadcast(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	bad := &recordingCallback{readyErr: errors.New("broken pipe")}
	good := &recordingCallback{}
	r.Register(bad)
	r.Register(good)

	r.OnAdapterState(adapter.StateOn)

	if good.readyCount() != 1 {
		t.Errorf("ready deliveries to healthy observer = %d, want 1", good.readyCount())
	}
	if r.Count() != 2 {
		t.Errorf("Count() = %d, want 2 (ready errors are not terminal)", r.Count())
	}
}

func TestVendorEventFilter(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{}
	id, _ := r.Register(cb)
	r.SetFilter(id, []byte{0xF0}, []byte{0x30})

	tests := []struct {
		name    string
		payload []byte
		want    int
	}{
		{"Match", []byte{0x35, 0x01}, 1},
		{"MatchExact", []byte{0x30}, 2},
		{"NoMatch", []byte{0x45}, 2},
		{"Empty", nil, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.OnVendorEvent(tt.payload)
			if got := cb.eventCount(); got != tt.want {
				t.Errorf("event deliveries = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVendorEventWithoutFilterNotDelivered(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{}
	r.Register(cb)

	r.OnVendorEvent([]byte{0x30})

	if cb.eventCount() != 0 {
		t.Errorf("event deliveries = %d, want 0 without a filter", cb.eventCount())
	}
}

func TestFilterMaskTruncatedToValue(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{}
	id, _ := r.Register(cb)

	// Mask longer than value: only the first byte participates.
	r.SetFilter(id, []byte{0xFF, 0xFF}, []byte{0x12})

	r.OnVendorEvent([]byte{0x12, 0x99})
	if cb.eventCount() != 1 {
		t.Errorf("event deliveries = %d, want 1", cb.eventCount())
	}
}

func TestFilterValuePreMasked(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{}
	id, _ := r.Register(cb)

	// Value bits outside the mask must not prevent matches.
	r.SetFilter(id, []byte{0xF0}, []byte{0x3F})

	r.OnVendorEvent([]byte{0x30})
	if cb.eventCount() != 1 {
		t.Errorf("event deliveries = %d, want 1", cb.eventCount())
	}
}

func TestShortPayloadNeverMatches(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{}
	id, _ := r.Register(cb)
	r.SetFilter(id, []byte{0xF0, 0x0F}, []byte{0x30, 0x05})

	r.OnVendorEvent([]byte{0x30})

	if cb.eventCount() != 0 {
		t.Errorf("event deliveries = %d for short payload, want 0", cb.eventCount())
	}
}

func TestClearFilter(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	cb := &recordingCallback{}
	id, _ := r.Register(cb)
	r.SetFilter(id, []byte{0xF0}, []byte{0x30})
	r.SetFilter(id, nil, nil)

	r.OnVendorEvent([]byte{0x30})

	if cb.eventCount() != 0 {
		t.Errorf("event deliveries = %d after clearing filter, want 0", cb.eventCount())
	}
}

func TestCommandCompleteUnfiltered(t *testing.T) {
	r := NewRegistry(&recordingSink{}, nil)
	filtered := &recordingCallback{}
	unfiltered := &recordingCallback{}
	id, _ := r.Register(filtered)
	r.Register(unfiltered)
	r.SetFilter(id, []byte{0xFF}, []byte{0x01})

	r.OnVendorCommandComplete(0x1234, []byte{0x00})

	if filtered.completeCount() != 1 {
		t.Errorf("completions to filtered observer = %d, want 1", filtered.completeCount())
	}
	if unfiltered.completeCount() != 1 {
		t.Errorf("completions to unfiltered observer = %d, want 1", unfiltered.completeCount())
	}
}
