package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFull(t *testing.T) {
	data := []byte(`
adapter:
  name: lab-adapter
  address: "AA:BB:CC:DD:EE:FF"
  bonded-peers:
    - "00:00:00:00:00:01"
    - "00:00:00:00:00:02"
timeouts:
  start: 3s
  enable: 10s
  disable: 10s
  stop: 4s
  set-scan-mode: 500ms
log:
  level: debug
  file: /tmp/events.cbor
sim:
  start-latency: 20ms
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Adapter.Name != "lab-adapter" {
		t.Errorf("Adapter.Name = %q, want %q", cfg.Adapter.Name, "lab-adapter")
	}
	if len(cfg.Adapter.BondedPeers) != 2 {
		t.Errorf("len(BondedPeers) = %d, want 2", len(cfg.Adapter.BondedPeers))
	}
	if got := time.Duration(cfg.Timeouts.SetScanMode); got != 500*time.Millisecond {
		t.Errorf("Timeouts.SetScanMode = %v, want 500ms", got)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if got := time.Duration(cfg.Sim.StartLatency); got != 20*time.Millisecond {
		t.Errorf("Sim.StartLatency = %v, want 20ms", got)
	}

	mt := cfg.MachineTimeouts()
	if mt.Start != 3*time.Second {
		t.Errorf("MachineTimeouts().Start = %v, want 3s", mt.Start)
	}
	if mt.Stop != 4*time.Second {
		t.Errorf("MachineTimeouts().Stop = %v, want 4s", mt.Stop)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`timeouts: {start: 1s}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Adapter.Name != "blueline" {
		t.Errorf("Adapter.Name = %q, want default", cfg.Adapter.Name)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default info", cfg.Log.Level)
	}
	if got := time.Duration(cfg.Timeouts.Enable); got != 0 {
		t.Errorf("Timeouts.Enable = %v, want 0 (machine default applies)", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"BadYAML", `timeouts: [`},
		{"BadDuration", `timeouts: {start: fast}`},
		{"BadLogLevel", `log: {level: verbose}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Parse() error = nil, want error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adapter.yaml")
	if err := os.WriteFile(path, []byte("adapter: {name: from-file}\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Adapter.Name != "from-file" {
		t.Errorf("Adapter.Name = %q, want %q", cfg.Adapter.Name, "from-file")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() error = nil for missing file, want error")
	}
}

func TestDurationRoundTrip(t *testing.T) {
	d := Duration(1500 * time.Millisecond)
	v, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error = %v", err)
	}
	if v != "1.5s" {
		t.Errorf("MarshalYAML() = %v, want %q", v, "1.5s")
	}
}
