// Command blueline-adapter runs the adapter power service against a
// simulated radio controller.
//
// Usage:
//
//	blueline-adapter [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-name string       Adapter name (overrides config)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-log-file string   Binary event log path (overrides config)
//	-interactive       Run the interactive console (default true)
//
// Examples:
//
//	# Start with defaults and the interactive console
//	blueline-adapter
//
//	# Start with a config file and an event log
//	blueline-adapter -config /etc/blueline/adapter.yaml -log-file /var/log/blueline.cbor
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blueline-project/blueline-go/cmd/blueline-adapter/interactive"
	"github.com/blueline-project/blueline-go/pkg/adapter"
	"github.com/blueline-project/blueline-go/pkg/config"
	"github.com/blueline-project/blueline-go/pkg/hal"
	"github.com/blueline-project/blueline-go/pkg/log"
	"github.com/blueline-project/blueline-go/pkg/service"
)

var flags struct {
	configFile  string
	name        string
	logLevel    string
	logFile     string
	interactive bool
}

func init() {
	flag.StringVar(&flags.configFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&flags.name, "name", "", "Adapter name (overrides config)")
	flag.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&flags.logFile, "log-file", "", "Binary event log path (overrides config)")
	flag.BoolVar(&flags.interactive, "interactive", true, "Run the interactive console")
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "blueline-adapter: %v\n", err)
		os.Exit(1)
	}

	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.Log.Level),
	}))

	logger, closeLog, err := buildLogger(slogger, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "blueline-adapter: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	props := service.NewProperties(cfg.Adapter.Name, cfg.Adapter.Address)
	for _, peer := range cfg.Adapter.BondedPeers {
		props.AddBondedPeer(peer)
	}

	var sim *hal.Sim
	mgr := service.NewManager(func(sink service.EventSink) adapter.Controller {
		sim = hal.NewSim(sink, hal.SimConfig{
			StartLatency:   time.Duration(cfg.Sim.StartLatency),
			EnableLatency:  time.Duration(cfg.Sim.EnableLatency),
			DisableLatency: time.Duration(cfg.Sim.DisableLatency),
		}, logger)
		return sim
	}, service.ManagerConfig{
		Timeouts:   cfg.MachineTimeouts(),
		Logger:     logger,
		Properties: props,
		Fatal: func(reason string) {
			slogger.Error("unrecoverable adapter failure", "reason", reason)
			os.Exit(1)
		},
		OnAutoConnect: func(peers []string) {
			slogger.Info("reconnecting bonded peers", "count", len(peers))
		},
	})
	sim.SetVendorHandler(mgr)

	mgr.Start()
	defer mgr.Stop()
	slogger.Info("adapter service started", "name", props.Name(), "address", props.Address())

	if flags.interactive {
		console, err := interactive.New(mgr, sim)
		if err != nil {
			fmt.Fprintf(os.Stderr, "blueline-adapter: %v\n", err)
			os.Exit(1)
		}
		console.Run()
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slogger.Info("shutting down", "signal", sig.String())
}

// loadConfig reads the config file (if any) and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.Load(flags.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if flags.name != "" {
		cfg.Adapter.Name = flags.name
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFile != "" {
		cfg.Log.File = flags.logFile
	}
	return cfg, cfg.Validate()
}

// buildLogger composes the console logger with an optional binary event
// log file.
func buildLogger(slogger *slog.Logger, path string) (log.Logger, func(), error) {
	console := log.NewSlogAdapter(slogger)
	if path == "" {
		return console, func() {}, nil
	}
	file, err := log.NewFileLogger(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	closer := func() {
		if err := file.Close(); err != nil {
			slogger.Warn("closing event log", "err", err)
		}
	}
	return log.NewMultiLogger(console, file), closer, nil
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
