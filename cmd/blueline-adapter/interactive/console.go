// Package interactive provides the interactive command-line console for
// blueline-adapter.
package interactive

import (
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/google/uuid"

	"github.com/blueline-project/blueline-go/pkg/adapter"
	"github.com/blueline-project/blueline-go/pkg/hal"
	"github.com/blueline-project/blueline-go/pkg/service"
)

// Console handles interactive mode for blueline-adapter.
type Console struct {
	mgr *service.Manager
	sim *hal.Sim
	rl  *readline.Instance

	mu   sync.Mutex
	subs map[string]uuid.UUID // console alias -> registry handle
	next int
}

// New creates a new interactive console.
func New(mgr *service.Manager, sim *hal.Sim) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "adapter> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := &Console{
		mgr:  mgr,
		sim:  sim,
		rl:   rl,
		subs: make(map[string]uuid.UUID),
		next: 1,
	}

	mgr.AddStateListener(func(oldState, newState adapter.LifecycleState) {
		fmt.Fprintf(rl.Stdout(), "[state] %s -> %s\n", oldState, newState)
	})
	return c, nil
}

// Stdout returns a writer that coordinates with the readline prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Run starts the interactive command loop. It returns when the user quits
// or input reaches EOF.
func (c *Console) Run() {
	defer c.rl.Close()

	c.printHelp()

	for {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "on":
			c.mgr.Enable()

		case "off":
			c.mgr.Disable()

		case "status", "s":
			c.cmdStatus()

		case "register", "reg":
			c.cmdRegister()

		case "unregister", "unreg":
			c.cmdUnregister(args)

		case "filter", "f":
			c.cmdFilter(args)

		case "subs":
			c.cmdSubs()

		case "inject", "i":
			c.cmdInject(args)

		case "complete":
			c.cmdComplete(args)

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
Adapter Commands:
  Power:
    on                 - Request adapter turn on
    off                - Request adapter turn off
    status             - Show adapter state

  Subscribers:
    register           - Register a printing subscriber, returns an alias
    unregister <alias> - Remove a subscriber
    filter <alias> <mask-hex> <value-hex>
                       - Set a vendor event filter (e.g. filter s1 f0 30)
    subs               - List subscribers

  Vendor Traffic:
    inject <hex>       - Inject a vendor event payload
    complete <opcode> <hex>
                       - Inject a vendor command completion

  General:
    help               - Show this help
    quit               - Exit`)
}

func (c *Console) cmdStatus() {
	out := c.rl.Stdout()
	fmt.Fprintf(out, "Lifecycle state: %s\n", c.mgr.State())
	fmt.Fprintf(out, "Machine state:   %s\n", c.mgr.MachineState())
	fmt.Fprintf(out, "Turning on:      %v\n", c.mgr.IsTurningOn())
	fmt.Fprintf(out, "Turning off:     %v\n", c.mgr.IsTurningOff())
	fmt.Fprintf(out, "Radio powered:   %v\n", c.sim.IsPowered())
	fmt.Fprintf(out, "Subscribers:     %d\n", c.mgr.SubscriberCount())
	fmt.Fprintf(out, "Scan mode:       %s\n", c.mgr.Properties().ScanMode())
}

func (c *Console) cmdRegister() {
	c.mu.Lock()
	alias := fmt.Sprintf("s%d", c.next)
	c.next++
	c.mu.Unlock()

	id, err := c.mgr.RegisterCallback(&printingCallback{out: c.rl.Stdout(), alias: alias})
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Error: %v\n", err)
		return
	}

	c.mu.Lock()
	c.subs[alias] = id
	c.mu.Unlock()
	fmt.Fprintf(c.rl.Stdout(), "Registered %s (%s)\n", alias, id)
}

func (c *Console) cmdUnregister(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: unregister <alias>")
		return
	}
	id, ok := c.lookup(args[0])
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown subscriber: %s\n", args[0])
		return
	}
	c.mgr.UnregisterCallback(id)
	c.forget(args[0])
	fmt.Fprintf(c.rl.Stdout(), "Unregistered %s\n", args[0])
}

func (c *Console) cmdFilter(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: filter <alias> <mask-hex> <value-hex>")
		return
	}
	id, ok := c.lookup(args[0])
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown subscriber: %s\n", args[0])
		return
	}
	mask, err := hex.DecodeString(args[1])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid mask: %v\n", err)
		return
	}
	value, err := hex.DecodeString(args[2])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid value: %v\n", err)
		return
	}
	c.mgr.SetVendorFilter(id, mask, value)
	fmt.Fprintf(c.rl.Stdout(), "Filter set on %s\n", args[0])
}

func (c *Console) cmdSubs() {
	c.mu.Lock()
	aliases := make([]string, 0, len(c.subs))
	for alias := range c.subs {
		aliases = append(aliases, alias)
	}
	c.mu.Unlock()
	sort.Strings(aliases)

	if len(aliases) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No subscribers")
		return
	}
	for _, alias := range aliases {
		c.mu.Lock()
		id := c.subs[alias]
		c.mu.Unlock()
		fmt.Fprintf(c.rl.Stdout(), "%s  %s\n", alias, id)
	}
}

func (c *Console) cmdInject(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: inject <hex>")
		return
	}
	payload, err := hex.DecodeString(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid payload: %v\n", err)
		return
	}
	c.sim.InjectVendorEvent(payload)
}

func (c *Console) cmdComplete(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: complete <opcode> <hex>")
		return
	}
	opcode, err := strconv.ParseUint(args[0], 0, 16)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid opcode: %v\n", err)
		return
	}
	payload, err := hex.DecodeString(args[1])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid payload: %v\n", err)
		return
	}
	c.sim.InjectCommandComplete(uint16(opcode), payload)
}

func (c *Console) lookup(alias string) (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.subs[alias]
	return id, ok
}

func (c *Console) forget(alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, alias)
}

// printingCallback prints every delivery it receives.
type printingCallback struct {
	out   io.Writer
	alias string
}

func (p *printingCallback) InterfaceReady() error {
	fmt.Fprintf(p.out, "[%s] interface ready\n", p.alias)
	return nil
}

func (p *printingCallback) InterfaceDown() error {
	fmt.Fprintf(p.out, "[%s] interface down\n", p.alias)
	return nil
}

func (p *printingCallback) VendorEvent(payload []byte) error {
	fmt.Fprintf(p.out, "[%s] vendor event: %x\n", p.alias, payload)
	return nil
}

func (p *printingCallback) VendorCommandComplete(opcode uint16, payload []byte) error {
	fmt.Fprintf(p.out, "[%s] command complete 0x%04x: %x\n", p.alias, opcode, payload)
	return nil
}
