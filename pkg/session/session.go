// Package session drives a machine.Machine on behalf of a front-end. It owns the load parameters, the operand
// fields and decides which part of the code and stack is shown.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dylandreimerink/asmviz/pkg/machine"
	"github.com/dylandreimerink/asmviz/pkg/textfield"
)

// ErrCodeIndexOutOfRange is returned when the program counter doesn't point into the instruction listing.
var ErrCodeIndexOutOfRange = errors.New("program counter outside of instruction listing")

const (
	DefaultPCStart uint64 = 0x4000
	DefaultPCEnd   uint64 = 0x7FFF
	DefaultSPStart uint64 = 0xFF00
)

// Config holds the parameters of the last load.
type Config struct {
	FilePath string
	PCStart  uint64
	PCEnd    uint64
	SPStart  uint64
}

// Controller is a single debugging session. All methods are safe to call from multiple goroutines, calls are
// serialized.
type Controller struct {
	mu sync.Mutex

	m      machine.Machine
	fields *textfield.FieldSet
	log    logrus.FieldLogger

	initialized bool
	// loaded is true once a config has been stored, it stays true if a later re-init fails
	loaded bool
	cfg    Config
}

// Opt configures a controller.
type Opt func(c *Controller)

// OptLogger sets the logger used for session events, logrus.StandardLogger() by default.
func OptLogger(log logrus.FieldLogger) Opt {
	return func(c *Controller) {
		c.log = log
	}
}

// OptFieldCapacity sets the capacity of the operand fields.
func OptFieldCapacity(capacity int) Opt {
	return func(c *Controller) {
		c.fields = textfield.NewFieldSet(capacity)
	}
}

// New creates a session around m. The session starts unloaded.
func New(m machine.Machine, opts ...Opt) *Controller {
	c := &Controller{
		m:      m,
		fields: textfield.NewFieldSet(textfield.DefaultCapacity),
		log:    logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Load initializes the machine with the listing at path and stores the parameters for later resets. If the machine
// fails to initialize, the session keeps its previous state.
func (c *Controller) Load(path string, pcStart, pcEnd, spStart uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cfg := Config{
		FilePath: path,
		PCStart:  pcStart,
		PCEnd:    pcEnd,
		SPStart:  spStart,
	}

	if err := c.m.Init(cfg.SPStart, cfg.PCStart, cfg.FilePath); err != nil {
		return fmt.Errorf("init machine: %w", err)
	}

	c.cfg = cfg
	c.loaded = true
	c.initialized = true

	c.log.WithFields(logrus.Fields{
		"file":     path,
		"pc_start": fmt.Sprintf("0x%x", pcStart),
		"pc_end":   fmt.Sprintf("0x%x", pcEnd),
		"sp_start": fmt.Sprintf("0x%x", spStart),
		"lines":    len(c.m.Code()),
	}).Info("session loaded")

	return nil
}

// Reset re-initializes the machine with the config of the last load, discarding all execution effects since. Reset
// is a no-op if nothing was loaded yet.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		return nil
	}

	if err := c.m.Init(c.cfg.SPStart, c.cfg.PCStart, c.cfg.FilePath); err != nil {
		return fmt.Errorf("init machine: %w", err)
	}
	c.initialized = true

	c.log.WithField("file", c.cfg.FilePath).Info("session reset")

	return nil
}

// Step executes a single instruction. It returns false without error if no session is loaded or the program counter
// reached the end address. An instruction which fails to decode leaves the machine untouched.
func (c *Controller) Step() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.step()
}

func (c *Controller) step() (bool, error) {
	if !c.initialized {
		return false, nil
	}

	regs := c.m.Registers()
	pc := regs.PC()
	if pc == c.cfg.PCEnd {
		return false, nil
	}

	idx, err := c.codeIndex(pc)
	if err != nil {
		return false, err
	}

	line := c.m.Code()[idx]
	inst, err := c.m.Parse(line)
	if err != nil {
		return false, fmt.Errorf("decode 0x%x '%s': %w", pc, line, err)
	}

	regs.SetPC(pc + machine.InstructionSize)

	c.log.WithFields(logrus.Fields{
		"pc":   fmt.Sprintf("0x%x", pc),
		"inst": line,
	}).Debug("step")

	if err := c.m.Execute(inst); err != nil {
		return true, fmt.Errorf("execute 0x%x '%s': %w", pc, line, err)
	}

	return true, nil
}

// codeIndex translates an address into an index of the listing.
func (c *Controller) codeIndex(pc uint64) (int, error) {
	start := c.m.CodeStart()
	if pc < start {
		return 0, fmt.Errorf("pc 0x%x is below code start 0x%x: %w", pc, start, ErrCodeIndexOutOfRange)
	}

	idx := (pc - start) / machine.InstructionSize
	if idx >= uint64(len(c.m.Code())) {
		return 0, fmt.Errorf("pc 0x%x is past the last instruction at 0x%x: %w",
			pc, start+uint64(len(c.m.Code())-1)*machine.InstructionSize, ErrCodeIndexOutOfRange)
	}

	return int(idx), nil
}

// Continue steps until the end address is reached, stop returns true for the new program counter, an error occurs
// or limit instructions were executed. A limit of zero or less means no limit. The amount of executed instructions is
// returned.
func (c *Controller) Continue(limit int, stop func(pc uint64) bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for limit <= 0 || n < limit {
		stepped, err := c.step()
		if stepped {
			n++
		}
		if err != nil || !stepped {
			return n, err
		}

		if stop != nil && stop(c.m.Registers().PC()) {
			break
		}
	}

	return n, nil
}

// Initialized returns true once a load succeeded.
func (c *Controller) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.initialized
}

// Config returns the parameters of the last successful load, ok is false if nothing was loaded.
func (c *Controller) Config() (cfg Config, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cfg, c.loaded
}

// Halted returns true if the program counter reached the end address.
func (c *Controller) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.initialized && c.m.Registers().PC() == c.cfg.PCEnd
}

// PC returns the current program counter.
func (c *Controller) PC() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.m.Registers().PC()
}

// CodeStart returns the address of the first instruction in the listing.
func (c *Controller) CodeStart() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.m.CodeStart()
}

// Code returns the instruction listing.
func (c *Controller) Code() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.m.Code()...)
}

// Inspect calls fn with the machine while holding the session lock. fn must not modify the machine.
func (c *Controller) Inspect(fn func(m machine.Machine)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(c.m)
}
