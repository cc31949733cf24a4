// Package dbgconfig provides the debugger's clone-builder configuration type,
// following the same WithXxx/clone pattern used throughout the host runtime
// this debugger was modeled after.
package dbgconfig

import (
	"time"

	"github.com/promisszn/soroban-debugger-sub000/internal/stepper"
)

// StepMode re-exports stepper.StepMode so callers configuring the engine
// don't need to import internal/stepper directly.
type StepMode = stepper.StepMode

// Config controls engine, timeline, and stepper behavior. The zero value is
// not valid; use New.
type Config struct {
	timelineCapacity  int
	historyCapacity   int
	defaultStepMode   StepMode
	instructionDebug  bool
	mockAllAuths      bool
	invokeTimeout     time.Duration
	quiet             bool
	verbose           bool
	jsonOutput        bool
	colorEnabled      bool
}

// defaultConfig mirrors engineLessConfig in wazero's config.go: a single
// package-level baseline that every constructor clones from.
var defaultConfig = &Config{
	timelineCapacity: 100,
	historyCapacity:  1000,
	defaultStepMode:  stepper.StepInto,
	mockAllAuths:     false,
	invokeTimeout:    0,
	colorEnabled:     true,
}

// New returns the default configuration.
func New() *Config {
	return defaultConfig.clone()
}

func (c *Config) clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) WithTimelineCapacity(n int) *Config {
	ret := c.clone()
	if n <= 0 {
		n = 1
	}
	ret.timelineCapacity = n
	return ret
}

func (c *Config) WithHistoryCapacity(n int) *Config {
	ret := c.clone()
	if n <= 0 {
		n = 1
	}
	ret.historyCapacity = n
	return ret
}

func (c *Config) WithDefaultStepMode(m StepMode) *Config {
	ret := c.clone()
	ret.defaultStepMode = m
	return ret
}

func (c *Config) WithInstructionDebug(on bool) *Config {
	ret := c.clone()
	ret.instructionDebug = on
	return ret
}

// WithMockAllAuths controls whether register_contract mocks every auth
// requirement (REPL-mode default) or enforces strict authorization.
func (c *Config) WithMockAllAuths(on bool) *Config {
	ret := c.clone()
	ret.mockAllAuths = on
	return ret
}

func (c *Config) WithInvokeTimeout(d time.Duration) *Config {
	ret := c.clone()
	ret.invokeTimeout = d
	return ret
}

func (c *Config) WithQuiet(on bool) *Config {
	ret := c.clone()
	ret.quiet = on
	return ret
}

func (c *Config) WithVerbose(on bool) *Config {
	ret := c.clone()
	ret.verbose = on
	return ret
}

func (c *Config) WithJSONOutput(on bool) *Config {
	ret := c.clone()
	ret.jsonOutput = on
	return ret
}

func (c *Config) WithColorEnabled(on bool) *Config {
	ret := c.clone()
	ret.colorEnabled = on
	return ret
}

func (c *Config) TimelineCapacity() int       { return c.timelineCapacity }
func (c *Config) HistoryCapacity() int        { return c.historyCapacity }
func (c *Config) DefaultStepMode() StepMode   { return c.defaultStepMode }
func (c *Config) InstructionDebug() bool      { return c.instructionDebug }
func (c *Config) MockAllAuths() bool          { return c.mockAllAuths }
func (c *Config) InvokeTimeout() time.Duration { return c.invokeTimeout }
func (c *Config) Quiet() bool                 { return c.quiet }
func (c *Config) Verbose() bool               { return c.verbose }
func (c *Config) JSONOutput() bool            { return c.jsonOutput }
func (c *Config) ColorEnabled() bool          { return c.colorEnabled }
