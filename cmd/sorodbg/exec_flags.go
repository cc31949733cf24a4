package main

import (
	"flag"
	"io"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgconfig"
	"github.com/promisszn/soroban-debugger-sub000/internal/stepper"
)

// execFlags is the flag set shared by every verb that loads and invokes a
// contract (run, analyze, optimize, profile).
type execFlags struct {
	contract         string
	function         string
	args             string
	storage          string
	networkSnapshot  string
	breakpoints      sliceFlag
	mocks            sliceFlag
	showEvents       bool
	showAuth         bool
	jsonOutput       bool
	filterTopic      string
	repeat           int
	storageFilters   sliceFlag
	instructionDebug bool
	stepInstructions bool
	stepModeText     string
	dryRun           bool
	quiet            bool
	verbose          bool
	traceOut         string
}

// registerExecFlags builds a FlagSet named name with the common exec flags
// bound, plus any verb-specific flags the caller adds before calling Parse.
func registerExecFlags(name string, stdErr io.Writer) (*flag.FlagSet, *execFlags) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.SetOutput(stdErr)

	f := &execFlags{}
	flags.StringVar(&f.contract, "contract", "", "Path to the contract's compiled WASM file.")
	flags.StringVar(&f.function, "function", "", "Exported function to invoke.")
	flags.StringVar(&f.args, "args", "[]", "JSON-encoded argument list for the invocation.")
	flags.StringVar(&f.storage, "storage", "", "Path to a JSON file of initial storage key/value pairs.")
	flags.StringVar(&f.networkSnapshot, "network-snapshot", "", "Path to a network snapshot file to seed storage from.")
	flags.Var(&f.breakpoints, "breakpoint", "Function name to pause at on entry, or a conditional spec "+
		"\"function[arg:name op value]\"/\"function[storage:key op value]\" with op one of ==, !=, >, <, >=, <=. "+
		"Conditional breakpoints are recorded and listed but do not pause execution. "+
		"May be specified multiple times.")
	flags.Var(&f.mocks, "mock", "Cross-contract mock of the form CID.function=value. May be specified multiple times.")
	flags.BoolVar(&f.showEvents, "show-events", false, "Print emitted events after the invocation.")
	flags.BoolVar(&f.showAuth, "show-auth", false, "Print the authorization tree after the invocation.")
	flags.BoolVar(&f.jsonOutput, "json", false, "Emit machine-readable JSON instead of human-readable text.")
	flags.StringVar(&f.filterTopic, "filter-topic", "", "Only show events whose topics contain this substring.")
	flags.IntVar(&f.repeat, "repeat", 1, "Number of times to invoke the function.")
	flags.Var(&f.storageFilters, "storage-filter", "Storage key pattern to display (exact, prefix*, or re:regex). May repeat.")
	flags.BoolVar(&f.instructionDebug, "instruction-debug", false, "Build the instruction index and enable instruction-level stepping.")
	flags.BoolVar(&f.stepInstructions, "step-instructions", false, "Single-step through instructions instead of invoking directly.")
	flags.StringVar(&f.stepModeText, "step-mode", "into", "Step mode: into, over, out, or block.")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Load and validate without committing storage changes.")
	flags.BoolVar(&f.quiet, "quiet", false, "Suppress informational logging.")
	flags.BoolVar(&f.verbose, "verbose", false, "Enable debug-level logging.")
	flags.StringVar(&f.traceOut, "trace-out", "", "Path to write a persisted execution trace for later replay/compare.")
	return flags, f
}

func (f *execFlags) stepMode() stepper.StepMode {
	mode, ok := stepper.ParseStepMode(f.stepModeText)
	if !ok {
		return stepper.StepInto
	}
	return mode
}

// config builds the shared clone-builder configuration from the parsed
// flags, the same builder dbgconfig.New() exposes for engine/timeline
// tuning and for the logger's verbosity and color decisions.
func (f *execFlags) config() *dbgconfig.Config {
	return dbgconfig.New().
		WithInstructionDebug(f.instructionDebug).
		WithDefaultStepMode(f.stepMode()).
		WithQuiet(f.quiet).
		WithVerbose(f.verbose).
		WithJSONOutput(f.jsonOutput).
		WithColorEnabled(colorEnabled())
}

func (f *execFlags) session() sessionConfig {
	return sessionConfig{
		ContractPath:     f.contract,
		StoragePath:      f.storage,
		SnapshotPath:     f.networkSnapshot,
		Breakpoints:      f.breakpoints,
		Mocks:            f.mocks,
		InstructionDebug: f.instructionDebug,
		StepInstructions: f.stepInstructions,
	}
}
