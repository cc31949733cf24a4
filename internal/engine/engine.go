// Package engine implements the Execution Engine: it drives a Host through
// a controlled invocation, reconstructs a call stack from diagnostic events,
// evaluates breakpoints, and emits timeline snapshots for time-travel
// debugging. Grounded on the callEngine push/pop/peek pattern the host
// runtime itself used before this codebase was specialized to this domain.
package engine

import (
	"fmt"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
	"github.com/promisszn/soroban-debugger-sub000/internal/hostfacade"
	"github.com/promisszn/soroban-debugger-sub000/internal/instrindex"
	"github.com/promisszn/soroban-debugger-sub000/internal/stepper"
	"github.com/promisszn/soroban-debugger-sub000/internal/timeline"
	"github.com/promisszn/soroban-debugger-sub000/internal/transcode"
)

// DiagnosticEventKind distinguishes the structured host event variants the
// engine reads to reconstruct cross-contract call frames, rather than
// pattern-matching a Debug-formatted string.
type DiagnosticEventKind int

const (
	DiagContractCall DiagnosticEventKind = iota
	DiagContractReturn
	DiagOther
)

// DiagnosticEvent is one structured event the engine walks after invoke()
// completes, to rebuild the call stack.
type DiagnosticEvent struct {
	Kind       DiagnosticEventKind
	ContractID string
	Function   string
}

// callFrame is the engine's live call-stack entry; Push/Pop/Peek mirror the
// host runtime's own call-frame-stack idiom.
type callFrame = timeline.CallFrame

// callStack is a simple LIFO stack of call frames.
type callStack struct {
	frames []callFrame
}

func (s *callStack) push(f callFrame) { s.frames = append(s.frames, f) }

func (s *callStack) pop() (callFrame, bool) {
	if len(s.frames) == 0 {
		return callFrame{}, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

func (s *callStack) peek() (*callFrame, bool) {
	if len(s.frames) == 0 {
		return nil, false
	}
	return &s.frames[len(s.frames)-1], true
}

func (s *callStack) depth() int { return len(s.frames) }

func (s *callStack) snapshot() []callFrame {
	out := make([]callFrame, len(s.frames))
	copy(out, s.frames)
	return out
}

// Options configures a new Engine.
type Options struct {
	TimelineCapacity int
	HistoryCapacity  int
	Index            *instrindex.Index // nil disables instruction-level features
}

// Engine owns a Host handle, the breakpoint set, the live call stack, the
// instruction pointer/stepper, and the timeline ring.
type Engine struct {
	host        hostfacade.Host
	handle      hostfacade.ContractHandle
	breakpoints *BreakpointSet
	stack       callStack
	ip          *stepper.InstructionPointer
	stepper     *stepper.Stepper
	timeline    *timeline.Timeline
	index       *instrindex.Index

	paused     bool
	lastError  error
	nextStep   int
	lastResult transcode.TypedValue
}

// New constructs an Engine bound to host and a registered contract handle.
func New(host hostfacade.Host, handle hostfacade.ContractHandle, opts Options) *Engine {
	ip := stepper.NewInstructionPointer(opts.HistoryCapacity)
	return &Engine{
		host:        host,
		handle:      handle,
		breakpoints: NewBreakpointSet(),
		ip:          ip,
		stepper:     stepper.NewStepper(ip),
		timeline:    timeline.New(opts.TimelineCapacity),
		index:       opts.Index,
	}
}

// Breakpoints exposes the engine's breakpoint set for CLI/REPL wiring.
func (e *Engine) Breakpoints() *BreakpointSet { return e.breakpoints }

// Paused reports whether the engine is currently holding at a pause point.
func (e *Engine) Paused() bool { return e.paused }

// CallStack returns a defensive copy of the live call stack.
func (e *Engine) CallStack() []callFrame { return e.stack.snapshot() }

// LastError returns the error surfaced by the most recent Execute call, if
// any; the engine remains usable for inspection afterward.
func (e *Engine) LastError() error { return e.lastError }

// LastResult returns the return value of the most recent successful
// Execute call.
func (e *Engine) LastResult() transcode.TypedValue { return e.lastResult }

// Execute transcodes argsText, invokes function on the bound contract, and
// reconstructs the call stack from the diagnostic events the host produced.
// A host panic or a contract-level error never escapes as a Go panic; both
// are captured and returned, leaving the engine usable for inspection
// afterward.
func (e *Engine) Execute(function, argsText string) (result transcode.TypedValue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = dbgerr.Execution(fmt.Sprintf("host panic: %v", r), nil)
			e.lastError = err
		}
	}()

	args, perr := transcode.Parse(argsText)
	if perr != nil {
		e.lastError = perr
		return transcode.TypedValue{}, perr
	}

	e.stack = callStack{}
	root := callFrame{FunctionName: function}
	e.stack.push(root)

	if e.breakpoints.HasUnconditional(function) {
		e.paused = true
	}

	start := wallClockNow()
	val, invErr := e.host.Invoke(e.handle, function, args)
	elapsed := wallClockNow() - start

	if invErr != nil {
		wrapped := dbgerr.Execution(invErr.Error(), invErr)
		e.lastError = wrapped
		e.finalizeRoot(elapsed)
		return transcode.TypedValue{}, wrapped
	}

	e.reconstructFromEvents()
	e.finalizeRoot(elapsed)
	e.lastResult = val
	e.lastError = nil
	return val, nil
}

func (e *Engine) finalizeRoot(elapsedMS int64) {
	root, ok := e.stack.pop()
	if !ok {
		return
	}
	root.DurationMS = &elapsedMS
	e.stack.push(root)
}

// reconstructFromEvents walks the host's diagnostic events and pushes/pops
// frames named "nested_call" for cross-contract activity the host reports
// only as Call/Return events without a resolvable callee name.
func (e *Engine) reconstructFromEvents() {
	for _, ev := range classifyEvents(e.host.Events()) {
		switch ev.Kind {
		case DiagContractCall:
			name := ev.Function
			if name == "" {
				name = "nested_call"
			}
			id := ev.ContractID
			e.stack.push(callFrame{FunctionName: name, ContractID: &id})
		case DiagContractReturn:
			if e.stack.depth() > 1 {
				e.stack.pop()
			}
		}
	}
}

// classifyEvents maps the host's raw events into DiagnosticEvents. Events
// whose first topic is "call" or "return" are recognized; everything else is
// DiagOther and ignored for call-stack purposes.
func classifyEvents(events []hostfacade.ContractEvent) []DiagnosticEvent {
	var out []DiagnosticEvent
	for _, ev := range events {
		if len(ev.Topics) == 0 {
			out = append(out, DiagnosticEvent{Kind: DiagOther})
			continue
		}
		switch ev.Topics[0] {
		case "call":
			function := ""
			if len(ev.Topics) > 1 {
				function = ev.Topics[1]
			}
			out = append(out, DiagnosticEvent{Kind: DiagContractCall, ContractID: ev.ContractID, Function: function})
		case "return":
			out = append(out, DiagnosticEvent{Kind: DiagContractReturn, ContractID: ev.ContractID})
		default:
			out = append(out, DiagnosticEvent{Kind: DiagOther})
		}
	}
	return out
}

// wallClockNow is a seam over time measurement so tests can stub a fixed
// clock; production code uses the real one (see clock.go).
var wallClockNow = defaultWallClock
