package engine

import (
	"github.com/promisszn/soroban-debugger-sub000/internal/instrindex"
	"github.com/promisszn/soroban-debugger-sub000/internal/stepper"
	"github.com/promisszn/soroban-debugger-sub000/internal/timeline"
)

// StartStepping begins a stepping session in the given mode.
func (e *Engine) StartStepping(mode stepper.StepMode) {
	e.stepper.Start(mode)
}

// Step advances the instruction pointer by one decoded instruction, pushes a
// new timeline snapshot, and reports whether the stepper's pause predicate
// fired. With no InstructionIndex configured, Step is a no-op that reports
// not-paused: an instruction-index parse failure disables instruction-level
// features without disabling function-level execution.
func (e *Engine) Step() (paused bool) {
	if e.index == nil {
		return false
	}
	next := e.ip.CurrentIndex() + 1
	records := e.index.Records
	if next >= len(records) {
		e.stepper.Stop()
		return false
	}
	e.ip.AdvanceTo(next)
	rec := records[next]
	e.ip.UpdateCallStack(rec.IsCall(), rec.Opcode == instrindex.OpReturn)

	instr := stepper.Instruction{IsControlFlow: rec.IsControlFlow(), LocalIndex: rec.LocalIndex}
	shouldPause := e.stepper.ShouldPause(instr)
	e.pushSnapshot(next)
	if shouldPause {
		e.paused = true
	}
	return shouldPause
}

// ContinueExecution clears stepping state and runs to completion or the
// next breakpoint.
func (e *Engine) ContinueExecution() {
	e.stepper.Stop()
	e.paused = false
	if e.index == nil {
		return
	}
	for {
		if e.ip.CurrentIndex()+1 >= len(e.index.Records) {
			return
		}
		if e.Step() {
			return
		}
	}
}

// StepBack reverts to the previous timeline snapshot and reconstitutes
// engine state from it. Returns false if already at the start.
func (e *Engine) StepBack() bool {
	snap, ok := e.timeline.StepBack()
	if !ok {
		return false
	}
	e.reconstituteFrom(snap)
	return true
}

// ContinueBack repeatedly steps back to the earliest retained snapshot.
func (e *Engine) ContinueBack() {
	for e.StepBack() {
	}
}

// GotoStep jumps the timeline cursor to the snapshot whose Step equals n and
// reconstitutes engine state from it.
func (e *Engine) GotoStep(n int) bool {
	snap, ok := e.timeline.Goto(n)
	if !ok {
		return false
	}
	e.reconstituteFrom(snap)
	return true
}

func (e *Engine) reconstituteFrom(snap timeline.Snapshot) {
	e.ip.AdvanceTo(snap.InstructionIndex)
	e.stack = callStack{frames: append([]callFrame(nil), snap.CallStack...)}
}

func (e *Engine) pushSnapshot(instrIndex int) {
	budget := e.host.Budget()
	storage := e.host.Storage()
	e.timeline.Push(timeline.Snapshot{
		Step:             e.nextStep,
		InstructionIndex: instrIndex,
		FunctionName:     currentFunctionName(&e.stack),
		CallStack:        e.stack.snapshot(),
		Storage:          storage,
		Budget: timeline.Budget{
			CPUInstructions: budget.CPUInstructions,
			CPULimit:        budget.CPULimit,
			MemoryBytes:     budget.MemoryBytes,
			MemoryLimit:     budget.MemoryLimit,
		},
		EventsCount:      len(e.host.Events()),
		WallClockEpochMS: wallClockNow(),
	})
	e.nextStep++
}

func currentFunctionName(s *callStack) string {
	if f, ok := s.peek(); ok {
		return f.FunctionName
	}
	return ""
}
