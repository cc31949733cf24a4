// Package stepper implements the step-mode state machine and bounded
// instruction-pointer history described for the debugger's execution engine:
// step-into, step-over, step-out, step-block, and step-back, each consulting
// call-depth and opcode classification to decide when to pause.
package stepper

// StepMode selects which instruction boundaries the stepper pauses at.
type StepMode int

const (
	StepInto StepMode = iota
	StepOver
	StepOut
	StepBlock
)

func (m StepMode) String() string {
	switch m {
	case StepInto:
		return "into"
	case StepOver:
		return "over"
	case StepOut:
		return "out"
	case StepBlock:
		return "block"
	default:
		return "unknown"
	}
}

// ParseStepMode parses the --step-mode flag value.
func ParseStepMode(s string) (StepMode, bool) {
	switch s {
	case "into":
		return StepInto, true
	case "over":
		return StepOver, true
	case "out":
		return StepOut, true
	case "block":
		return StepBlock, true
	default:
		return StepInto, false
	}
}

// Instruction is the subset of an instruction record the stepper needs to
// evaluate pause predicates, without depending on internal/instrindex
// (avoiding a dependency cycle since instrindex is a leaf parser package).
type Instruction struct {
	IsControlFlow bool
	LocalIndex    uint32
}

// InstructionPointer tracks the current decoded-instruction index, the call
// stack depth, and a bounded ring of previously-visited indices.
type InstructionPointer struct {
	currentIndex   int
	callStackDepth int
	history        []int
	historyCap     int
}

// NewInstructionPointer constructs an InstructionPointer with history bound
// H (default 1000 applied here when H <= 0).
func NewInstructionPointer(historyCap int) *InstructionPointer {
	if historyCap <= 0 {
		historyCap = 1000
	}
	return &InstructionPointer{currentIndex: -1, historyCap: historyCap}
}

func (ip *InstructionPointer) CurrentIndex() int   { return ip.currentIndex }
func (ip *InstructionPointer) CallStackDepth() int { return ip.callStackDepth }
func (ip *InstructionPointer) HistoryLen() int     { return len(ip.history) }

// AdvanceTo moves the pointer to index k, pushing the previous index onto the
// bounded history deque (FIFO eviction at the front when full).
func (ip *InstructionPointer) AdvanceTo(k int) {
	if ip.currentIndex >= 0 {
		ip.pushHistory(ip.currentIndex)
	}
	ip.currentIndex = k
}

func (ip *InstructionPointer) pushHistory(idx int) {
	if len(ip.history) >= ip.historyCap {
		ip.history = ip.history[1:]
	}
	ip.history = append(ip.history, idx)
}

// StepBack pops the most recent index from history and restores it as
// current. Returns false if history is empty.
func (ip *InstructionPointer) StepBack() (int, bool) {
	if len(ip.history) == 0 {
		return 0, false
	}
	last := ip.history[len(ip.history)-1]
	ip.history = ip.history[:len(ip.history)-1]
	ip.currentIndex = last
	return last, true
}

// UpdateCallStack increments depth on a call opcode, decrements on return,
// never below zero.
func (ip *InstructionPointer) UpdateCallStack(isCall, isReturn bool) {
	if isCall {
		ip.callStackDepth++
	}
	if isReturn && ip.callStackDepth > 0 {
		ip.callStackDepth--
	}
}

// Stepper wraps an InstructionPointer with step-mode pause logic.
type Stepper struct {
	ip          *InstructionPointer
	active      bool
	mode        StepMode
	targetDepth *int
}

// NewStepper constructs a Stepper over the given InstructionPointer.
func NewStepper(ip *InstructionPointer) *Stepper {
	return &Stepper{ip: ip}
}

func (s *Stepper) Active() bool    { return s.active }
func (s *Stepper) Mode() StepMode  { return s.mode }

// Start begins stepping in the given mode, computing the target depth per
// spec: Into has no target (pause every instruction), Over targets the
// current depth, Out targets current-1 (clamped so a depth-0 start has no
// target), Block has no target.
func (s *Stepper) Start(mode StepMode) {
	s.active = true
	s.mode = mode
	depth := s.ip.CallStackDepth()
	switch mode {
	case StepOver:
		d := depth
		s.targetDepth = &d
	case StepOut:
		if depth == 0 {
			s.targetDepth = nil
		} else {
			d := depth - 1
			s.targetDepth = &d
		}
	default:
		s.targetDepth = nil
	}
}

// Stop deactivates the stepper (used after continue_execution).
func (s *Stepper) Stop() {
	s.active = false
	s.targetDepth = nil
}

// ShouldPause evaluates the pause predicate for the given instruction at the
// instruction pointer's current call depth.
func (s *Stepper) ShouldPause(instr Instruction) bool {
	if !s.active {
		return false
	}
	depth := s.ip.CallStackDepth()
	switch s.mode {
	case StepInto:
		return true
	case StepOver:
		return s.targetDepth != nil && depth <= *s.targetDepth
	case StepOut:
		return s.targetDepth != nil && depth <= *s.targetDepth
	case StepBlock:
		return instr.IsControlFlow || instr.LocalIndex == 0
	default:
		return false
	}
}

// StepBack delegates to the InstructionPointer.
func (s *Stepper) StepBack() (int, bool) { return s.ip.StepBack() }

// InstructionPointer exposes the underlying pointer for the engine to read.
func (s *Stepper) InstructionPointer() *InstructionPointer { return s.ip }
