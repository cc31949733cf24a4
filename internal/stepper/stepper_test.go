package stepper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdvanceToAndHistory(t *testing.T) {
	ip := NewInstructionPointer(3)
	ip.AdvanceTo(0)
	ip.AdvanceTo(1)
	ip.AdvanceTo(2)
	require.Equal(t, 2, ip.CurrentIndex())
	require.Equal(t, 2, ip.HistoryLen()) // 0 and 1 pushed

	idx, ok := ip.StepBack()
	require.True(t, ok)
	require.Equal(t, 1, idx)
	require.Equal(t, 1, ip.CurrentIndex())
}

func TestHistoryBoundedFIFO(t *testing.T) {
	ip := NewInstructionPointer(2)
	for i := 0; i < 5; i++ {
		ip.AdvanceTo(i)
	}
	require.LessOrEqual(t, ip.HistoryLen(), 2)
}

func TestStepBackEmptyFails(t *testing.T) {
	ip := NewInstructionPointer(10)
	_, ok := ip.StepBack()
	require.False(t, ok)
}

func TestCallDepthNeverNegative(t *testing.T) {
	ip := NewInstructionPointer(10)
	ip.UpdateCallStack(false, true)
	ip.UpdateCallStack(false, true)
	require.Equal(t, 0, ip.CallStackDepth())
	ip.UpdateCallStack(true, false)
	require.Equal(t, 1, ip.CallStackDepth())
}

func TestStepOverPausesAtSameDepth(t *testing.T) {
	ip := NewInstructionPointer(10)
	ip.UpdateCallStack(true, false) // depth 1
	s := NewStepper(ip)
	s.Start(StepOver) // target depth = 1
	ip.UpdateCallStack(true, false) // depth 2, deeper call
	require.False(t, s.ShouldPause(Instruction{}))
	ip.UpdateCallStack(false, true) // back to depth 1
	require.True(t, s.ShouldPause(Instruction{}))
}

func TestStepOutFromRootHasNoTarget(t *testing.T) {
	ip := NewInstructionPointer(10)
	s := NewStepper(ip)
	s.Start(StepOut)
	require.False(t, s.ShouldPause(Instruction{}))
}

func TestStepBlockPausesOnControlFlowOrBoundary(t *testing.T) {
	ip := NewInstructionPointer(10)
	s := NewStepper(ip)
	s.Start(StepBlock)
	require.True(t, s.ShouldPause(Instruction{IsControlFlow: true}))
	require.True(t, s.ShouldPause(Instruction{LocalIndex: 0}))
	require.False(t, s.ShouldPause(Instruction{LocalIndex: 3}))
}

func TestStepIntoAlwaysPauses(t *testing.T) {
	ip := NewInstructionPointer(10)
	s := NewStepper(ip)
	s.Start(StepInto)
	require.True(t, s.ShouldPause(Instruction{}))
}

func TestInactiveStepperNeverPauses(t *testing.T) {
	ip := NewInstructionPointer(10)
	s := NewStepper(ip)
	require.False(t, s.ShouldPause(Instruction{IsControlFlow: true}))
}
