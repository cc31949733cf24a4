package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promisszn/soroban-debugger-sub000/internal/hostfacade"
	"github.com/promisszn/soroban-debugger-sub000/internal/stepper"
)

func minimalModule() []byte {
	b := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	typeBody := []byte{0x01, 0x60, 0x01, 0x7F, 0x01, 0x7F}
	b = append(b, 0x01, byte(len(typeBody)))
	b = append(b, typeBody...)
	funcBody := []byte{0x01, 0x00}
	b = append(b, 0x03, byte(len(funcBody)))
	b = append(b, funcBody...)
	exportBody := []byte{0x01, 0x03, 'a', 'd', 'd', 0x00, 0x00}
	b = append(b, 0x07, byte(len(exportBody)))
	b = append(b, exportBody...)
	codeBody := []byte{0x01, 0x02, 0x00, 0x0B}
	b = append(b, 0x0A, byte(len(codeBody)))
	b = append(b, codeBody...)
	return b
}

func newTestEngine(t *testing.T) (*Engine, *hostfacade.InMemoryHost, hostfacade.ContractHandle) {
	t.Helper()
	host := hostfacade.NewInMemoryHost()
	handle, err := host.RegisterContract(minimalModule(), false)
	require.NoError(t, err)
	e := New(host, handle, Options{TimelineCapacity: 10, HistoryCapacity: 10})
	return e, host, handle
}

func TestExecuteSuccessPushesRootFrameWithDuration(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.Execute("add", `[{"type":"u32","value":10}]`)
	require.NoError(t, err)

	stack := e.CallStack()
	require.Len(t, stack, 1)
	require.Equal(t, "add", stack[0].FunctionName)
	require.NotNil(t, stack[0].DurationMS)
	require.Nil(t, e.LastError())
}

func TestExecuteUnknownFunctionSurfacesErrorWithoutPanicking(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.Execute("missing", "[]")
	require.Error(t, err)
	require.NotNil(t, e.LastError())
}

func TestExecuteBadArgsTextSurfacesTranscodeError(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.Execute("add", "{not json")
	require.Error(t, err)
}

func TestBreakpointHaltsAtEntry(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.Breakpoints().Set("add")
	_, err := e.Execute("add", "[]")
	require.NoError(t, err)
	require.True(t, e.Paused())
}

func TestReconstructFromEventsPushesNestedCallFrame(t *testing.T) {
	e, host, _ := newTestEngine(t)
	host.EmitEvent(hostfacade.ContractEvent{ContractID: "C2", Topics: []string{"call"}})
	_, err := e.Execute("add", "[]")
	require.NoError(t, err)

	stack := e.CallStack()
	require.Len(t, stack, 2)
	require.Equal(t, "nested_call", stack[1].FunctionName)
	require.NotNil(t, stack[1].ContractID)
	require.Equal(t, "C2", *stack[1].ContractID)
}

func TestReconstructFromEventsPopsOnReturnButKeepsRoot(t *testing.T) {
	e, host, _ := newTestEngine(t)
	host.EmitEvent(hostfacade.ContractEvent{ContractID: "C2", Topics: []string{"call"}})
	host.EmitEvent(hostfacade.ContractEvent{ContractID: "C2", Topics: []string{"return"}})
	_, err := e.Execute("add", "[]")
	require.NoError(t, err)

	stack := e.CallStack()
	require.Len(t, stack, 1)
	require.Equal(t, "add", stack[0].FunctionName)
}

func TestConditionalBreakpointEvaluation(t *testing.T) {
	set := NewBreakpointSet()
	set.SetConditional("transfer", Condition{Kind: ConditionArgument, Name: "amount", Operator: OpGreaterThan, Value: "100"})

	_, fired := set.EvaluateArgument("transfer", "amount", "50")
	require.False(t, fired)

	bp, fired := set.EvaluateArgument("transfer", "amount", "150")
	require.True(t, fired)
	require.Equal(t, "transfer", bp.Function)
}

func TestConditionalStorageBreakpoint(t *testing.T) {
	set := NewBreakpointSet()
	set.SetConditional("transfer", Condition{Kind: ConditionStorage, Name: "Counter", Operator: OpEquals, Value: "5"})

	_, fired := set.EvaluateStorage("transfer", "Counter", "3")
	require.False(t, fired)
	_, fired = set.EvaluateStorage("transfer", "Counter", "5")
	require.True(t, fired)
}

func TestConditionOperatorBounds(t *testing.T) {
	ge := Condition{Operator: OpGreaterOrEqual, Value: "100"}
	require.True(t, ge.Evaluate("100"))
	require.True(t, ge.Evaluate("150"))
	require.False(t, ge.Evaluate("99"))

	le := Condition{Operator: OpLessOrEqual, Value: "100"}
	require.True(t, le.Evaluate("100"))
	require.True(t, le.Evaluate("50"))
	require.False(t, le.Evaluate("101"))
}

func TestStepWithNoIndexIsNoOp(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.False(t, e.Step())
}

func TestStepBackWithEmptyTimelineReturnsFalse(t *testing.T) {
	e, _, _ := newTestEngine(t)
	require.False(t, e.StepBack())
}

func TestStartSteppingDelegatesToStepper(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.StartStepping(stepper.StepInto)
	require.True(t, e.stepper.Active())
}
