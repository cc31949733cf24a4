package compare

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promisszn/soroban-debugger-sub000/internal/trace"
)

func strp(s string) *string { return &s }

func TestDiffStoragePartitions(t *testing.T) {
	a := map[string]interface{}{"a": "1", "b": "2", "c": "3"}
	b := map[string]interface{}{"a": "1", "b": "20", "d": "4"}
	d := diffStorage(a, b)
	require.Equal(t, map[string]interface{}{"d": "4"}, d.OnlyInB)
	require.Equal(t, map[string]interface{}{"c": "3"}, d.OnlyInA)
	require.Equal(t, [2]interface{}{"2", "20"}, d.Modified["b"])
	require.Equal(t, 1, d.UnchangedCount)
}

func TestDiffBudgetSignedDelta(t *testing.T) {
	a := &trace.Budget{CPUInstructions: 100, MemoryBytes: 50}
	b := &trace.Budget{CPUInstructions: 80, MemoryBytes: 60}
	d := diffBudget(a, b)
	require.Equal(t, "-20", d.CPUDelta.String())
	require.Equal(t, "10", d.MemoryDelta.String())
}

func TestDiffBudgetSymmetryInversion(t *testing.T) {
	a := &trace.Budget{CPUInstructions: 100, MemoryBytes: 50}
	b := &trace.Budget{CPUInstructions: 80, MemoryBytes: 60}
	ab := diffBudget(a, b)
	ba := diffBudget(b, a)
	require.Equal(t, ab.CPUDelta.Neg(ab.CPUDelta).String(), ba.CPUDelta.String())
}

func TestDiffBudgetMissingSide(t *testing.T) {
	a := &trace.Budget{CPUInstructions: 100}
	d := diffBudget(a, nil)
	require.Nil(t, d.CPUDelta)
}

func TestLCSIdenticalSequencesAllSame(t *testing.T) {
	calls := []trace.CallEntry{
		{Function: "foo", Depth: 0},
		{Function: "bar", Depth: 1},
	}
	lines := lcsDiff(calls, calls)
	for _, l := range lines {
		require.Equal(t, LineSame, l.Kind)
	}
}

func TestLCSReconstructsBothSides(t *testing.T) {
	a := []trace.CallEntry{
		{Function: "init", Depth: 0},
		{Function: "transfer", Depth: 1},
		{Function: "finish", Depth: 0},
	}
	b := []trace.CallEntry{
		{Function: "init", Depth: 0},
		{Function: "mint", Depth: 1},
		{Function: "finish", Depth: 0},
	}
	lines := lcsDiff(a, b)

	var aRecon, bRecon []string
	for _, l := range lines {
		if l.Kind != LineOnlyB {
			aRecon = append(aRecon, l.Text)
		}
		if l.Kind != LineOnlyA {
			bRecon = append(bRecon, l.Text)
		}
	}

	var aExpect, bExpect []string
	for _, c := range a {
		aExpect = append(aExpect, formatCall(c))
	}
	for _, c := range b {
		bExpect = append(bExpect, formatCall(c))
	}
	require.Equal(t, aExpect, aRecon)
	require.Equal(t, bExpect, bRecon)
}

func TestDiffFlowIdenticalFlag(t *testing.T) {
	calls := []trace.CallEntry{{Function: "foo", Depth: 0}}
	fd := diffFlow(calls, calls)
	require.True(t, fd.Identical)

	other := []trace.CallEntry{{Function: "bar", Depth: 0}}
	fd2 := diffFlow(calls, other)
	require.False(t, fd2.Identical)
}

func TestFormatCallWithAndWithoutArgs(t *testing.T) {
	withArgs := trace.CallEntry{Function: "transfer", Args: strp(`["a","b"]`), Depth: 1}
	require.Equal(t, `  transfer(["a","b"])`, formatCall(withArgs))

	noArgs := trace.CallEntry{Function: "finish", Depth: 0}
	require.Equal(t, "finish()", formatCall(noArgs))
}

func TestCompareEndToEnd(t *testing.T) {
	a := &trace.ExecutionTrace{
		Label:    strp("A"),
		Contract: strp("CID"),
		Function: strp("transfer"),
		Storage:  map[string]interface{}{"balance": "100"},
		Budget:   &trace.Budget{CPUInstructions: 1000, MemoryBytes: 200},
		CallSequence: []trace.CallEntry{
			{Function: "transfer", Depth: 0},
		},
	}
	b := &trace.ExecutionTrace{
		Label:    strp("B"),
		Contract: strp("CID"),
		Function: strp("transfer"),
		Storage:  map[string]interface{}{"balance": "80"},
		Budget:   &trace.Budget{CPUInstructions: 1200, MemoryBytes: 220},
		CallSequence: []trace.CallEntry{
			{Function: "transfer", Depth: 0},
			{Function: "nested_call", Depth: 1},
		},
	}
	report := Compare(a, b)
	require.Equal(t, [2]interface{}{"100", "80"}, report.StorageDiff.Modified["balance"])
	require.Equal(t, "200", report.BudgetDiff.CPUDelta.String())
	require.False(t, report.FlowDiff.Identical)

	rendered := RenderReport(report)
	require.Contains(t, rendered, "Execution Trace Comparison")
	require.Contains(t, rendered, "balance")
	require.Contains(t, rendered, "nested_call")
}

func TestRenderReportNACpuPercentWhenZeroBase(t *testing.T) {
	a := &trace.ExecutionTrace{Budget: &trace.Budget{CPUInstructions: 0, MemoryBytes: 0}}
	b := &trace.ExecutionTrace{Budget: &trace.Budget{CPUInstructions: 10, MemoryBytes: 0}}
	rendered := RenderReport(Compare(a, b))
	require.Contains(t, rendered, "N/A")
}
