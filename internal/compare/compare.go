// Package compare implements the LCS-based trace comparison engine: storage,
// budget, return-value, flow, and event diffs between two ExecutionTraces.
package compare

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/promisszn/soroban-debugger-sub000/internal/trace"
)

// StorageDiff is the storage-key-level difference between two traces.
type StorageDiff struct {
	OnlyInA        map[string]interface{}
	OnlyInB        map[string]interface{}
	Modified       map[string][2]interface{}
	UnchangedCount int
}

// BudgetDiff carries signed 128-bit deltas (B - A); nil when either side
// lacks a budget.
type BudgetDiff struct {
	A, B        *trace.Budget
	CPUDelta    *big.Int
	MemoryDelta *big.Int
}

// ReturnValueDiff is a structural-equality comparison of return values.
type ReturnValueDiff struct {
	A, B  interface{}
	Equal bool
}

// DiffLineKind tags a unified-diff line.
type DiffLineKind int

const (
	LineSame DiffLineKind = iota
	LineOnlyA
	LineOnlyB
)

// DiffLine is one line of the unified-style call-sequence diff.
type DiffLine struct {
	Kind DiffLineKind
	Text string
}

// FlowDiff is the LCS-based call-sequence comparison.
type FlowDiff struct {
	ACalls    []trace.CallEntry
	BCalls    []trace.CallEntry
	DiffLines []DiffLine
	Identical bool
}

// EventDiff is a structural vector comparison of two event lists.
type EventDiff struct {
	AEvents   []trace.EventEntry
	BEvents   []trace.EventEntry
	Identical bool
}

// Report combines every dimension of a two-trace comparison.
type Report struct {
	LabelA          string
	LabelB          string
	StorageDiff     StorageDiff
	BudgetDiff      BudgetDiff
	ReturnValueDiff ReturnValueDiff
	FlowDiff        FlowDiff
	EventDiff       EventDiff
}

// Compare produces a Report for two ExecutionTraces.
func Compare(a, b *trace.ExecutionTrace) Report {
	labelA, labelB := "Trace A", "Trace B"
	if a.Label != nil {
		labelA = *a.Label
	}
	if b.Label != nil {
		labelB = *b.Label
	}
	return Report{
		LabelA:          labelA,
		LabelB:          labelB,
		StorageDiff:     diffStorage(a.Storage, b.Storage),
		BudgetDiff:      diffBudget(a.Budget, b.Budget),
		ReturnValueDiff: diffReturnValue(a.ReturnValue, b.ReturnValue),
		FlowDiff:        diffFlow(a.CallSequence, b.CallSequence),
		EventDiff:       diffEvents(a.Events, b.Events),
	}
}

func diffStorage(a, b map[string]interface{}) StorageDiff {
	d := StorageDiff{OnlyInA: map[string]interface{}{}, OnlyInB: map[string]interface{}{}, Modified: map[string][2]interface{}{}}
	for k, av := range a {
		if bv, ok := b[k]; ok {
			if cmp.Equal(av, bv) {
				d.UnchangedCount++
			} else {
				d.Modified[k] = [2]interface{}{av, bv}
			}
		} else {
			d.OnlyInA[k] = av
		}
	}
	for k, bv := range b {
		if _, ok := a[k]; !ok {
			d.OnlyInB[k] = bv
		}
	}
	return d
}

func diffBudget(a, b *trace.Budget) BudgetDiff {
	bd := BudgetDiff{A: a, B: b}
	if a != nil && b != nil {
		bd.CPUDelta = new(big.Int).Sub(
			new(big.Int).SetUint64(b.CPUInstructions),
			new(big.Int).SetUint64(a.CPUInstructions),
		)
		bd.MemoryDelta = new(big.Int).Sub(
			new(big.Int).SetUint64(b.MemoryBytes),
			new(big.Int).SetUint64(a.MemoryBytes),
		)
	}
	return bd
}

func diffReturnValue(a, b interface{}) ReturnValueDiff {
	return ReturnValueDiff{A: a, B: b, Equal: cmp.Equal(a, b)}
}

func diffFlow(a, b []trace.CallEntry) FlowDiff {
	identical := len(a) == len(b)
	if identical {
		for i := range a {
			if !a[i].Equal(b[i]) {
				identical = false
				break
			}
		}
	}
	return FlowDiff{
		ACalls:    a,
		BCalls:    b,
		DiffLines: lcsDiff(a, b),
		Identical: identical,
	}
}

// lcsDiff computes the unified-style diff of two call sequences via the
// standard O(n*m) LCS dynamic-program and backtrack. A streaming variant
// would be needed for very large traces.
func lcsDiff(a, b []trace.CallEntry) []DiffLine {
	n, m := len(a), len(b)
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1].Equal(b[j-1]) {
				table[i][j] = table[i-1][j-1] + 1
			} else if table[i-1][j] >= table[i][j-1] {
				table[i][j] = table[i-1][j]
			} else {
				table[i][j] = table[i][j-1]
			}
		}
	}

	var lines []DiffLine
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1].Equal(b[j-1]):
			lines = append(lines, DiffLine{Kind: LineSame, Text: formatCall(a[i-1])})
			i--
			j--
		case j > 0 && (i == 0 || table[i][j-1] >= table[i-1][j]):
			lines = append(lines, DiffLine{Kind: LineOnlyB, Text: formatCall(b[j-1])})
			j--
		default:
			lines = append(lines, DiffLine{Kind: LineOnlyA, Text: formatCall(a[i-1])})
			i--
		}
	}
	// reverse
	for l, r := 0, len(lines)-1; l < r; l, r = l+1, r-1 {
		lines[l], lines[r] = lines[r], lines[l]
	}
	return lines
}

func formatCall(e trace.CallEntry) string {
	indent := strings.Repeat("  ", int(e.Depth))
	if e.Args != nil {
		return fmt.Sprintf("%s%s(%s)", indent, e.Function, *e.Args)
	}
	return fmt.Sprintf("%s%s()", indent, e.Function)
}

func diffEvents(a, b []trace.EventEntry) EventDiff {
	return EventDiff{AEvents: a, BEvents: b, Identical: cmp.Equal(a, b)}
}

// NonOnlyA returns the lines restricted to non-OnlyA lines, which
// reconstructs trace B's call sequence text.
func NonOnlyA(lines []DiffLine) []string {
	var out []string
	for _, l := range lines {
		if l.Kind != LineOnlyA {
			out = append(out, l.Text)
		}
	}
	return out
}

// NonOnlyB returns the lines restricted to non-OnlyB lines, equal to A.
func NonOnlyB(lines []DiffLine) []string {
	var out []string
	for _, l := range lines {
		if l.Kind != LineOnlyB {
			out = append(out, l.Text)
		}
	}
	return out
}

// RenderReport renders a human-readable comparison report. Budget percentage
// change is printed relative to A when A's value is positive, and as "N/A"
// otherwise (supplemented rendering behavior from the original engine).
func RenderReport(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Execution Trace Comparison\n  A: %s\n  B: %s\n\n", r.LabelA, r.LabelB)

	fmt.Fprintln(&b, "Storage Changes")
	sd := r.StorageDiff
	if len(sd.OnlyInA) == 0 && len(sd.OnlyInB) == 0 && len(sd.Modified) == 0 {
		fmt.Fprintln(&b, "  (identical)")
	} else {
		for _, k := range sortedKeys(sd.OnlyInA) {
			fmt.Fprintf(&b, "  - %s = %v\n", k, sd.OnlyInA[k])
		}
		for _, k := range sortedKeys(sd.OnlyInB) {
			fmt.Fprintf(&b, "  + %s = %v\n", k, sd.OnlyInB[k])
		}
		for _, k := range sortedModifiedKeys(sd.Modified) {
			v := sd.Modified[k]
			fmt.Fprintf(&b, "  ~ %s: A=%v B=%v\n", k, v[0], v[1])
		}
		fmt.Fprintf(&b, "  unchanged: %d\n", sd.UnchangedCount)
	}

	fmt.Fprintln(&b, "\nBudget Usage")
	bd := r.BudgetDiff
	if bd.A != nil && bd.B != nil {
		fmt.Fprintf(&b, "  cpu_instructions: A=%d B=%d delta=%s\n", bd.A.CPUInstructions, bd.B.CPUInstructions, bd.CPUDelta.String())
		fmt.Fprintf(&b, "  memory_bytes: A=%d B=%d delta=%s\n", bd.A.MemoryBytes, bd.B.MemoryBytes, bd.MemoryDelta.String())
		if bd.A.CPUInstructions > 0 {
			pct := new(big.Float).Quo(new(big.Float).SetInt(bd.CPUDelta), new(big.Float).SetUint64(bd.A.CPUInstructions))
			pct.Mul(pct, big.NewFloat(100))
			fmt.Fprintf(&b, "  cpu change: %s%%\n", pct.Text('f', 2))
		} else {
			fmt.Fprintln(&b, "  cpu change: N/A")
		}
	} else {
		fmt.Fprintln(&b, "  (no budget on one or both sides)")
	}

	fmt.Fprintln(&b, "\nReturn Value")
	if r.ReturnValueDiff.Equal {
		fmt.Fprintln(&b, "  (identical)")
	} else {
		fmt.Fprintf(&b, "  A=%v B=%v\n", r.ReturnValueDiff.A, r.ReturnValueDiff.B)
	}

	fmt.Fprintln(&b, "\nFlow")
	for _, l := range r.FlowDiff.DiffLines {
		switch l.Kind {
		case LineSame:
			fmt.Fprintf(&b, "  %s\n", l.Text)
		case LineOnlyA:
			fmt.Fprintf(&b, "- %s\n", l.Text)
		case LineOnlyB:
			fmt.Fprintf(&b, "+ %s\n", l.Text)
		}
	}

	fmt.Fprintln(&b, "\nEvents")
	if r.EventDiff.Identical {
		fmt.Fprintln(&b, "  (identical)")
	} else {
		fmt.Fprintf(&b, "  A has %d event(s), B has %d event(s)\n", len(r.EventDiff.AEvents), len(r.EventDiff.BEvents))
	}

	return b.String()
}

func sortedKeys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedModifiedKeys(m map[string][2]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
