// Package timeline implements the bounded snapshot ring supporting
// backward/forward stepping, jump-to-step, and truncate-on-branch semantics.
package timeline

// CallFrame mirrors the engine's frame shape as captured at snapshot time.
type CallFrame struct {
	FunctionName string
	ContractID   *string
	DurationMS   *int64
}

// Budget is the budget portion of a snapshot.
type Budget struct {
	CPUInstructions uint64
	CPULimit        uint64
	MemoryBytes     uint64
	MemoryLimit     uint64
}

// Snapshot is an immutable capture of engine state at one step.
type Snapshot struct {
	Step             int
	InstructionIndex int
	FunctionName     string
	CallStack        []CallFrame
	Storage          map[string]string
	Budget           Budget
	EventsCount      int
	WallClockEpochMS int64
}

// Timeline is a fixed-capacity ring with an integer cursor.
type Timeline struct {
	capacity  int
	snapshots []Snapshot
	cursor    int // index into snapshots of "current"; -1 when empty
	nextStep  int
}

// New constructs a Timeline with the given capacity (default 100 applied
// here when capacity <= 0).
func New(capacity int) *Timeline {
	if capacity <= 0 {
		capacity = 100
	}
	return &Timeline{capacity: capacity, cursor: -1}
}

func (t *Timeline) Len() int     { return len(t.snapshots) }
func (t *Timeline) Cursor() int  { return t.cursor }

// Current returns the snapshot at the cursor, or (zero, false) if empty.
func (t *Timeline) Current() (Snapshot, bool) {
	if t.cursor < 0 || t.cursor >= len(t.snapshots) {
		return Snapshot{}, false
	}
	return t.snapshots[t.cursor], true
}

// Push appends a snapshot, first truncating everything strictly after the
// cursor (branch-on-forward-step-after-back), then evicting the oldest entry
// FIFO if at capacity. The snapshot's Step field is stamped by the caller;
// Push does not renumber it.
func (t *Timeline) Push(s Snapshot) {
	if t.cursor >= 0 && t.cursor < len(t.snapshots)-1 {
		t.snapshots = t.snapshots[:t.cursor+1]
	}
	if len(t.snapshots) >= t.capacity {
		t.snapshots = t.snapshots[1:]
	}
	t.snapshots = append(t.snapshots, s)
	t.cursor = len(t.snapshots) - 1
}

// StepBack moves the cursor back one position, returning the new current
// snapshot, or (zero, false) if already at the start.
func (t *Timeline) StepBack() (Snapshot, bool) {
	if t.cursor <= 0 {
		return Snapshot{}, false
	}
	t.cursor--
	return t.snapshots[t.cursor], true
}

// StepForward moves the cursor forward one position within already-recorded
// history (it does not create new snapshots).
func (t *Timeline) StepForward() (Snapshot, bool) {
	if t.cursor < 0 || t.cursor >= len(t.snapshots)-1 {
		return Snapshot{}, false
	}
	t.cursor++
	return t.snapshots[t.cursor], true
}

// Goto locates the snapshot whose Step field equals n and sets the cursor to
// it, returning the snapshot found.
func (t *Timeline) Goto(n int) (Snapshot, bool) {
	for i, s := range t.snapshots {
		if s.Step == n {
			t.cursor = i
			return s, true
		}
	}
	return Snapshot{}, false
}

// All returns every retained snapshot in order (oldest first). The slice is
// a copy; callers may not mutate the timeline's internal storage through it.
func (t *Timeline) All() []Snapshot {
	out := make([]Snapshot, len(t.snapshots))
	copy(out, t.snapshots)
	return out
}
