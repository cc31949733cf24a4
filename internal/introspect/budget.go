package introspect

// BudgetInfo reports resource consumption with saturating-safe
// derived percentages.
type BudgetInfo struct {
	CPUInstructions uint64
	CPULimit        uint64
	MemoryBytes     uint64
	MemoryLimit     uint64
}

// CPUPercent returns consumed/limit*100, or 0 when limit is zero.
func (b BudgetInfo) CPUPercent() float64 {
	if b.CPULimit == 0 {
		return 0
	}
	return float64(b.CPUInstructions) / float64(b.CPULimit) * 100
}

// MemoryPercent returns consumed/limit*100, or 0 when limit is zero.
func (b BudgetInfo) MemoryPercent() float64 {
	if b.MemoryLimit == 0 {
		return 0
	}
	return float64(b.MemoryBytes) / float64(b.MemoryLimit) * 100
}

// NewBudgetInfo derives BudgetInfo from consumed/remaining readings, with
// limit = consumed + remaining (saturating on overflow).
func NewBudgetInfo(cpuConsumed, cpuRemaining, memConsumed, memRemaining uint64) BudgetInfo {
	return BudgetInfo{
		CPUInstructions: cpuConsumed,
		CPULimit:        saturatingAdd(cpuConsumed, cpuRemaining),
		MemoryBytes:     memConsumed,
		MemoryLimit:     saturatingAdd(memConsumed, memRemaining),
	}
}

func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a { // overflow
		return ^uint64(0)
	}
	return sum
}
