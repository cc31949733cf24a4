// Package trace defines the canonical on-disk representation of a complete
// execution: the trace file format consumed and produced by the engine and
// by the Comparison Engine. Storage is kept in total key order so two traces
// diff deterministically.
package trace

import (
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Budget is the resource-budget portion of a trace.
type Budget struct {
	CPUInstructions uint64  `json:"cpu_instructions"`
	MemoryBytes     uint64  `json:"memory_bytes"`
	CPULimit        *uint64 `json:"cpu_limit,omitempty"`
	MemoryLimit     *uint64 `json:"memory_limit,omitempty"`
}

// CallEntry is one entry in a trace's ordered call sequence.
type CallEntry struct {
	Function string  `json:"function"`
	Args     *string `json:"args,omitempty"`
	Depth    uint32  `json:"depth"`
}

// Equal reports structural equality of two CallEntry values (function, args,
// depth all equal), the relation the LCS flow diff uses.
func (c CallEntry) Equal(o CallEntry) bool {
	if c.Function != o.Function || c.Depth != o.Depth {
		return false
	}
	if (c.Args == nil) != (o.Args == nil) {
		return false
	}
	if c.Args != nil && *c.Args != *o.Args {
		return false
	}
	return true
}

// EventEntry is one captured diagnostic/contract event.
type EventEntry struct {
	ContractID *string  `json:"contract_id,omitempty"`
	Topics     []string `json:"topics"`
	Data       *string  `json:"data,omitempty"`
}

// MockCallEntry records one mock-dispatcher interception for replay/export
// (supplemented feature: original_source/src/runtime/mocking.rs's call log,
// additive to the trace file format).
type MockCallEntry struct {
	ContractID   string `json:"contract_id"`
	Function     string `json:"function"`
	ArgsCount    int    `json:"args_count"`
	Mocked       bool   `json:"mocked"`
	ReturnedText string `json:"returned_text,omitempty"`
}

// ExecutionTrace is the persisted, JSON-serializable record of a complete
// execution.
type ExecutionTrace struct {
	Label        *string           `json:"label,omitempty"`
	Contract     *string           `json:"contract,omitempty"`
	Function     *string           `json:"function,omitempty"`
	Args         *string           `json:"args,omitempty"`
	Storage      map[string]interface{} `json:"storage"`
	Budget       *Budget           `json:"budget,omitempty"`
	ReturnValue  interface{}       `json:"return_value,omitempty"`
	CallSequence []CallEntry       `json:"call_sequence"`
	Events       []EventEntry      `json:"events"`
	MockCalls    []MockCallEntry   `json:"mock_calls,omitempty"`
}

// SortedStorageKeys returns the trace's storage keys in total string order,
// the iteration order required for deterministic diffs.
func (t *ExecutionTrace) SortedStorageKeys() []string {
	keys := make([]string, 0, len(t.Storage))
	for k := range t.Storage {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Marshal serializes the trace to pretty-printed JSON.
func (t *ExecutionTrace) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, dbgerr.File("<trace>", err)
	}
	return b, nil
}

// Unmarshal deserializes JSON into an ExecutionTrace. Deserialization is
// tolerant to missing optional fields.
func Unmarshal(data []byte) (*ExecutionTrace, error) {
	var t ExecutionTrace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, dbgerr.File("<trace>", err)
	}
	if t.Storage == nil {
		t.Storage = map[string]interface{}{}
	}
	return &t, nil
}
