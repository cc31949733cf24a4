package engine

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/promisszn/soroban-debugger-sub000/internal/format"
	"github.com/promisszn/soroban-debugger-sub000/internal/trace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CaptureTrace renders the engine's state after Execute into the persisted
// trace file format: the call stack flattened into a depth-tagged sequence,
// the host's final storage and budget, the last result, and every emitted
// event.
func (e *Engine) CaptureTrace(label, contract, function, argsText string) *trace.ExecutionTrace {
	storage := make(map[string]interface{}, len(e.host.Storage()))
	for k, v := range e.host.Storage() {
		var parsed interface{}
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			parsed = v
		}
		storage[k] = parsed
	}

	budget := e.host.Budget()
	calls := make([]trace.CallEntry, 0, len(e.stack.frames))
	for i, f := range e.stack.frames {
		entry := trace.CallEntry{Function: f.FunctionName, Depth: uint32(i)}
		calls = append(calls, entry)
	}

	events := make([]trace.EventEntry, 0, len(e.host.Events()))
	for _, ev := range e.host.Events() {
		id := ev.ContractID
		events = append(events, trace.EventEntry{ContractID: &id, Topics: ev.Topics})
	}

	var labelPtr, contractPtr, functionPtr, argsPtr *string
	if label != "" {
		labelPtr = &label
	}
	if contract != "" {
		contractPtr = &contract
	}
	if function != "" {
		functionPtr = &function
	}
	if argsText != "" {
		argsPtr = &argsText
	}

	var returnValue interface{}
	if e.lastError == nil {
		returnValue = format.JSONValue(e.lastResult)
	}

	return &trace.ExecutionTrace{
		Label:    labelPtr,
		Contract: contractPtr,
		Function: functionPtr,
		Args:     argsPtr,
		Storage:  storage,
		Budget: &trace.Budget{
			CPUInstructions: budget.CPUInstructions,
			MemoryBytes:     budget.MemoryBytes,
			CPULimit:        uint64Ptr(budget.CPULimit),
			MemoryLimit:     uint64Ptr(budget.MemoryLimit),
		},
		ReturnValue:  returnValue,
		CallSequence: calls,
		Events:       events,
	}
}

func uint64Ptr(v uint64) *uint64 {
	if v == 0 {
		return nil
	}
	return &v
}
