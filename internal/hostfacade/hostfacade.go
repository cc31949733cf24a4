// Package hostfacade defines the uniform capability surface the rest of the
// core requires over a deterministic contract host, and ships an in-memory
// reference implementation used by the engine and its tests. Grounded on
// original_source/src/runtime/mocking.rs for the mock-dispatch wiring.
package hostfacade

import (
	"fmt"
	"sync"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
	"github.com/promisszn/soroban-debugger-sub000/internal/mockdispatch"
	"github.com/promisszn/soroban-debugger-sub000/internal/transcode"
	"github.com/promisszn/soroban-debugger-sub000/internal/wasmmodule"
)

// ContractHandle identifies a registered contract image within a Host.
type ContractHandle struct {
	Address string
}

// InvokeErrorKind distinguishes the three possible invoke() outcomes beyond
// plain success.
type InvokeErrorKind int

const (
	// InvokeErrorContract is a host-reported contract error carrying a code.
	InvokeErrorContract InvokeErrorKind = iota
	// InvokeErrorAbort is a fatal host abort (panic, trap, out-of-budget).
	InvokeErrorAbort
	// InvokeErrorConversion is a failure converting a TypedValue across the
	// host boundary.
	InvokeErrorConversion
)

// InvokeError is the structured failure returned by invoke().
type InvokeError struct {
	Kind    InvokeErrorKind
	Code    uint32
	Message string
}

func (e *InvokeError) Error() string {
	switch e.Kind {
	case InvokeErrorContract:
		return fmt.Sprintf("contract error: code %d", e.Code)
	case InvokeErrorAbort:
		return fmt.Sprintf("abort: %s", e.Message)
	default:
		return fmt.Sprintf("conversion error: %s", e.Message)
	}
}

// BudgetInfo reports current resource consumption.
type BudgetInfo struct {
	CPUInstructions uint64
	CPULimit        uint64
	MemoryBytes     uint64
	MemoryLimit     uint64
}

// ContractEvent is a diagnostic or contract-emitted event.
type ContractEvent struct {
	ContractID string
	Topics     []string
	Data       transcode.TypedValue
}

// AuthorizedFunctionKind tags the variant of an AuthorizedFunction.
type AuthorizedFunctionKind int

const (
	AuthFunctionContract AuthorizedFunctionKind = iota
	AuthFunctionCreateContract
	AuthFunctionCreateContractV2
)

// AuthorizedFunction is one node's called-function description within an
// authorization tree.
type AuthorizedFunction struct {
	Kind        AuthorizedFunctionKind
	ContractID  string
	FunctionSig string
	Args        []transcode.TypedValue
	CreateSpec  string
}

// AuthorizedInvocation is one node of an authorization tree: the function
// the address authorized, plus any sub-invocations it triggered.
type AuthorizedInvocation struct {
	Function AuthorizedFunction
	SubCalls []AuthorizedInvocation
}

// AuthEntry pairs an address with the invocation tree it authorized.
type AuthEntry struct {
	Address    string
	Invocation AuthorizedInvocation
}

// Host is the capability surface the Execution Engine consumes: any
// concrete host meeting this interface is substitutable.
type Host interface {
	RegisterContract(wasmBytes []byte, mocksAllAuths bool) (ContractHandle, error)
	Invoke(handle ContractHandle, function string, args []transcode.TypedValue) (transcode.TypedValue, *InvokeError)
	Budget() BudgetInfo
	Events() []ContractEvent
	Auths() []AuthEntry
	Now() uint64
	RegisterMockDispatcher(contractID string, registry *mockdispatch.Registry)
	// Storage reads the ledger storage visible to the currently registered
	// contract, keyed by string.
	Storage() map[string]string
	SetStorage(key, value string)
}

// contractRecord is the per-contract state tracked by InMemoryHost.
type contractRecord struct {
	handle        ContractHandle
	image         *wasmmodule.ContractImage
	mocksAllAuths bool
}

// InMemoryHost is a reference Host implementation backed entirely by Go
// state, sufficient to drive the engine and the test suite without a real
// WASM execution backend (module parsing and opcode classification, not
// execution, are this repo's scope).
type InMemoryHost struct {
	mu          sync.Mutex
	contracts   map[string]*contractRecord
	nextAddr    int
	budget      BudgetInfo
	events      []ContractEvent
	auths       []AuthEntry
	now         uint64
	dispatchers map[string]*mockdispatch.Registry
	storage     map[string]string
}

// NewInMemoryHost constructs an InMemoryHost with a zeroed budget and clock.
func NewInMemoryHost() *InMemoryHost {
	return &InMemoryHost{
		contracts:   map[string]*contractRecord{},
		dispatchers: map[string]*mockdispatch.Registry{},
		storage:     map[string]string{},
	}
}

// Storage returns a defensive copy of the current ledger storage map.
func (h *InMemoryHost) Storage() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]string, len(h.storage))
	for k, v := range h.storage {
		out[k] = v
	}
	return out
}

// SetStorage writes a single key, as a contract body would during invoke.
func (h *InMemoryHost) SetStorage(key, value string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.storage[key] = value
}

// RegisterContract parses wasmBytes and assigns it a fresh address.
func (h *InMemoryHost) RegisterContract(wasmBytes []byte, mocksAllAuths bool) (ContractHandle, error) {
	img, err := wasmmodule.Parse(wasmBytes)
	if err != nil {
		return ContractHandle{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextAddr++
	handle := ContractHandle{Address: fmt.Sprintf("C%012d", h.nextAddr)}
	h.contracts[handle.Address] = &contractRecord{handle: handle, image: img, mocksAllAuths: mocksAllAuths}
	return handle, nil
}

// Invoke looks up the exported function and, for this reference host,
// returns Void on success unless a mock dispatcher is registered for the
// target contract and resolves the call, exercising the same cross-contract
// mock path a real host would.
func (h *InMemoryHost) Invoke(handle ContractHandle, function string, args []transcode.TypedValue) (transcode.TypedValue, *InvokeError) {
	h.mu.Lock()
	rec, ok := h.contracts[handle.Address]
	h.mu.Unlock()
	if !ok {
		return transcode.TypedValue{}, &InvokeError{Kind: InvokeErrorAbort, Message: "unknown contract handle"}
	}
	if !containsExport(rec.image.Exports, function) {
		return transcode.TypedValue{}, &InvokeError{Kind: InvokeErrorContract, Code: 404}
	}

	h.mu.Lock()
	registry, hasMock := h.dispatchers[handle.Address]
	h.mu.Unlock()
	if hasMock {
		if val, matched := registry.Resolve(handle.Address, function, len(args)); matched {
			return val, nil
		}
	}
	return transcode.TypedValue{Kind: transcode.KindVoid}, nil
}

// Budget returns the current resource reading.
func (h *InMemoryHost) Budget() BudgetInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.budget
}

// SetBudget lets callers (engine, tests) drive budget consumption.
func (h *InMemoryHost) SetBudget(b BudgetInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.budget = b
}

// Events returns all events captured so far.
func (h *InMemoryHost) Events() []ContractEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]ContractEvent, len(h.events))
	copy(out, h.events)
	return out
}

// EmitEvent records a diagnostic event, simulating a contract's observable
// side effects; the engine reads recorded events but does not emit them.
func (h *InMemoryHost) EmitEvent(e ContractEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

// Auths returns the authorization trees recorded for the current invocation.
func (h *InMemoryHost) Auths() []AuthEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]AuthEntry, len(h.auths))
	copy(out, h.auths)
	return out
}

// SetAuths replaces the recorded authorization trees.
func (h *InMemoryHost) SetAuths(auths []AuthEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.auths = auths
}

// Now returns the ledger timestamp.
func (h *InMemoryHost) Now() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

// SetNow sets the ledger timestamp.
func (h *InMemoryHost) SetNow(ts uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = ts
}

// RegisterMockDispatcher installs a mock registry consulted on calls into
// contractID.
func (h *InMemoryHost) RegisterMockDispatcher(contractID string, registry *mockdispatch.Registry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dispatchers[contractID] = registry
}

// PanicToAbort recovers a panicking host call into a fatal InvokeError,
// matching the three-outcome invoke() contract even when the underlying
// contract body misbehaves.
func PanicToAbort(fn func() (transcode.TypedValue, *InvokeError)) (result transcode.TypedValue, invErr *InvokeError) {
	defer func() {
		if r := recover(); r != nil {
			invErr = &InvokeError{Kind: InvokeErrorAbort, Message: fmt.Sprintf("host panic: %v", r)}
		}
	}()
	return fn()
}

// ExecutionErr wraps an arbitrary host failure as a closed dbgerr.
func ExecutionErr(message string) error {
	return dbgerr.Execution(message, nil)
}

func containsExport(exports []string, name string) bool {
	for _, e := range exports {
		if e == name {
			return true
		}
	}
	return false
}
