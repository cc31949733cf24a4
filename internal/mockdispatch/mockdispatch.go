// Package mockdispatch implements the cross-contract call interceptor: a
// registry keyed by (contract_id, function_symbol) holding a parsed return
// value, plus an append-only call log recording every intercepted call
// whether or not it matched a mock.
package mockdispatch

import (
	"fmt"
	"strings"
	"sync"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
	"github.com/promisszn/soroban-debugger-sub000/internal/transcode"
)

// Key identifies a mock by contract identity and function symbol.
type Key struct {
	ContractID string
	Function   string
}

// Spec is a registered mock: the raw return text the operator supplied and
// its parsed TypedValue.
type Spec struct {
	Key          Key
	RawReturn    string
	ParsedReturn transcode.TypedValue
}

// CallEntry is one logged interception, in insertion order.
type CallEntry struct {
	ContractID   string
	Function     string
	ArgsCount    int
	Mocked       bool
	ReturnedText string
}

// Registry is the mock dispatcher: mocks plus an append-only call log,
// guarded by a mutex since the host may invoke it from its own call path.
type Registry struct {
	mu    sync.Mutex
	mocks map[Key]Spec
	log   []CallEntry
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{mocks: map[Key]Spec{}}
}

// ParseSpec parses a mock specification of the form
// "<contract_id>.<function>=<return_expression>". Whitespace is trimmed;
// empty parts are rejected; the return expression is fed through the
// argument transcoder and must yield exactly one TypedValue.
func ParseSpec(spec string) (Spec, error) {
	eq := strings.Index(spec, "=")
	if eq < 0 {
		return Spec{}, dbgerr.Breakpoint("mock spec missing '='", nil)
	}
	key := strings.TrimSpace(spec[:eq])
	rawReturn := strings.TrimSpace(spec[eq+1:])
	dot := strings.LastIndex(key, ".")
	if dot < 0 {
		return Spec{}, dbgerr.Breakpoint("mock spec missing '.' between contract id and function", nil)
	}
	contractID := strings.TrimSpace(key[:dot])
	function := strings.TrimSpace(key[dot+1:])
	if contractID == "" || function == "" || rawReturn == "" {
		return Spec{}, dbgerr.Breakpoint("mock spec has an empty contract id, function, or return expression", nil)
	}
	values, err := transcode.Parse(rawReturn)
	if err != nil {
		return Spec{}, dbgerr.Breakpoint(fmt.Sprintf("mock return expression failed to parse: %v", err), err)
	}
	if len(values) != 1 {
		return Spec{}, dbgerr.Breakpoint(fmt.Sprintf("mock return expression must yield exactly one value, got %d", len(values)), nil)
	}
	return Spec{
		Key:          Key{ContractID: contractID, Function: function},
		RawReturn:    rawReturn,
		ParsedReturn: values[0],
	}, nil
}

// Register installs a mock, overwriting any existing mock for the same key.
func (r *Registry) Register(s Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mocks[s.Key] = s
}

// Resolve is called by the host facade on every cross-contract dispatch. It
// logs the call (mocked or not) and returns the mocked value when present.
func (r *Registry) Resolve(contractID, function string, argsCount int) (transcode.TypedValue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	spec, ok := r.mocks[Key{ContractID: contractID, Function: function}]
	entry := CallEntry{ContractID: contractID, Function: function, ArgsCount: argsCount, Mocked: ok}
	if ok {
		entry.ReturnedText = spec.RawReturn
	}
	r.log = append(r.log, entry)
	if !ok {
		return transcode.TypedValue{}, false
	}
	return spec.ParsedReturn, true
}

// CallLog returns a copy of the call log in insertion order.
func (r *Registry) CallLog() []CallEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallEntry, len(r.log))
	copy(out, r.log)
	return out
}
