package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/promisszn/soroban-debugger-sub000/internal/engine"
	"github.com/promisszn/soroban-debugger-sub000/internal/hostfacade"
	"github.com/promisszn/soroban-debugger-sub000/internal/instrindex"
	"github.com/promisszn/soroban-debugger-sub000/internal/mockdispatch"
	"github.com/promisszn/soroban-debugger-sub000/internal/netsnapshot"
	"github.com/promisszn/soroban-debugger-sub000/internal/wasmmodule"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// sessionConfig gathers the flags shared by every verb that loads and runs
// a contract: run, inspect, compare's replay side, optimize, profile, and
// analyze.
type sessionConfig struct {
	ContractPath     string
	StoragePath      string
	SnapshotPath     string
	Breakpoints      []string
	Mocks            []string
	MockAllAuths     bool
	InstructionDebug bool
	StepInstructions bool
}

// session bundles the live engine and its host so verb implementations can
// invoke, inspect, and render without re-deriving the wiring each time.
type session struct {
	host   *hostfacade.InMemoryHost
	handle hostfacade.ContractHandle
	eng    *engine.Engine
	index  *instrindex.Index
}

// newSession loads a contract and wires storage, a network snapshot, mock
// dispatchers, and breakpoints onto a fresh Engine.
func newSession(cfg sessionConfig) (*session, error) {
	if cfg.ContractPath == "" {
		return nil, fmt.Errorf("--contract is required")
	}
	data, err := os.ReadFile(cfg.ContractPath)
	if err != nil {
		return nil, err
	}
	img, err := wasmmodule.Parse(data)
	if err != nil {
		return nil, err
	}

	host := hostfacade.NewInMemoryHost()
	handle, err := host.RegisterContract(data, cfg.MockAllAuths)
	if err != nil {
		return nil, err
	}

	var idx *instrindex.Index
	if cfg.InstructionDebug || cfg.StepInstructions {
		idx, _ = instrindex.Build(img) // a parse failure disables instruction-level features, not the session
	}

	if cfg.StoragePath != "" {
		raw, err := os.ReadFile(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		var entries map[string]string
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, err
		}
		for k, v := range entries {
			host.SetStorage(k, v)
		}
	}

	if cfg.SnapshotPath != "" {
		raw, err := os.ReadFile(cfg.SnapshotPath)
		if err != nil {
			return nil, err
		}
		snap, err := netsnapshot.Parse(raw)
		if err != nil {
			return nil, err
		}
		for _, c := range snap.Contracts {
			for k, v := range c.Storage {
				if b, err := json.Marshal(v); err == nil {
					host.SetStorage(k, string(b))
				}
			}
		}
	}

	registry := mockdispatch.New()
	for _, m := range cfg.Mocks {
		spec, err := mockdispatch.ParseSpec(m)
		if err != nil {
			return nil, err
		}
		registry.Register(spec)
	}
	if len(cfg.Mocks) > 0 {
		host.RegisterMockDispatcher(handle.Address, registry)
	}

	eng := engine.New(host, handle, engine.Options{Index: idx})
	for _, bp := range cfg.Breakpoints {
		function, cond, err := parseBreakpointSpec(bp)
		if err != nil {
			return nil, err
		}
		if cond == nil {
			eng.Breakpoints().Set(function)
		} else {
			eng.Breakpoints().SetConditional(function, *cond)
		}
	}

	return &session{host: host, handle: handle, eng: eng, index: idx}, nil
}
