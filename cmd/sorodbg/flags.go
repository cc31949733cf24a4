package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
	"github.com/promisszn/soroban-debugger-sub000/internal/engine"
)

// sliceFlag accumulates repeatable string flags such as --breakpoint,
// --storage-filter, and --mock.
type sliceFlag []string

func (f *sliceFlag) String() string { return strings.Join(*f, ",") }

func (f *sliceFlag) Set(s string) error {
	*f = append(*f, s)
	return nil
}

// parseBreakpointSpec parses a --breakpoint/REPL break argument. The plain
// form "function" sets an unconditional breakpoint. The conditional form
// "function[arg:name op value]" or "function[storage:key op value]" builds
// an engine.Condition, where op is one of ==, !=, >, <, >=, <=.
func parseBreakpointSpec(spec string) (function string, cond *engine.Condition, err error) {
	open := strings.Index(spec, "[")
	if open < 0 {
		return spec, nil, nil
	}
	if !strings.HasSuffix(spec, "]") {
		return "", nil, dbgerr.Breakpoint(fmt.Sprintf("breakpoint spec %q missing closing ']'", spec), nil)
	}
	function = spec[:open]
	body := spec[open+1 : len(spec)-1]
	colon := strings.Index(body, ":")
	if colon < 0 {
		return "", nil, dbgerr.Breakpoint(fmt.Sprintf("breakpoint condition %q missing 'arg:' or 'storage:' prefix", body), nil)
	}
	kindText := strings.TrimSpace(body[:colon])
	rest := strings.TrimSpace(body[colon+1:])
	var kind engine.ConditionKind
	switch kindText {
	case "arg":
		kind = engine.ConditionArgument
	case "storage":
		kind = engine.ConditionStorage
	default:
		return "", nil, dbgerr.Breakpoint(fmt.Sprintf("breakpoint condition kind must be 'arg' or 'storage', got %q", kindText), nil)
	}
	op, name, value, err := splitCondition(rest)
	if err != nil {
		return "", nil, err
	}
	return function, &engine.Condition{Kind: kind, Name: name, Operator: op, Value: value}, nil
}

// splitCondition splits "name op value" on the first recognized operator,
// checking two-character operators before their one-character prefixes so
// ">=" and "<=" aren't misread as ">"/"<" followed by a stray "=".
func splitCondition(s string) (engine.Operator, string, string, error) {
	ops := []engine.Operator{
		engine.OpGreaterOrEqual, engine.OpLessOrEqual,
		engine.OpEquals, engine.OpNotEquals,
		engine.OpGreaterThan, engine.OpLessThan,
	}
	for _, op := range ops {
		idx := strings.Index(s, string(op))
		if idx < 0 {
			continue
		}
		name := strings.TrimSpace(s[:idx])
		value := strings.TrimSpace(s[idx+len(op):])
		if name == "" || value == "" {
			continue
		}
		return op, name, value, nil
	}
	return "", "", "", dbgerr.Breakpoint(fmt.Sprintf("breakpoint condition %q has no recognized operator", s), nil)
}

// colorEnabled mirrors internal/introspect's NO_COLOR convention; its result
// is recorded in the dbgconfig.Config built by execFlags.config(). The CLI's
// own output is not colored here.
func colorEnabled() bool {
	_, noColor := os.LookupEnv("NO_COLOR")
	return !noColor
}
