// Package format renders the debugger core's value and error types for the
// CLI, REPL, and remote-debug surfaces, centralizing the `--json` vs.
// human-readable split so each frontend does not reimplement it.
package format

import (
	"errors"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
	"github.com/promisszn/soroban-debugger-sub000/internal/transcode"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Value renders a TypedValue as a compact human-readable string, recursing
// into Vec/Map/Tuple/Option.
func Value(v transcode.TypedValue) string {
	switch v.Kind {
	case transcode.KindVoid:
		return "void"
	case transcode.KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case transcode.KindU32:
		return fmt.Sprintf("%d", v.U32)
	case transcode.KindI32:
		return fmt.Sprintf("%d", v.I32)
	case transcode.KindU64:
		return fmt.Sprintf("%d", v.U64)
	case transcode.KindI64:
		return fmt.Sprintf("%d", v.I64)
	case transcode.KindU128, transcode.KindI128:
		if v.Big != nil {
			return v.Big.String()
		}
		return "0"
	case transcode.KindSymbol:
		return v.Symbol
	case transcode.KindString:
		return v.Str
	case transcode.KindBytes, transcode.KindBytesN:
		return fmt.Sprintf("0x%x", v.Bytes)
	case transcode.KindAddress:
		return v.Address
	case transcode.KindOption:
		if v.Option == nil {
			return "none"
		}
		return "some(" + Value(*v.Option) + ")"
	case transcode.KindVec:
		return "[" + joinValues(v.Vec) + "]"
	case transcode.KindTuple:
		return "(" + joinValues(v.Tuple) + ")"
	case transcode.KindMap:
		parts := make([]string, 0, len(v.Map))
		for _, e := range v.Map {
			parts = append(parts, e.Key+": "+Value(e.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<unknown>"
	}
}

// JSONValue converts a TypedValue into a plain JSON-compatible Go value
// (bool, string, float64, []interface{}, map[string]interface{}), the shape
// ExecutionTrace.ReturnValue and storage entries are persisted and diffed
// as (structural equality via go-cmp, not TypedValue equality).
func JSONValue(v transcode.TypedValue) interface{} {
	switch v.Kind {
	case transcode.KindVoid:
		return nil
	case transcode.KindBool:
		return v.Bool
	case transcode.KindU32:
		return float64(v.U32)
	case transcode.KindI32:
		return float64(v.I32)
	case transcode.KindU64:
		return float64(v.U64)
	case transcode.KindI64:
		return float64(v.I64)
	case transcode.KindU128, transcode.KindI128:
		if v.Big != nil {
			return v.Big.String()
		}
		return "0"
	case transcode.KindSymbol:
		return v.Symbol
	case transcode.KindString:
		return v.Str
	case transcode.KindBytes, transcode.KindBytesN:
		return fmt.Sprintf("0x%x", v.Bytes)
	case transcode.KindAddress:
		return v.Address
	case transcode.KindOption:
		if v.Option == nil {
			return nil
		}
		return JSONValue(*v.Option)
	case transcode.KindVec:
		out := make([]interface{}, len(v.Vec))
		for i, e := range v.Vec {
			out[i] = JSONValue(e)
		}
		return out
	case transcode.KindTuple:
		out := make([]interface{}, len(v.Tuple))
		for i, e := range v.Tuple {
			out[i] = JSONValue(e)
		}
		return out
	case transcode.KindMap:
		out := make(map[string]interface{}, len(v.Map))
		for _, e := range v.Map {
			out[e.Key] = JSONValue(e.Value)
		}
		return out
	default:
		return nil
	}
}

func joinValues(vs []transcode.TypedValue) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = Value(v)
	}
	return strings.Join(parts, ", ")
}

// JSON marshals v as indented JSON, wrapping failures as a dbgerr.File error
// since serialization failures surface the same way an I/O failure would to
// a frontend.
func JSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", dbgerr.File("<json output>", err)
	}
	return string(b), nil
}

// ErrorEnvelope is the `{"error": {...}}` shape emitted in --json mode.
type ErrorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the closed error kind and message for JSON output.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Error renders err as a one-line message (the --quiet/default stderr
// form), or as a JSON envelope when asJSON is set.
func Error(err error, asJSON bool) string {
	if !asJSON {
		return err.Error()
	}
	kind := "execution"
	msg := err.Error()
	var de *dbgerr.Error
	if errors.As(err, &de) {
		kind = string(de.Kind)
		msg = de.Message
	}
	out, marshalErr := JSON(ErrorEnvelope{Error: ErrorBody{Kind: kind, Message: msg}})
	if marshalErr != nil {
		return err.Error()
	}
	return out
}
