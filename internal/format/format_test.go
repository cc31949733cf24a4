package format

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/promisszn/soroban-debugger-sub000/internal/dbgerr"
	"github.com/promisszn/soroban-debugger-sub000/internal/transcode"
)

func TestValueRendersScalars(t *testing.T) {
	require.Equal(t, "42", Value(transcode.TypedValue{Kind: transcode.KindU32, U32: 42}))
	require.Equal(t, "true", Value(transcode.TypedValue{Kind: transcode.KindBool, Bool: true}))
	require.Equal(t, "void", Value(transcode.TypedValue{Kind: transcode.KindVoid}))
	require.Equal(t, "hi", Value(transcode.TypedValue{Kind: transcode.KindString, Str: "hi"}))
}

func TestValueRendersVecAndOption(t *testing.T) {
	vec := transcode.TypedValue{Kind: transcode.KindVec, Vec: []transcode.TypedValue{
		{Kind: transcode.KindU32, U32: 1},
		{Kind: transcode.KindU32, U32: 2},
	}}
	require.Equal(t, "[1, 2]", Value(vec))

	none := transcode.TypedValue{Kind: transcode.KindOption}
	require.Equal(t, "none", Value(none))

	inner := transcode.TypedValue{Kind: transcode.KindU32, U32: 7}
	some := transcode.TypedValue{Kind: transcode.KindOption, Option: &inner}
	require.Equal(t, "some(7)", Value(some))
}

func TestErrorPlainVsJSON(t *testing.T) {
	err := dbgerr.InvalidFunction("frobnicate")
	plain := Error(err, false)
	require.Contains(t, plain, "frobnicate")

	asJSON := Error(err, true)
	require.Contains(t, asJSON, `"kind"`)
	require.Contains(t, asJSON, "invalid_function")
}

func TestErrorJSONFallsBackForNonDbgerr(t *testing.T) {
	err := fmt.Errorf("plain failure")
	out := Error(err, true)
	require.Contains(t, out, "execution")
}
