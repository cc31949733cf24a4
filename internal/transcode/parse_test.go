package transcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnotatedScalarRoundTrip(t *testing.T) {
	vals, err := Parse(`[{"type":"u32","value":10}]`)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	require.Equal(t, KindU32, vals[0].Kind)
	require.Equal(t, uint32(10), vals[0].U32)
}

func TestBareArrayEachElementIsOneArgument(t *testing.T) {
	vals, err := Parse(`["user", 1000, true]`)
	require.NoError(t, err)
	require.Len(t, vals, 3)
	require.Equal(t, KindSymbol, vals[0].Kind)
	require.Equal(t, KindI128, vals[1].Kind)
	require.Equal(t, KindBool, vals[2].Kind)
}

func TestBareObjectBecomesSingleMapArgument(t *testing.T) {
	vals, err := Parse(`{"user":"ABC","balance":1000}`)
	require.NoError(t, err)
	require.Len(t, vals, 1)
	require.Equal(t, KindMap, vals[0].Kind)
	require.Len(t, vals[0].Map, 2)
}

func TestOutOfRangeU32(t *testing.T) {
	_, err := Parse(`[{"type":"u32","value":4294967296}]`)
	require.Error(t, err)
	te, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ReasonOutOfRange, te.Reason)
}

func TestMixedBareArrayTypeMismatch(t *testing.T) {
	_, err := Parse(`[[1, 2, "three"]]`)
	require.Error(t, err)
	te, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ReasonTypeMismatch, te.Reason)
	require.Contains(t, te.Path, "[2]")
}

func TestVecHomogeneityBareAndTypedAgree(t *testing.T) {
	bare, err := Parse(`[[1,2,3]]`)
	require.NoError(t, err)
	typed, err := Parse(`[{"type":"vec","element_type":"u32","value":[1,2,3]}]`)
	require.NoError(t, err)
	require.Equal(t, KindVec, bare[0].Kind)
	require.Equal(t, KindVec, typed[0].Kind)
	require.Len(t, bare[0].Vec, 3)
	require.Len(t, typed[0].Vec, 3)
	require.Equal(t, KindU32, typed[0].Vec[0].Kind)
}

func TestOptionNullIsVoid(t *testing.T) {
	vals, err := Parse(`[{"type":"option","value":null}]`)
	require.NoError(t, err)
	require.Equal(t, KindOption, vals[0].Kind)
	require.Nil(t, vals[0].Option)
}

func TestOptionSomeRecurses(t *testing.T) {
	vals, err := Parse(`[{"type":"option","value":{"type":"u32","value":5}}]`)
	require.NoError(t, err)
	require.NotNil(t, vals[0].Option)
	require.Equal(t, KindU32, vals[0].Option.Kind)
}

func TestTupleArityEnforced(t *testing.T) {
	_, err := Parse(`[{"type":"tuple","arity":2,"value":[1]}]`)
	require.Error(t, err)
}

func TestBytesHexAndBase64(t *testing.T) {
	vals, err := Parse(`[{"type":"bytes","value":"0xdeadbeef"}]`)
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, vals[0].Bytes)

	_, err = Parse(`[{"type":"bytes","value":"not-prefixed"}]`)
	require.Error(t, err)
}

func TestBytesNLengthEnforced(t *testing.T) {
	_, err := Parse(`[{"type":"bytesn","length":2,"value":"0xdeadbeef"}]`)
	require.Error(t, err)

	vals, err := Parse(`[{"type":"bytesn","length":4,"value":"0xdeadbeef"}]`)
	require.NoError(t, err)
	require.Equal(t, KindBytesN, vals[0].Kind)
}

func TestAddressStrkeyValidation(t *testing.T) {
	vals, err := Parse(`[{"type":"address","value":"GAAAAAAAAAAAAAAA"}]`)
	require.NoError(t, err)
	require.Equal(t, KindAddress, vals[0].Kind)

	_, err = Parse(`[{"type":"address","value":"XAAAAAAAAAAAAAAA"}]`)
	require.Error(t, err)
}

func TestBareFloatUnsupported(t *testing.T) {
	_, err := Parse(`[1.5]`)
	require.Error(t, err)
	te, ok := err.(*Error)
	require.True(t, ok)
	require.Equal(t, ReasonUnsupportedType, te.Reason)
}

func TestNestedAnnotationInsideArray(t *testing.T) {
	vals, err := Parse(`[[{"type":"u32","value":1},{"type":"u32","value":2}]]`)
	require.NoError(t, err)
	require.Equal(t, KindVec, vals[0].Kind)
	require.Equal(t, KindU32, vals[0].Vec[0].Kind)
}
