package trace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	label := "v1.0 transfer test"
	tr := &ExecutionTrace{
		Label:   &label,
		Storage: map[string]interface{}{"b": 2, "a": 1},
		CallSequence: []CallEntry{
			{Function: "add", Depth: 0},
		},
		Events: []EventEntry{},
	}
	data, err := tr.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.Equal(t, "v1.0 transfer test", *got.Label)
	require.Equal(t, []string{"a", "b"}, got.SortedStorageKeys())
}

func TestUnmarshalToleratesMissingOptionalFields(t *testing.T) {
	got, err := Unmarshal([]byte(`{"function":"add"}`))
	require.NoError(t, err)
	require.Equal(t, "add", *got.Function)
	require.Nil(t, got.Label)
	require.NotNil(t, got.Storage)
}

func TestCallEntryEqual(t *testing.T) {
	a := CallEntry{Function: "f", Depth: 1}
	b := CallEntry{Function: "f", Depth: 1}
	require.True(t, a.Equal(b))
	c := CallEntry{Function: "f", Depth: 2}
	require.False(t, a.Equal(c))
}
