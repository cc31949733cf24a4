package timeline

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func pushN(t *Timeline, n int) {
	for i := 0; i < n; i++ {
		t.Push(Snapshot{Step: i})
	}
}

func TestPushMonotonicCursor(t *testing.T) {
	tl := New(100)
	pushN(tl, 5)
	require.Equal(t, 4, tl.Cursor())
	require.Equal(t, 5, tl.Len())
}

func TestEvictionFIFOAtCapacity(t *testing.T) {
	tl := New(3)
	pushN(tl, 5)
	require.Equal(t, 3, tl.Len())
	all := tl.All()
	require.Equal(t, 2, all[0].Step) // steps 0,1 evicted
}

func TestTruncateOnBranch(t *testing.T) {
	tl := New(100)
	pushN(tl, 10)
	require.Equal(t, 10, tl.Len())

	for i := 0; i < 4; i++ {
		_, ok := tl.StepBack()
		require.True(t, ok)
	}
	// cursor now at index 5 (step 5), steps 6..9 are ahead
	tl.Push(Snapshot{Step: 100})
	require.Equal(t, 7, tl.Len()) // 6 kept (0..5) + 1 new
	cur, ok := tl.Current()
	require.True(t, ok)
	require.Equal(t, 100, cur.Step)
}

func TestGotoByStepNumber(t *testing.T) {
	tl := New(100)
	pushN(tl, 10)
	s, ok := tl.Goto(3)
	require.True(t, ok)
	require.Equal(t, 3, s.Step)
	require.Equal(t, 3, tl.Cursor())
}

func TestStepForwardBoundedAtEnd(t *testing.T) {
	tl := New(100)
	pushN(tl, 3)
	tl.StepBack()
	tl.StepBack()
	_, ok := tl.StepForward()
	require.True(t, ok)
	_, ok = tl.StepForward()
	require.True(t, ok)
	_, ok = tl.StepForward()
	require.False(t, ok)
}
