package ringchan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChan_ForceSendDropsOldest(t *testing.T) {
	rc := New[int](3)

	for i := 0; i < 10; i++ {
		rc.ForceSend(i)
	}
	rc.Close()

	var got []int
	for v := range rc.C() {
		got = append(got, v)
	}

	assert.Equal(t, []int{7, 8, 9}, got, "only the newest values MUST survive")
	m := rc.GetMetrics()
	assert.EqualValues(t, 10, m.Written)
	assert.EqualValues(t, 7, m.Overwritten)
}

func TestChan_TrySend(t *testing.T) {
	rc := New[string](1)

	require.True(t, rc.TrySend("a"))
	assert.False(t, rc.TrySend("b"), "TrySend MUST fail when full")
	assert.Equal(t, 1, rc.Len())
	assert.Equal(t, 1, rc.Cap())
	assert.Equal(t, "a", <-rc.C())
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int](0) })
}
