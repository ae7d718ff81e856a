package ringchan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPanicsOnBadCapacity(t *testing.T) {
	assert.Panics(t, func() { New[int](0) })
	assert.Panics(t, func() { New[int](-1) })
}

func TestSendReceive(t *testing.T) {
	r := New[int](4)

	r.Send(1)
	r.Send(2)
	assert.Equal(t, 2, r.Len())

	v, ok := r.Receive()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = r.Receive()
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, int64(0), r.Dropped())
}

func TestSendDropsOldestWhenFull(t *testing.T) {
	r := New[int](2)

	r.Send(1)
	r.Send(2)
	r.Send(3) // evicts 1

	assert.Equal(t, int64(1), r.Dropped())
	assert.Equal(t, 2, r.Len())

	v, _ := r.Receive()
	assert.Equal(t, 2, v)
	v, _ = r.Receive()
	assert.Equal(t, 3, v)
}

func TestTrySend(t *testing.T) {
	r := New[string](1)

	assert.True(t, r.TrySend("a"))
	assert.False(t, r.TrySend("b"))
	assert.Equal(t, int64(0), r.Dropped())

	v, _ := r.Receive()
	assert.Equal(t, "a", v)
	assert.True(t, r.TrySend("c"))
}

func TestCloseDrainsBufferedValues(t *testing.T) {
	r := New[int](4)
	r.Send(7)
	r.Send(8)
	r.Close()

	v, ok := r.Receive()
	require.True(t, ok)
	assert.Equal(t, 7, v)

	v, ok = r.Receive()
	require.True(t, ok)
	assert.Equal(t, 8, v)

	_, ok = r.Receive()
	assert.False(t, ok)
}

func TestRangeOverC(t *testing.T) {
	r := New[int](8)
	for i := 0; i < 5; i++ {
		r.Send(i)
	}
	r.Close()

	var got []int
	for v := range r.C() {
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}
