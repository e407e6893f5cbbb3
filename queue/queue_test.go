package queue_test

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/zen/alloc"
	zerrors "github.com/dudk/zen/errors"
	"github.com/dudk/zen/message"
	"github.com/dudk/zen/queue"
)

func entry(object int, ts float64, f float32) queue.Entry {
	return queue.Entry{
		ObjectID: alloc.ID{Index: object},
		Message:  message.FromFloat(message.Timestamp(ts), f),
	}
}

func TestOrdering(t *testing.T) {
	tests := []struct {
		description string
		timestamps  []float64
	}{
		{description: "ascending", timestamps: []float64{1, 2, 3}},
		{description: "descending", timestamps: []float64{3, 2, 1}},
		{description: "ties", timestamps: []float64{2, 1, 2, 1, 2}},
	}
	for _, test := range tests {
		q := queue.New(16)
		for i, ts := range test.timestamps {
			require.NoError(t, q.Insert(entry(0, ts, float32(i))))
		}
		var (
			lastTs    message.Timestamp = -1
			lastIndex float32           = -1
		)
		for !q.Empty() {
			peeked, ok := q.Peek()
			require.True(t, ok)
			e, ok := q.Pop()
			require.True(t, ok)
			assert.Same(t, peeked.Message, e.Message, test.description)
			ts := e.Message.Timestamp()
			assert.GreaterOrEqual(t, float64(ts), float64(lastTs), test.description)
			if ts == lastTs {
				// insertion order among equal timestamps
				assert.Greater(t, e.Message.Float(0), lastIndex, test.description)
			}
			lastTs, lastIndex = ts, e.Message.Float(0)
		}
		_, ok := q.Pop()
		assert.False(t, ok)
	}
}

func TestOrderingRandom(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	q := queue.New(512)
	for i := 0; i < 512; i++ {
		require.NoError(t, q.Insert(entry(0, float64(r.Intn(32)), float32(i))))
	}
	prev, _ := q.Pop()
	for !q.Empty() {
		e, _ := q.Pop()
		pt, et := prev.Message.Timestamp(), e.Message.Timestamp()
		assert.True(t, pt < et || (pt == et && prev.Message.Float(0) < e.Message.Float(0)))
		prev = e
	}
}

func TestRemove(t *testing.T) {
	q := queue.New(8)
	a := entry(0, 1, 1)
	b := entry(1, 1, 2)
	require.NoError(t, q.Insert(a))
	before := q.Entries()

	m := entry(2, 0.5, 3)
	require.NoError(t, q.Insert(m))
	q.Remove(m.ObjectID, m.Port, m.Message)
	assert.Equal(t, before, q.Entries())

	// no match is a no-op
	q.Remove(b.ObjectID, b.Port, b.Message)
	q.Remove(a.ObjectID, 1, a.Message)
	assert.Equal(t, before, q.Entries())

	// structural equality also matches
	q.Remove(a.ObjectID, a.Port, a.Message.Clone())
	assert.True(t, q.Empty())
}

func TestRemoveObject(t *testing.T) {
	q := queue.New(8)
	require.NoError(t, q.Insert(entry(0, 1, 1)))
	require.NoError(t, q.Insert(entry(1, 2, 1)))
	require.NoError(t, q.Insert(entry(0, 3, 1)))
	q.RemoveObject(alloc.ID{Index: 0})
	assert.Equal(t, 1, q.Len())
	e, _ := q.Peek()
	assert.Equal(t, 1, e.ObjectID.Index)
}

func TestOverflow(t *testing.T) {
	q := queue.New(1)
	require.NoError(t, q.Insert(entry(0, 1, 1)))
	assert.True(t, errors.Is(q.Insert(entry(0, 1, 1)), zerrors.ErrBufferOverflow))
}
