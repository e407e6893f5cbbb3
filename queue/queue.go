// Package queue implements the time-ordered queue of pending messages.
package queue

import (
	"github.com/google/btree"
	"github.com/pkg/errors"

	"github.com/dudk/zen/alloc"
	zerrors "github.com/dudk/zen/errors"
	"github.com/dudk/zen/message"
)

const degree = 16

// Entry is a message pending delivery to an object port.
type Entry struct {
	ObjectID alloc.ID
	Port     int
	Message  *message.Message
}

// matches reports whether e addresses the same port with the same message.
func (e Entry) matches(id alloc.ID, port int, m *message.Message) bool {
	return e.ObjectID == id && e.Port == port && (e.Message == m || e.Message.Equal(m))
}

type item struct {
	Entry
	timestamp message.Timestamp
	seq       uint64
}

func less(a, b item) bool {
	if a.timestamp != b.timestamp {
		return a.timestamp < b.timestamp
	}
	return a.seq < b.seq
}

// Queue orders entries by message timestamp. Entries with equal
// timestamps keep their insertion order.
type Queue struct {
	capacity int
	seq      uint64
	tree     *btree.BTreeG[item]
}

// New returns an empty queue that holds up to capacity entries.
func New(capacity int) *Queue {
	return &Queue{
		capacity: capacity,
		tree:     btree.NewG(degree, less),
	}
}

// Insert adds e after every entry with a timestamp less or equal to its
// own. It returns ErrBufferOverflow if the queue is full.
func (q *Queue) Insert(e Entry) error {
	if q.tree.Len() >= q.capacity {
		return errors.Wrapf(zerrors.ErrBufferOverflow, "queue of %d entries", q.capacity)
	}
	q.seq++
	q.tree.ReplaceOrInsert(item{
		Entry:     e,
		timestamp: e.Message.Timestamp(),
		seq:       q.seq,
	})
	return nil
}

// Remove deletes the first entry addressed to the object port that holds
// m or an equal message. It is a no-op if there is no such entry.
func (q *Queue) Remove(id alloc.ID, port int, m *message.Message) {
	var (
		found item
		ok    bool
	)
	q.tree.Ascend(func(i item) bool {
		if i.matches(id, port, m) {
			found, ok = i, true
			return false
		}
		return true
	})
	if ok {
		q.tree.Delete(found)
	}
}

// RemoveObject deletes every entry addressed to the object.
func (q *Queue) RemoveObject(id alloc.ID) {
	var items []item
	q.tree.Ascend(func(i item) bool {
		if i.ObjectID == id {
			items = append(items, i)
		}
		return true
	})
	for _, i := range items {
		q.tree.Delete(i)
	}
}

// Peek returns the earliest entry.
func (q *Queue) Peek() (Entry, bool) {
	i, ok := q.tree.Min()
	return i.Entry, ok
}

// Pop removes and returns the earliest entry.
func (q *Queue) Pop() (Entry, bool) {
	i, ok := q.tree.DeleteMin()
	return i.Entry, ok
}

// Empty reports whether the queue has no entries.
func (q *Queue) Empty() bool {
	return q.tree.Len() == 0
}

// Len returns the number of entries.
func (q *Queue) Len() int {
	return q.tree.Len()
}

// Entries returns all entries in delivery order.
func (q *Queue) Entries() []Entry {
	entries := make([]Entry, 0, q.tree.Len())
	q.tree.Ascend(func(i item) bool {
		entries = append(entries, i.Entry)
		return true
	})
	return entries
}
