package vm

import (
	"testing"

	"github.com/facebookgo/ensure"
)

func TestQueueFIFO(t *testing.T) {
	var q byteQueue
	for _, b := range []byte("abc") {
		q.PushBack(b)
	}
	ensure.DeepEqual(t, q.Len(), 3)
	for _, want := range []byte("abc") {
		b, ok := q.PopFront()
		ensure.True(t, ok)
		ensure.DeepEqual(t, b, want)
	}
	_, ok := q.PopFront()
	ensure.False(t, ok)
}

func TestQueuePushFront(t *testing.T) {
	var q byteQueue
	q.PushBack('c')
	q.PushFront('b')
	q.PushFront('a')
	for _, want := range []byte("abc") {
		b, ok := q.PopFront()
		ensure.True(t, ok)
		ensure.DeepEqual(t, b, want)
	}
}

func TestQueuePeek(t *testing.T) {
	var q byteQueue
	_, ok := q.PeekFront()
	ensure.False(t, ok)
	q.PushBack('x')
	b, ok := q.PeekFront()
	ensure.True(t, ok)
	ensure.DeepEqual(t, b, byte('x'))
	ensure.DeepEqual(t, q.Len(), 1)
}

func TestQueueGrowsAcrossWrap(t *testing.T) {
	var q byteQueue
	// wrap the ring, then force a regrow while wrapped
	for i := 0; i < queueMinCap; i++ {
		q.PushBack(byte(i))
	}
	for i := 0; i < 10; i++ {
		b, ok := q.PopFront()
		ensure.True(t, ok)
		ensure.DeepEqual(t, b, byte(i))
	}
	for i := 0; i < 200; i++ {
		q.PushBack(byte(i))
	}
	ensure.DeepEqual(t, q.Len(), queueMinCap-10+200)
	for i := 10; i < queueMinCap; i++ {
		b, _ := q.PopFront()
		ensure.DeepEqual(t, b, byte(i))
	}
	for i := 0; i < 200; i++ {
		b, _ := q.PopFront()
		ensure.DeepEqual(t, b, byte(i))
	}
}
