package vm

// byteQueue is a growable ring deque holding the instruction stream.
// The front is the next byte to execute; Load appends at the back, and
// backward jumps restore bytes at the front.
type byteQueue struct {
	buf  []byte
	head int
	n    int
}

const queueMinCap = 64

func (q *byteQueue) Len() int { return q.n }

func (q *byteQueue) grow() {
	if q.n < len(q.buf) {
		return
	}
	c := len(q.buf) * 2
	if c < queueMinCap {
		c = queueMinCap
	}
	buf := make([]byte, c)
	for i := 0; i < q.n; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
}

func (q *byteQueue) PushBack(b byte) {
	q.grow()
	q.buf[(q.head+q.n)%len(q.buf)] = b
	q.n++
}

func (q *byteQueue) PushFront(b byte) {
	q.grow()
	q.head--
	if q.head < 0 {
		q.head += len(q.buf)
	}
	q.buf[q.head] = b
	q.n++
}

func (q *byteQueue) PopFront() (byte, bool) {
	if q.n == 0 {
		return 0, false
	}
	b := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return b, true
}

func (q *byteQueue) PeekFront() (byte, bool) {
	if q.n == 0 {
		return 0, false
	}
	return q.buf[q.head], true
}
