// Package vm implements a machine that executes byte-coded programs
// over a bounded tape of cells. The instruction stream is a consumable
// queue: bytes are popped off the front as they execute, and loops are
// resolved by relocating bytes between the stream and an auxiliary
// stack instead of by index arithmetic, so the machine stays
// single-pass and new instructions can be appended mid-run.
package vm

import (
	"fmt"
	"io"
)

// State is the machine lifecycle. It only moves forward: once
// terminated a machine consumes no more instructions and a fresh
// instance is needed for a new program.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// DefaultTapeSize is the tape size used when no option overrides it.
const DefaultTapeSize = 4096

// Machine owns all execution state: the tape, the data pointer, the
// instruction stream, the output accumulator and the jump-resolution
// stack. Nothing is shared; concurrent programs need one Machine each.
type Machine struct {
	mem    []byte
	ptr    int
	stream byteQueue
	out    []byte

	// jump holds every consumed byte, most recent on top. Backward
	// jumps replay it onto the front of the stream.
	jump  []byte
	depth int

	state State
	err   *Error

	input io.ByteReader

	// cursor is the program-order index of the stream front: popping
	// advances it, restoring bytes to the front rewinds it. fault is
	// the cursor of the instruction whose handler failed, or -1.
	cursor int
	fault  int
}

type Option func(*Machine)

// WithTapeSize sets the tape size. It panics on a non-positive size;
// the tape cannot be resized after construction.
func WithTapeSize(n int) Option {
	return func(m *Machine) {
		if n <= 0 {
			panic(fmt.Sprintf("vm: tape size must be positive, got %d", n))
		}
		m.mem = make([]byte, n)
	}
}

// WithInput wires a source for the input-byte operation. Without one,
// executing ',' terminates the machine with an ErrUnsupported error.
func WithInput(r io.ByteReader) Option {
	return func(m *Machine) { m.input = r }
}

func New(opts ...Option) *Machine {
	m := &Machine{
		mem:   make([]byte, DefaultTapeSize),
		fault: -1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load appends program bytes to the back of the instruction stream.
// Loading is allowed before and during a run, but not after
// termination.
func (m *Machine) Load(p []byte) error {
	if m.state == StateTerminated {
		return fmt.Errorf("cannot load into a terminated machine")
	}
	for _, b := range p {
		m.stream.PushBack(b)
	}
	return nil
}

// Run consumes the instruction stream until it is empty or a failure
// terminates the machine. The terminal error, if any, is both returned
// and kept observable through Err.
func (m *Machine) Run() error {
	for m.state != StateTerminated {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return m.Err()
}

// Step executes a single instruction from the front of the stream, or
// terminates the machine if the stream is empty. Unrecognized bytes
// are consumed as comments. Step on a terminated machine does nothing
// and reports the recorded terminal error.
func (m *Machine) Step() error {
	if m.state == StateTerminated {
		return m.Err()
	}
	m.state = StateRunning

	b, ok := m.stream.PopFront()
	if !ok {
		m.finish()
		return m.Err()
	}
	at := m.cursor
	m.cursor++
	// Record the byte before dispatching it. The jump stack then stays
	// in exact consumption order even when a handler relocates further
	// bytes, and a taken backward jump restores its own ']' first.
	m.jump = append(m.jump, b)

	op, ok := Decode(b)
	if !ok {
		return nil
	}

	var err *Error
	switch op {
	case OpMovePointerRight:
		err = m.movePointerRight()
	case OpMovePointerLeft:
		err = m.movePointerLeft()
	case OpIncrementCell:
		m.mem[m.ptr]++
	case OpDecrementCell:
		m.mem[m.ptr]--
	case OpOutputByte:
		m.out = append(m.out, m.mem[m.ptr])
	case OpInputByte:
		err = m.inputByte()
	case OpJumpForwardIfZero:
		err = m.jumpForward()
	case OpJumpBackwardIfNonZero:
		err = m.jumpBackward()
	}
	if err != nil {
		m.fail(at, err)
		return err
	}
	return nil
}

func (m *Machine) movePointerRight() *Error {
	m.ptr++
	if m.ptr >= len(m.mem) {
		return newOutOfBoundsError("data pointer overran memory size")
	}
	return nil
}

func (m *Machine) movePointerLeft() *Error {
	m.ptr--
	if m.ptr < 0 {
		return newOutOfBoundsError("data pointer underran memory size")
	}
	return nil
}

func (m *Machine) inputByte() *Error {
	if m.input == nil {
		return newUnsupportedError("no input source wired for ,")
	}
	b, err := m.input.ReadByte()
	if err != nil {
		return newUnsupportedError("input source failed: " + err.Error())
	}
	m.mem[m.ptr] = b
	return nil
}

func (m *Machine) jumpForward() *Error {
	m.depth++
	if m.mem[m.ptr] != 0 {
		// fall into the loop body
		return nil
	}
	// Skip the body: relocate it onto the jump stack one byte at a time
	// so an enclosing loop can still replay it. The scan is
	// nesting-aware, and the matching ']' is left at the front of the
	// stream so the main loop decodes it and brings the depth counter
	// back down.
	local := 0
	for {
		b, ok := m.stream.PeekFront()
		if !ok {
			return newUnmatchedBracketError("could not find matching ]")
		}
		if b == ']' && local == 0 {
			return nil
		}
		m.stream.PopFront()
		m.cursor++
		m.jump = append(m.jump, b)
		switch b {
		case '[':
			local++
		case ']':
			local--
		}
	}
}

func (m *Machine) jumpBackward() *Error {
	if m.depth == 0 {
		return newUnmatchedBracketError("unmatched ]")
	}
	m.depth--
	if m.mem[m.ptr] == 0 {
		// loop ends, fall through
		return nil
	}
	// Repeat the loop: replay consumed bytes from the jump stack back
	// onto the front of the stream until the matching '[' is itself
	// restored, so the next step re-decodes it and re-enters the loop
	// header. The ']' being executed sits on top of the stack and goes
	// back first.
	local := 0
	for {
		if len(m.jump) == 0 {
			return newUnmatchedBracketError("could not find matching [")
		}
		b := m.jump[len(m.jump)-1]
		m.jump = m.jump[:len(m.jump)-1]
		m.stream.PushFront(b)
		m.cursor--
		switch b {
		case ']':
			local++
		case '[':
			local--
			if local == 0 {
				return nil
			}
		}
	}
}

func (m *Machine) finish() {
	m.state = StateTerminated
	if m.depth != 0 {
		m.err = newUnmatchedBracketError("unbalanced brackets")
	}
}

func (m *Machine) fail(at int, err *Error) {
	m.state = StateTerminated
	m.err = err
	m.fault = at
}

func (m *Machine) State() State { return m.state }

// Err reports the terminal error, or nil while the machine is healthy
// or after it terminated normally.
func (m *Machine) Err() error {
	if m.err == nil {
		return nil
	}
	return m.err
}

// Memory returns a copy of the tape.
func (m *Machine) Memory() []byte {
	mem := make([]byte, len(m.mem))
	copy(mem, m.mem)
	return mem
}

func (m *Machine) Pointer() int { return m.ptr }

// Cell returns the value under the data pointer, or 0 if the pointer
// was driven off the tape by the failure that terminated the machine.
func (m *Machine) Cell() byte {
	if m.ptr < 0 || m.ptr >= len(m.mem) {
		return 0
	}
	return m.mem[m.ptr]
}

// Output returns a copy of the output accumulator.
func (m *Machine) Output() []byte {
	out := make([]byte, len(m.out))
	copy(out, m.out)
	return out
}

// Depth is the current loop nesting depth.
func (m *Machine) Depth() int { return m.depth }

// Remaining is the number of bytes left in the instruction stream.
func (m *Machine) Remaining() int { return m.stream.Len() }

// Cursor is the program-order index of the next instruction.
func (m *Machine) Cursor() int { return m.cursor }

// Fault is the program-order index of the instruction that terminated
// the machine with an error, or -1.
func (m *Machine) Fault() int { return m.fault }

// NextByte peeks at the front of the instruction stream.
func (m *Machine) NextByte() (byte, bool) {
	return m.stream.PeekFront()
}
