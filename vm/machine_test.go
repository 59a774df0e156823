package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/facebookgo/ensure"
)

func runProgram(t *testing.T, program string, opts ...Option) *Machine {
	t.Helper()
	m := New(opts...)
	ensure.Nil(t, m.Load([]byte(program)))
	m.Run()
	return m
}

func ensureKind(t *testing.T, err error, kind ErrorKind, message string) {
	t.Helper()
	var merr *Error
	ensure.True(t, errors.As(err, &merr))
	ensure.DeepEqual(t, merr.Kind, kind)
	ensure.StringContains(t, merr.Message, message)
}

// ---------------------------------------------------------------------------
// Cell arithmetic
// ---------------------------------------------------------------------------

func TestIncrementEveryValue(t *testing.T) {
	for n := 0; n <= 255; n++ {
		m := runProgram(t, strings.Repeat("+", n), WithTapeSize(8))
		ensure.Nil(t, m.Err())
		ensure.DeepEqual(t, m.Memory()[0], byte(n))
	}
}

func TestIncrementWrapsAround(t *testing.T) {
	m := runProgram(t, strings.Repeat("+", 256), WithTapeSize(8))
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Memory()[0], byte(0))
}

func TestDecrementEveryValue(t *testing.T) {
	for n := 0; n <= 255; n++ {
		m := runProgram(t, "+"+strings.Repeat("-", n), WithTapeSize(8))
		ensure.Nil(t, m.Err())
		ensure.DeepEqual(t, m.Memory()[0], byte((1-n)&0xff))
	}
}

// ---------------------------------------------------------------------------
// Pointer movement
// ---------------------------------------------------------------------------

func TestPointerMoves(t *testing.T) {
	m := runProgram(t, "++>+-<--", WithTapeSize(8))
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Pointer(), 0)
	ensure.DeepEqual(t, m.Memory()[0], byte(0))
}

func TestPointerOverrun(t *testing.T) {
	m := runProgram(t, ">>>>", WithTapeSize(3))
	ensureKind(t, m.Err(), ErrOutOfBounds, "overran memory size")
	// the third move pushes the pointer to 3 on a 3-cell tape
	ensure.DeepEqual(t, m.Fault(), 2)
	ensure.DeepEqual(t, m.State(), StateTerminated)
}

func TestPointerUnderrun(t *testing.T) {
	m := runProgram(t, "<", WithTapeSize(3))
	ensureKind(t, m.Err(), ErrOutOfBounds, "underran memory size")
	ensure.DeepEqual(t, m.Fault(), 0)
}

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

func TestOutputZeroedCell(t *testing.T) {
	m := runProgram(t, ".")
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Output(), []byte{0})
}

func TestOutputAfterIncrements(t *testing.T) {
	m := runProgram(t, "+++++.")
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Output(), []byte{5})
}

// ---------------------------------------------------------------------------
// Input
// ---------------------------------------------------------------------------

func TestInputWithoutSource(t *testing.T) {
	m := runProgram(t, ",")
	ensureKind(t, m.Err(), ErrUnsupported, "no input source wired")
}

func TestInputWithSource(t *testing.T) {
	m := runProgram(t, ",.", WithInput(bytes.NewReader([]byte("A"))))
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Output(), []byte("A"))
}

func TestInputSourceExhausted(t *testing.T) {
	m := runProgram(t, ",,", WithInput(bytes.NewReader([]byte("A"))))
	ensureKind(t, m.Err(), ErrUnsupported, "input source failed")
}

// ---------------------------------------------------------------------------
// Loops and bracket matching
// ---------------------------------------------------------------------------

func TestLoopForwardAndBackward(t *testing.T) {
	// forward skip when zero and backward repeat when nonzero
	m := runProgram(t, "+[++>]<.", WithTapeSize(8))
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Output(), []byte{3})
}

func TestNestedSkipStaysInOuterLoop(t *testing.T) {
	// the inner [] must not make the skip exit the outer loop early
	m := runProgram(t, "+++>[[]]<.", WithTapeSize(8))
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Output(), []byte{3})
}

func TestLoopRepeats(t *testing.T) {
	m := runProgram(t, "++[>++<-]>.", WithTapeSize(8))
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Output(), []byte{4})
}

func TestNestedLoopsRepeat(t *testing.T) {
	// 3 * 3 via an inner move loop replayed on every outer iteration
	m := runProgram(t, "+++[>+++[>+<-]<-]>>.", WithTapeSize(8))
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Output(), []byte{9})
}

func TestAdjacentLoops(t *testing.T) {
	m := runProgram(t, "++[-]+++[-].", WithTapeSize(8))
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Output(), []byte{0})
	ensure.DeepEqual(t, m.Depth(), 0)
}

func TestSkippedBodyReplaysInOrder(t *testing.T) {
	// on the first outer pass the inner loop is skipped (cell1 is
	// zero) and its body lands on the jump stack; on the second pass
	// the replayed body must come back in its original order to move a
	// byte into cell3
	m := runProgram(t, "++[->[->>+<<]+<]>>>.", WithTapeSize(8))
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Output(), []byte{1})
	ensure.DeepEqual(t, m.Memory()[1], byte(1))
}

func TestUnmatchedClosingBracket(t *testing.T) {
	m := runProgram(t, "]")
	ensureKind(t, m.Err(), ErrUnmatchedBracket, "unmatched ]")
}

func TestMissingClosingBracket(t *testing.T) {
	m := runProgram(t, "[+++")
	ensureKind(t, m.Err(), ErrUnmatchedBracket, "could not find matching ]")
	ensure.DeepEqual(t, m.Fault(), 0)
}

func TestUnbalancedAtEndOfStream(t *testing.T) {
	m := runProgram(t, "+[")
	ensureKind(t, m.Err(), ErrUnmatchedBracket, "unbalanced brackets")
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

func TestUnrecognizedBytesAreComments(t *testing.T) {
	m := runProgram(t, "inc +++ the cell and print it\n.")
	ensure.Nil(t, m.Err())
	ensure.DeepEqual(t, m.Output(), []byte{3})
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func TestStateTransitions(t *testing.T) {
	m := New(WithTapeSize(8))
	ensure.DeepEqual(t, m.State(), StateNotStarted)
	ensure.Nil(t, m.Load([]byte("++")))
	ensure.Nil(t, m.Step())
	ensure.DeepEqual(t, m.State(), StateRunning)
	ensure.Nil(t, m.Run())
	ensure.DeepEqual(t, m.State(), StateTerminated)
	ensure.Nil(t, m.Err())
}

func TestLoadDuringRun(t *testing.T) {
	m := New(WithTapeSize(8))
	ensure.Nil(t, m.Load([]byte("+")))
	ensure.Nil(t, m.Step())
	ensure.Nil(t, m.Load([]byte("+.")))
	ensure.Nil(t, m.Run())
	ensure.DeepEqual(t, m.Output(), []byte{2})
}

func TestLoadAfterTermination(t *testing.T) {
	m := runProgram(t, "+")
	ensure.NotNil(t, m.Load([]byte("+")))
}

func TestRunAfterTerminationDoesNothing(t *testing.T) {
	m := runProgram(t, "]")
	out := m.Output()
	err := m.Run()
	ensureKind(t, err, ErrUnmatchedBracket, "unmatched ]")
	ensure.DeepEqual(t, m.Output(), out)
}

func TestEmptyProgram(t *testing.T) {
	m := New(WithTapeSize(8))
	ensure.Nil(t, m.Run())
	ensure.DeepEqual(t, m.State(), StateTerminated)
}

func TestCursorTracksProgramOrder(t *testing.T) {
	m := runProgram(t, "+++", WithTapeSize(8))
	ensure.DeepEqual(t, m.Cursor(), 3)
	ensure.DeepEqual(t, m.Remaining(), 0)
}

func TestTapeSizeMustBePositive(t *testing.T) {
	defer func() {
		ensure.NotNil(t, recover())
	}()
	New(WithTapeSize(0))
}
