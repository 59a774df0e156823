package vm

// Op is a single machine operation, decoded from one instruction byte.
type Op byte

const (
	OpNone Op = iota
	OpIncrementCell
	OpInputByte
	OpDecrementCell
	OpOutputByte
	OpMovePointerLeft
	OpMovePointerRight
	OpJumpForwardIfZero
	OpJumpBackwardIfNonZero
)

func (op Op) String() string {
	names := []string{
		"NONE", "INC", "INPUT", "DEC", "OUTPUT",
		"PTR_LEFT", "PTR_RIGHT", "JMP_FWD_IF_ZERO", "JMP_BACK_IF_NONZERO",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "UNKNOWN"
}

// Decode maps one instruction byte to its operation. Bytes that are not
// commands decode to OpNone and ok=false; the machine consumes them as
// comments. Decode has no state and never fails.
func Decode(b byte) (op Op, ok bool) {
	switch b {
	case '+':
		return OpIncrementCell, true
	case ',':
		return OpInputByte, true
	case '-':
		return OpDecrementCell, true
	case '.':
		return OpOutputByte, true
	case '<':
		return OpMovePointerLeft, true
	case '>':
		return OpMovePointerRight, true
	case '[':
		return OpJumpForwardIfZero, true
	case ']':
		return OpJumpBackwardIfNonZero, true
	default:
		return OpNone, false
	}
}
