package vm

type ErrorKind int

const (
	// ErrOutOfBounds: the data pointer left the tape.
	ErrOutOfBounds ErrorKind = iota
	// ErrUnmatchedBracket: a jump byte with no partner, or nonzero
	// bracket depth at end of stream.
	ErrUnmatchedBracket
	// ErrUnsupported: the program used a capability the machine does not
	// have. Not a program fault.
	ErrUnsupported
)

// Error is a terminal machine failure. The machine never recovers from
// one and resumes.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	var kind string
	switch e.Kind {
	case ErrOutOfBounds:
		kind = "out of bounds"
	case ErrUnmatchedBracket:
		kind = "unmatched bracket"
	case ErrUnsupported:
		kind = "unsupported operation"
	default:
		kind = "machine error"
	}
	return kind + ": " + e.Message
}

func newOutOfBoundsError(message string) *Error {
	return &Error{Kind: ErrOutOfBounds, Message: message}
}

func newUnmatchedBracketError(message string) *Error {
	return &Error{Kind: ErrUnmatchedBracket, Message: message}
}

func newUnsupportedError(message string) *Error {
	return &Error{Kind: ErrUnsupported, Message: message}
}
