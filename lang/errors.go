package lang

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// RuntimeError decorates a machine fault with the source location of
// the instruction that raised it.
type RuntimeError struct {
	Err    error
	Pos    lexer.Position
	Source string
	Help   string
}

func (e *RuntimeError) Error() string {
	return formatError(e)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// NewRuntimeError locates err at command byte i of prog. When i is out
// of range (e.g. the stream ran dry mid-skip) the error is returned
// without location.
func NewRuntimeError(err error, prog *Program, i int, source, help string) error {
	pos, ok := prog.PosAt(i)
	if !ok {
		return err
	}
	return &RuntimeError{Err: err, Pos: pos, Source: source, Help: help}
}

func formatError(err *RuntimeError) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\x1b[1;31mruntime error\x1b[0m: %s\n", err.Err)

	lines := strings.Split(err.Source, "\n")
	if err.Pos.Line > 0 && err.Pos.Line <= len(lines) {
		lineNum := err.Pos.Line
		line := lines[lineNum-1]

		fmt.Fprintf(&b, "\x1b[1;34m-->\x1b[0m %s:%d:%d\n", err.Pos.Filename, err.Pos.Line, err.Pos.Column)

		if lineNum > 1 {
			fmt.Fprintf(&b, "%4d | %s\n", lineNum-1, lines[lineNum-2])
		}

		fmt.Fprintf(&b, "%4d | %s\n", lineNum, line)

		pointer := strings.Repeat(" ", err.Pos.Column-1) + "\x1b[1;31m^"
		fmt.Fprintf(&b, "     | %s\x1b[0m\n", pointer)

		if lineNum < len(lines) {
			fmt.Fprintf(&b, "%4d | %s\n", lineNum+1, lines[lineNum])
		}
	}

	if err.Help != "" {
		fmt.Fprintf(&b, "\n\x1b[1;32mhelp\x1b[0m: %s\n", err.Help)
	}

	return b.String()
}
