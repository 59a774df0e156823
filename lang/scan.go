// Package lang turns source text into the instruction bytes the vm
// package executes, and renders machine faults against their source
// location. The language has no grammar to speak of: eight single-byte
// commands, and everything else is a comment.
package lang

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

var sourceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Command", Pattern: `[+,\-.<>\[\]]`},
	{Name: "comment", Pattern: `[^+,\-.<>\[\]]+`},
})

// Program is a scanned source file: the command bytes to feed the
// machine, plus a source position for every byte.
type Program struct {
	Code []byte
	Pos  []lexer.Position
}

// Scan lexes source text into a Program, stripping comments. The
// filename is only used in positions.
func Scan(filename, source string) (*Program, error) {
	lx, err := sourceLexer.Lex(filename, strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	command := sourceLexer.Symbols()["Command"]
	prog := &Program{}
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return prog, nil
		}
		if tok.Type != command {
			continue
		}
		prog.Code = append(prog.Code, tok.Value[0])
		prog.Pos = append(prog.Pos, tok.Pos)
	}
}

// PosAt returns the source position of command byte i.
func (p *Program) PosAt(i int) (lexer.Position, bool) {
	if i < 0 || i >= len(p.Pos) {
		return lexer.Position{}, false
	}
	return p.Pos[i], true
}
