package main

import (
	"fmt"
	"os"
	"strings"

	"mbhdev/brainfart/lang"
	"mbhdev/brainfart/vm"

	"github.com/alecthomas/repr"
	"github.com/chzyer/readline"
)

type REPL struct {
	machine *vm.Machine
	opts    []vm.Option
	prog    *lang.Program
	source  string
	rl      *readline.Instance
}

func NewREPL(prog *lang.Program, source string, opts ...vm.Option) *REPL {
	rlConfig := &readline.Config{
		Prompt:          "\033[32m⟩\033[0m ",
		HistoryFile:     "/tmp/.bf_debugger_history",
		HistoryLimit:    1000,
		AutoComplete:    completer{},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		panic(err)
	}

	r := &REPL{
		opts:   opts,
		prog:   prog,
		source: source,
		rl:     rl,
	}
	r.resetMachine()
	return r
}

// completer implements readline.AutoCompleter
type completer struct{}

func (c completer) Do(line []rune, pos int) (newLine [][]rune, length int) {
	commands := []string{
		"step", "s", "n",
		"continue", "c",
		"tape",
		"ptr",
		"out",
		"next",
		"state",
		"source",
		"load",
		"reset", "r",
		"quit", "q",
		"help", "h",
	}

	input := string(line[:pos])
	var matches []string

	for _, cmd := range commands {
		if strings.HasPrefix(cmd, input) {
			matches = append(matches, cmd)
		}
	}

	for _, match := range matches {
		newLine = append(newLine, []rune(match))
	}
	return newLine, len(input)
}

func (r *REPL) printHelp() {
	help := `
Available Commands:
  step, s, n       Execute the next instruction
  continue, c      Run to completion
  tape             Show the tape around the data pointer
  ptr              Show the data pointer
  out              Show the output accumulator
  next             Show the next instruction
  state            Dump a machine snapshot
  source           Display source with the current line marked
  load <file>      Append more instructions to the stream
  reset, r         Discard the machine and start over
  help, h          Show this help message
  quit, q          Exit debugger

Tips:
  - Use Tab for command completion
  - Use Up/Down arrows for command history
`
	fmt.Println(help)
}

func (r *REPL) Start() {
	defer r.rl.Close()

	fmt.Println("\033[1;36mMachine Debugger REPL v0.1\033[0m")
	fmt.Println("Type 'help' or 'h' for available commands")
	fmt.Println()
	r.printState()

	for {
		line, err := r.rl.Readline()
		if err != nil { // io.EOF, readline.ErrInterrupt
			break
		}

		input := strings.TrimSpace(line)
		args := strings.Fields(input)

		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help", "h":
			r.printHelp()

		case "step", "s", "n":
			if r.machine.State() == vm.StateTerminated {
				fmt.Println("\033[31mMachine has terminated\033[0m")
				continue
			}
			if err := r.machine.Step(); err != nil {
				fmt.Printf("\033[31m%v\033[0m\n", err)
				continue
			}
			r.printState()

		case "continue", "c":
			if err := r.machine.Run(); err != nil {
				fmt.Printf("\033[31m%v\033[0m\n", err)
			}
			fmt.Printf("Output: %q\n", r.machine.Output())
			r.printState()

		case "tape":
			fmt.Println(r.formatTape())

		case "ptr":
			fmt.Printf("Pointer: %d (cell value %d)\n", r.machine.Pointer(), r.machine.Cell())

		case "out":
			fmt.Printf("Output (%d bytes): %q\n", len(r.machine.Output()), r.machine.Output())

		case "next":
			b, ok := r.machine.NextByte()
			if !ok {
				fmt.Println("Instruction stream is empty")
				continue
			}
			op, _ := vm.Decode(b)
			fmt.Printf("Next: %q (%s)\n", b, op)

		case "state":
			fmt.Println(repr.String(r.snapshot(), repr.Indent("  ")))

		case "source":
			r.displaySource()

		case "reset", "r":
			r.resetMachine()
			fmt.Println("Machine reset")
			r.printState()

		case "load":
			if len(args) < 2 {
				fmt.Println("Usage: load <filename>")
				continue
			}
			if err := r.loadFile(args[1]); err != nil {
				fmt.Printf("\033[31mError loading file: %v\033[0m\n", err)
				continue
			}
			fmt.Printf("\033[32mLoaded file: %s\033[0m\n", args[1])

		case "quit", "q":
			fmt.Println("\033[32mGoodbye!\033[0m")
			return

		default:
			fmt.Printf("\033[31mUnknown command: %s\033[0m\n", args[0])
		}
	}
}

func (r *REPL) resetMachine() {
	r.machine = vm.New(r.opts...)
	if err := r.machine.Load(r.prog.Code); err != nil {
		panic(err)
	}
}

type machineSnapshot struct {
	State     string
	Cursor    int
	Pointer   int
	Cell      byte
	Depth     int
	Remaining int
	Output    []byte
}

func (r *REPL) snapshot() machineSnapshot {
	return machineSnapshot{
		State:     r.machine.State().String(),
		Cursor:    r.machine.Cursor(),
		Pointer:   r.machine.Pointer(),
		Cell:      r.machine.Cell(),
		Depth:     r.machine.Depth(),
		Remaining: r.machine.Remaining(),
		Output:    r.machine.Output(),
	}
}

func (r *REPL) printState() {
	m := r.machine
	if m.State() == vm.StateTerminated {
		if err := m.Err(); err != nil {
			fmt.Printf("\033[31mTerminated with error: %v\033[0m\n", err)
		} else {
			fmt.Println("\033[32mTerminated normally\033[0m")
		}
		return
	}

	loc := ""
	if pos, ok := r.prog.PosAt(m.Cursor()); ok {
		loc = fmt.Sprintf("\033[1;34m%s:%d:%d\033[0m ", pos.Filename, pos.Line, pos.Column)
	}
	nextDesc := "end of stream"
	if b, ok := m.NextByte(); ok {
		op, _ := vm.Decode(b)
		nextDesc = fmt.Sprintf("%q (%s)", b, op)
	}
	fmt.Printf("%s\033[1;35mnext: %s\033[0m depth: %d\n", loc, nextDesc, m.Depth())
	fmt.Println(r.formatTape())
}

func (r *REPL) formatTape() string {
	m := r.machine
	mem := m.Memory()
	ptr := m.Pointer()
	if ptr < 0 {
		ptr = 0
	}
	lo := ptr - 4
	if lo < 0 {
		lo = 0
	}
	hi := lo + 9
	if hi > len(mem) {
		hi = len(mem)
	}

	var cells []string
	for i := lo; i < hi; i++ {
		if i == m.Pointer() {
			cells = append(cells, fmt.Sprintf("\033[1;33m[%d]=%d\033[0m", i, mem[i]))
		} else {
			cells = append(cells, fmt.Sprintf("[%d]=%d", i, mem[i]))
		}
	}
	return "Tape: " + strings.Join(cells, " ")
}

func (r *REPL) displaySource() {
	cur := -1
	if pos, ok := r.prog.PosAt(r.machine.Cursor()); ok {
		cur = pos.Line
	}
	for i, line := range strings.Split(r.source, "\n") {
		lineNum := i + 1
		if lineNum == cur {
			fmt.Printf("\033[43;1m%4d | %s\033[0m\n", lineNum, line)
		} else {
			fmt.Printf("\033[90m%4d |\033[0m %s\n", lineNum, line)
		}
	}
}

// loadFile appends another file's instructions to the running
// machine's stream.
func (r *REPL) loadFile(filename string) error {
	source, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading file: %v", err)
	}

	prog, err := lang.Scan(filename, string(source))
	if err != nil {
		return err
	}

	return r.machine.Load(prog.Code)
}
