package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"mbhdev/brainfart/lang"
	"mbhdev/brainfart/logging"
	"mbhdev/brainfart/vm"
)

type RunCommand struct {
	Memory    int  `short:"m" long:"memory" description:"Tape size in cells" default:"4096"`
	Input     bool `short:"i" long:"input" description:"Wire stdin as the input-byte source"`
	StepDebug bool `short:"s" long:"stepdebug" description:"Start execution in the step debugger"`
	Tape      bool `short:"t" long:"tape" description:"Log the final pointer and a tape prefix at debug level"`
	Args      struct {
		SourceFile string `positional-arg-name:"SOURCE-FILE" required:"yes"`
	} `positional-args:"yes"`
}

var runCommand RunCommand

func (cmd *RunCommand) Execute(args []string) error {
	if cmd.Memory <= 0 {
		return fmt.Errorf("tape size must be positive, got %d", cmd.Memory)
	}

	source, err := os.ReadFile(cmd.Args.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to read source file %s: %w", cmd.Args.SourceFile, err)
	}

	prog, err := lang.Scan(cmd.Args.SourceFile, string(source))
	if err != nil {
		return fmt.Errorf("failed to scan source file %s: %w", cmd.Args.SourceFile, err)
	}
	logging.Log(logging.LogLevelInfo, "Scanned program", "file", cmd.Args.SourceFile, "commands", len(prog.Code))

	machineOpts := []vm.Option{vm.WithTapeSize(cmd.Memory)}
	if cmd.Input {
		machineOpts = append(machineOpts, vm.WithInput(bufio.NewReader(os.Stdin)))
	}

	if cmd.StepDebug {
		repl := NewREPL(prog, string(source), machineOpts...)
		repl.Start()
		return nil
	}

	machine := vm.New(machineOpts...)
	if err := machine.Load(prog.Code); err != nil {
		return err
	}

	runErr := machine.Run()
	os.Stdout.Write(machine.Output())

	if cmd.Tape {
		mem := machine.Memory()
		n := 16
		if len(mem) < n {
			n = len(mem)
		}
		logging.Log(logging.LogLevelDebug, "Final tape", "pointer", machine.Pointer(), "cells", fmt.Sprintf("% x", mem[:n]))
	}
	logging.Log(logging.LogLevelDebug, "Machine terminated",
		"state", machine.State().String(),
		"consumed", machine.Cursor(),
		"output-bytes", len(machine.Output()))

	if runErr != nil {
		return lang.NewRuntimeError(runErr, prog, machine.Fault(), string(source), runHelp(runErr, cmd.Memory))
	}
	return nil
}

func runHelp(err error, memory int) string {
	var merr *vm.Error
	if !errors.As(err, &merr) {
		return ""
	}
	switch merr.Kind {
	case vm.ErrOutOfBounds:
		return fmt.Sprintf("the tape has %d cells; grow it with --memory", memory)
	case vm.ErrUnmatchedBracket:
		return "every [ needs a matching ] and vice versa"
	case vm.ErrUnsupported:
		return "wire stdin to , with --input"
	}
	return ""
}

func init() {
	flagsparser.AddCommand(
		"run",
		"Run a program",
		"This will scan a source file into instruction bytes and execute them on a fresh machine",
		&runCommand,
	)
}
