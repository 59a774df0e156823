package main

import (
	"os"

	"mbhdev/brainfart/logging"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	LogLevel logging.LogLevel `short:"l" long:"loglevel" description:"Set the level of logging" choice:"none" choice:"info" choice:"debug" default:"info"`
}

var (
	opts        Options
	flagsparser = flags.NewParser(&opts, flags.Default)
)

func main() {
	flagsparser.CommandHandler = func(command flags.Commander, args []string) error {
		logging.Setup(opts.LogLevel)
		return command.Execute(args)
	}

	if _, err := flagsparser.Parse(); err != nil {
		switch flagsErr := err.(type) {
		case flags.ErrorType:
			if flagsErr == flags.ErrHelp {
				os.Exit(0)
			}
			os.Exit(1)
		default:
			os.Exit(1)
		}
	}
}
