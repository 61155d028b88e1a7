package main

import (
	"flag"
	"io"
)

type runOptions struct {
	configPath string
	logLevel   string
}

func parseArgs(args []string, stderr io.Writer) (runOptions, error) {
	fs := flag.NewFlagSet("hopperd", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts runOptions
	fs.StringVar(&opts.configPath, "config", "", "Configuration file path")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return runOptions{}, err
	}
	return opts, nil
}
