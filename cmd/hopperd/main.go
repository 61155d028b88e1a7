package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"hopper/internal/config"
	"hopper/internal/daemonrun"
)

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, _, _, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hopperd: load config: %v\n", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: opts.logLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "hopperd: %v\n", err)
		os.Exit(1)
	}
}
