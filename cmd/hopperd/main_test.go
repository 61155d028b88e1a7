package main

import (
	"errors"
	"flag"
	"io"
	"testing"
)

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs(nil, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs with no args: %v", err)
	}
	if opts.configPath != "" || opts.logLevel != "" {
		t.Fatalf("expected empty defaults, got %+v", opts)
	}

	opts, err = parseArgs([]string{"--config", "/etc/hopper.toml", "--log-level", "debug"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if opts.configPath != "/etc/hopper.toml" {
		t.Errorf("configPath = %q", opts.configPath)
	}
	if opts.logLevel != "debug" {
		t.Errorf("logLevel = %q", opts.logLevel)
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	if _, err := parseArgs([]string{"--bogus"}, io.Discard); err == nil {
		t.Fatal("expected unknown flag to error")
	}
}

func TestParseArgsHelp(t *testing.T) {
	if _, err := parseArgs([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}
