package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const cliToolVersion = "rpal-cli 0.1.0-dev"

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "run":
		return runTarget(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		return runFile(args)
	}
}

// cliOptions are the switches shared by the file and target runners.
type cliOptions struct {
	listing     bool
	syntax      bool
	standard    bool
	control     bool
	trace       bool
	maxSteps    int
	maxStepsSet bool
}

func (o cliOptions) printsOnly() bool {
	return o.listing || o.syntax || o.standard || o.control
}

func parseArgs(args []string) (cliOptions, []string, error) {
	var opts cliOptions
	var rest []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			rest = append(rest, arg)
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		switch name {
		case "l":
			opts.listing = true
		case "ast":
			opts.syntax = true
		case "st":
			opts.standard = true
		case "cs":
			opts.control = true
		case "trace":
			opts.trace = true
		case "max-steps":
			if !hasValue {
				return opts, nil, fmt.Errorf("--max-steps requires a value")
			}
			n, err := parseMaxSteps(value)
			if err != nil {
				return opts, nil, fmt.Errorf("--max-steps: %w", err)
			}
			opts.maxSteps = n
			opts.maxStepsSet = true
		default:
			return opts, nil, fmt.Errorf("%w: unknown switch %s", errUsage, arg)
		}
	}
	return opts, rest, nil
}

func parseMaxSteps(value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid step count %q", value)
	}
	if n < 0 {
		return 0, fmt.Errorf("step count must not be negative")
	}
	return n, nil
}

func runFile(args []string) int {
	opts, rest, err := parseArgs(args)
	if err != nil {
		return reportArgError(err)
	}
	if len(rest) != 1 {
		printUsage()
		return 1
	}
	path := rest[0]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if !opts.maxStepsSet {
		if n, ok, err := maxStepsFromEnv(); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		} else if ok {
			opts.maxSteps = n
		}
	}
	if err := execute(string(data), opts, "."); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func reportArgError(err error) int {
	fmt.Fprintln(stderr, err)
	if errors.Is(err, errUsage) {
		printUsage()
	}
	return 1
}

func maxStepsFromEnv() (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv("RPAL_MAX_STEPS"))
	if raw == "" {
		return 0, false, nil
	}
	n, err := parseMaxSteps(raw)
	if err != nil {
		return 0, false, fmt.Errorf("RPAL_MAX_STEPS: %w", err)
	}
	return n, true, nil
}
