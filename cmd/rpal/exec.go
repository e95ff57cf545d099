package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/interpreter"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/parser"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/runtime"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/standardizer"
)

// execute either prints the requested listings of src or evaluates it and
// prints its answer.
func execute(src string, opts cliOptions, marker string) error {
	if opts.printsOnly() {
		return printListings(src, opts, marker)
	}
	return evaluate(src, opts)
}

func printListings(src string, opts cliOptions, marker string) error {
	sections := 0
	begin := func() {
		if sections > 0 {
			fmt.Fprintln(stdout)
		}
		sections++
	}

	if opts.listing {
		begin()
		fmt.Fprint(stdout, src)
		if !strings.HasSuffix(src, "\n") {
			fmt.Fprintln(stdout)
		}
	}
	if !opts.syntax && !opts.standard && !opts.control {
		return nil
	}

	syntax, err := parser.ParseProgram(src)
	if err != nil {
		return err
	}
	if opts.syntax {
		begin()
		if err := ast.Fprint(stdout, syntax, marker); err != nil {
			return err
		}
	}
	if !opts.standard && !opts.control {
		return nil
	}

	std, err := standardizer.Standardize(syntax)
	if err != nil {
		return fmt.Errorf("standardize: %w", err)
	}
	if opts.standard {
		begin()
		if err := ast.Fprint(stdout, std, marker); err != nil {
			return err
		}
	}
	if opts.control {
		prog, err := interpreter.Linearize(std)
		if err != nil {
			return fmt.Errorf("linearize: %w", err)
		}
		begin()
		if err := prog.Fprint(stdout); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(src string, opts cliOptions) error {
	out := &outputTracker{w: stdout}
	val, err := interpreter.EvaluateSource(src, machineOptions(opts, out))
	if out.pending() {
		fmt.Fprintln(stdout)
	}
	if err != nil {
		return err
	}
	if _, ok := val.(runtime.DummyValue); ok {
		return nil
	}
	fmt.Fprintln(stdout, runtime.FormatValue(val))
	return nil
}

func machineOptions(opts cliOptions, out io.Writer) interpreter.Options {
	machine := interpreter.Options{Output: out, MaxSteps: opts.maxSteps}
	if opts.trace {
		machine.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return machine
}

// outputTracker remembers whether Print left a line unterminated.
type outputTracker struct {
	w    io.Writer
	open bool
}

func (t *outputTracker) Write(p []byte) (int, error) {
	if len(p) > 0 {
		t.open = p[len(p)-1] != '\n'
	}
	return t.w.Write(p)
}

func (t *outputTracker) pending() bool {
	return t.open
}
