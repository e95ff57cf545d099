package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/parser"
)

const (
	promptMain   = "rpal> "
	promptCont   = "....> "
	historyFile  = "repl_history"
	replBanner   = "RPAL repl. Enter a program; :help lists commands."
	replHelpText = ":quit  leave the repl\n:help  show this text"
)

// lineReader is the part of liner.State the repl loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
}

func runRepl(args []string) int {
	opts, rest, err := parseArgs(args)
	if err != nil {
		return reportArgError(err)
	}
	if len(rest) > 0 || opts.printsOnly() {
		printUsage()
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

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := rpalHome(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	fmt.Fprintln(stdout, replBanner)
	replLoop(ln, opts, func(entry string) {
		ln.AppendHistory(strings.ReplaceAll(entry, "\n", " "))
	})

	if histPath != "" {
		if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err == nil {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
	}
	return 0
}

// replLoop evaluates one program per entry until EOF or :quit.
func replLoop(in lineReader, opts cliOptions, remember func(string)) {
	for {
		entry, ok := readEntry(in)
		if !ok {
			fmt.Fprintln(stdout)
			return
		}
		trimmed := strings.TrimSpace(entry)
		switch {
		case trimmed == "":
			continue
		case trimmed == ":quit" || trimmed == ":q":
			return
		case trimmed == ":help":
			fmt.Fprintln(stdout, replHelpText)
			continue
		case strings.HasPrefix(trimmed, ":"):
			fmt.Fprintf(stderr, "unknown command %s\n", trimmed)
			continue
		}
		if remember != nil {
			remember(entry)
		}
		if err := evaluate(entry, opts); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
	}
}

// readEntry keeps prompting while the buffered program is an incomplete parse.
// It reports false at end of input.
func readEntry(in lineReader) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return "", true
		}
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := parser.ParseProgram(src); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
