// Package interpreter linearizes standardized RPAL trees into control
// structures and evaluates them on a CSE machine.
package interpreter

import (
	"fmt"

	"github.com/NipunSachintha/RPAL-interpreter/pkg/ast"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/parser"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/runtime"
	"github.com/NipunSachintha/RPAL-interpreter/pkg/standardizer"
)

// Compilation holds every intermediate form of one program.
type Compilation struct {
	Syntax   ast.Node
	Standard ast.Node
	Program  *Program
}

// Compile parses, standardizes and linearizes src.
func Compile(src string) (*Compilation, error) {
	syntax, err := parser.ParseProgram(src)
	if err != nil {
		return nil, err
	}
	std, err := standardizer.Standardize(syntax)
	if err != nil {
		return nil, fmt.Errorf("standardize: %w", err)
	}
	prog, err := Linearize(std)
	if err != nil {
		return nil, fmt.Errorf("linearize: %w", err)
	}
	return &Compilation{Syntax: syntax, Standard: std, Program: prog}, nil
}

// Evaluate runs a standardized tree to its answer.
func Evaluate(std ast.Node, opts Options) (runtime.Value, error) {
	prog, err := Linearize(std)
	if err != nil {
		return nil, fmt.Errorf("linearize: %w", err)
	}
	return NewMachine(prog, opts).Run()
}

// EvaluateSource compiles src and runs it to its answer.
func EvaluateSource(src string, opts Options) (runtime.Value, error) {
	comp, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return NewMachine(comp.Program, opts).Run()
}
