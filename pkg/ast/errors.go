package ast

import (
	"errors"
	"fmt"
)

// ErrMalformedNode matches every *MalformedNodeError.
var ErrMalformedNode = errors.New("malformed node")

// MalformedNodeError reports a tree shape that no rewrite rule accepts.
type MalformedNodeError struct {
	Label  string
	Reason string
}

func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("malformed '%s': %s", e.Label, e.Reason)
}

func (e *MalformedNodeError) Is(target error) bool {
	return target == ErrMalformedNode
}

// Malformed builds a *MalformedNodeError for node.
func Malformed(node Node, format string, args ...any) error {
	label := "<missing>"
	if node != nil {
		label = string(node.NodeType())
		switch n := node.(type) {
		case *BinaryOp:
			label = string(n.Op)
		case *UnaryOp:
			label = string(n.Op)
		}
	}
	return &MalformedNodeError{Label: label, Reason: fmt.Sprintf(format, args...)}
}
