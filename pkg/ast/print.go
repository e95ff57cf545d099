package ast

import (
	"fmt"
	"io"
	"strings"
)

// Label returns the text used for node in printed trees.
func Label(node Node) string {
	switch n := node.(type) {
	case *Identifier:
		return "<ID:" + n.Name + ">"
	case *IntegerLiteral:
		return fmt.Sprintf("<INT:%d>", n.Value)
	case *StringLiteral:
		return "<STR:'" + n.Value + "'>"
	case *Literal:
		return "<" + string(n.Kind) + ">"
	case *YStar:
		return "<Y*>"
	case *EmptyParams:
		return "()"
	case *Operator:
		return string(n.Op)
	case *BinaryOp:
		return string(n.Op)
	case *UnaryOp:
		return string(n.Op)
	case nil:
		return "<missing>"
	default:
		return string(node.NodeType())
	}
}

// Fprint writes node in pre-order, one line per node, prefixing each line
// with marker repeated once per depth level.
func Fprint(w io.Writer, node Node, marker string) error {
	var b strings.Builder
	writeTree(&b, node, marker, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

// Sprint is Fprint into a string with "." as the depth marker.
func Sprint(node Node) string {
	var b strings.Builder
	writeTree(&b, node, ".", 0)
	return b.String()
}

func writeTree(b *strings.Builder, node Node, marker string, depth int) {
	b.WriteString(strings.Repeat(marker, depth))
	b.WriteString(Label(node))
	b.WriteByte('\n')
	if node == nil {
		return
	}
	for _, child := range node.Children() {
		writeTree(b, child, marker, depth+1)
	}
}
