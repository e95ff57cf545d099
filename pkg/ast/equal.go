package ast

// SameTree reports whether a and b are structurally identical trees.
func SameTree(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.NodeType() != b.NodeType() || Label(a) != Label(b) {
		return false
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !SameTree(ac[i], bc[i]) {
			return false
		}
	}
	return true
}
