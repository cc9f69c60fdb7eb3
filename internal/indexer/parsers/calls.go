package parsers

import (
	"regexp"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*[?!]?$`)

// calleeFields are tried in order to find the called expression of a call node.
var calleeFields = []string{"function", "name", "method"}

// memberFields hold the final identifier of a qualified expression.
var memberFields = []string{"attribute", "property", "field", "name", "method", "function"}

// calls lists callee names in first-appearance order, without duplicates.
func (x *extractor) calls(node *sitter.Node) []string {
	var names []string
	seen := make(map[string]bool)

	walkTree(node, func(n *sitter.Node) bool {
		if !x.config.isCall(n.Kind()) {
			return true
		}
		if name := x.calleeName(n); name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return true
	})
	return names
}

func (x *extractor) calleeName(call *sitter.Node) string {
	for _, field := range calleeFields {
		if target := call.ChildByFieldName(field); target != nil {
			return x.finalIdentifier(target, 0)
		}
	}
	return ""
}

// finalIdentifier resolves `a.b.c` style expressions to `c`.
func (x *extractor) finalIdentifier(node *sitter.Node, depth int) string {
	if node == nil || depth > 8 {
		return ""
	}

	if node.NamedChildCount() == 0 {
		text := extractNodeText(node, x.source)
		if identifierPattern.MatchString(text) {
			return text
		}
		return ""
	}

	for _, field := range memberFields {
		if member := node.ChildByFieldName(field); member != nil {
			return x.finalIdentifier(member, depth+1)
		}
	}

	// Qualified names without fields, e.g. PHP `\Foo\bar`.
	return x.finalIdentifier(node.NamedChild(node.NamedChildCount()-1), depth+1)
}
