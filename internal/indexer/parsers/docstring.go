package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

func (x *extractor) docstring(node *sitter.Node) string {
	if x.config.DocStyle == DocBodyString {
		return x.bodyDocstring(node)
	}

	if doc := x.leadingComment(node); doc != "" {
		return doc
	}
	// Comments may sit above an export statement or a type declaration.
	for parent := node.Parent(); parent != nil && x.config.isWrapper(parent.Kind()); parent = parent.Parent() {
		if doc := x.leadingComment(parent); doc != "" {
			return doc
		}
	}
	return ""
}

// bodyDocstring returns the string literal that opens a definition body.
func (x *extractor) bodyDocstring(node *sitter.Node) string {
	body := node.ChildByFieldName("body")
	if body == nil {
		return ""
	}

	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt == nil || x.config.isComment(stmt.Kind()) {
			continue
		}
		if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() == 0 {
			return ""
		}
		expr := stmt.NamedChild(0)
		if expr == nil || expr.Kind() != "string" {
			return ""
		}
		return cleanStringDocstring(extractNodeText(expr, x.source))
	}
	return ""
}

// cleanStringDocstring strips quotes and common indentation from a string literal.
func cleanStringDocstring(raw string) string {
	s := strings.TrimLeft(raw, "rRbBuUfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = s[len(q) : len(s)-len(q)]
			break
		}
	}
	return dedent(s)
}

// dedent removes the smallest indentation shared by all lines after the first.
func dedent(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\t", "        "), "\n")

	indent := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if n := len(line) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}

	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if indent > 0 && len(lines[i]) >= indent {
			lines[i] = lines[i][indent:]
		} else {
			lines[i] = strings.TrimLeft(lines[i], " ")
		}
		lines[i] = strings.TrimRight(lines[i], " ")
	}

	return strings.Trim(strings.Join(lines, "\n"), "\n ")
}

// leadingComment collects the contiguous comment block ending on the line
// directly above node.
func (x *extractor) leadingComment(node *sitter.Node) string {
	var blocks []string
	nextRow := node.StartPosition().Row

	for prev := node.PrevNamedSibling(); prev != nil; prev = prev.PrevNamedSibling() {
		kind := prev.Kind()
		if x.config.isSkipped(kind) && len(blocks) == 0 {
			nextRow = prev.StartPosition().Row
			continue
		}
		if !x.config.isComment(kind) {
			break
		}
		if prev.EndPosition().Row+1 < nextRow {
			break
		}
		blocks = append(blocks, extractNodeText(prev, x.source))
		nextRow = prev.StartPosition().Row
	}

	if len(blocks) == 0 {
		return ""
	}

	var lines []string
	for i := len(blocks) - 1; i >= 0; i-- {
		lines = append(lines, cleanComment(blocks[i])...)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n ")
}

func cleanComment(text string) []string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "/*") {
		text = strings.TrimPrefix(text, "/**")
		text = strings.TrimPrefix(text, "/*")
		text = strings.TrimSuffix(text, "*/")

		var out []string
		for _, line := range strings.Split(text, "\n") {
			line = strings.TrimSpace(line)
			line = strings.TrimSpace(strings.TrimPrefix(line, "*"))
			out = append(out, line)
		}
		return out
	}

	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"///", "//!", "//", "#"} {
			if strings.HasPrefix(line, prefix) {
				line = strings.TrimPrefix(line, prefix)
				break
			}
		}
		out = append(out, strings.TrimSpace(line))
	}
	return out
}
