// Package output renders read results as compact plain text.
package output

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/contexto/internal/explore"
	"github.com/mvp-joe/contexto/internal/graph"
	"github.com/mvp-joe/contexto/internal/search"
)

// FormatMap renders the project overview: one line per top-level directory.
func FormatMap(m *explore.MapResult) string {
	lines := []string{
		"project: " + m.RootName,
		"root: " + m.RootPath,
		"",
	}
	for _, dir := range m.Dirs {
		lines = append(lines, fmt.Sprintf("%-20s%s", dir.Node.Name+"/", summary(dir.Stats, true)))
	}
	return strings.Join(lines, "\n")
}

// FormatExpand renders a node and its children. Directories list their
// entries, files list their classes and functions, classes list their
// methods with signatures.
func FormatExpand(r *explore.ExpandResult) string {
	node := r.Node
	var lines []string

	switch node.Type {
	case graph.NodeRoot, graph.NodeDir:
		display := node.ID
		if node.Type == graph.NodeRoot {
			display = node.Name
		}
		lines = append(lines, display+"/", "")

		for _, child := range r.Children {
			switch child.Node.Type {
			case graph.NodeDir:
				files := ""
				if child.Stats.Files > 0 {
					files = fmt.Sprintf("  (%d files)", child.Stats.Files)
				}
				lines = append(lines, "  "+child.Node.Name+"/"+files)
			case graph.NodeFile:
				lines = append(lines, "  "+child.Node.Name+parenthesized(summary(child.Stats, false)))
			}
		}

	case graph.NodeFile:
		header := node.ID
		if node.LineEnd > 0 {
			header += fmt.Sprintf(" (%d lines)", node.LineEnd)
		}
		lines = append(lines, header, "")

		for _, child := range r.Children {
			c := child.Node
			switch c.Type {
			case graph.NodeClass:
				lines = append(lines, "class "+c.Name+lineRange(c))
				if c.Docstring != "" {
					lines = append(lines, `  """`+Truncate(c.Docstring, 80)+`"""`)
				}
				for _, methodID := range c.ChildrenIDs {
					lines = append(lines, "  - "+methodID[strings.LastIndex(methodID, ".")+1:])
				}
				lines = append(lines, "")
			case graph.NodeFunction:
				lines = append(lines, "function "+c.Name+lineRange(c))
			}
		}

	case graph.NodeClass:
		lines = append(lines, "class "+node.Name+lineRange(node))
		if node.FilePath != "" {
			lines = append(lines, "file: "+node.FilePath)
		}
		if node.Docstring != "" {
			lines = append(lines, `"""`+Truncate(node.Docstring, 150)+`"""`)
		}
		lines = append(lines, "")

		for _, child := range r.Children {
			c := child.Node
			lines = append(lines, "  "+c.Name+lineRange(c))
			if c.Signature != "" {
				lines = append(lines, "    "+c.Signature)
			}
			if c.Docstring != "" {
				lines = append(lines, `    """`+Truncate(c.Docstring, 80)+`"""`)
			}
		}

	default:
		lines = append(lines, fmt.Sprintf("%s: %s", node.Type, node.ID))
	}

	return strings.Join(lines, "\n")
}

// FormatInspect renders an entity with its signature, docstring, and call
// relationships.
func FormatInspect(r *explore.InspectResult) string {
	node := r.Node
	lines := []string{fmt.Sprintf("%s: %s", node.Type, node.Name)}

	if node.FilePath != "" {
		lines = append(lines, "file: "+node.FilePath+lineRange(node))
	}
	if node.Signature != "" {
		lines = append(lines, "signature: "+node.Signature)
	}
	if node.Docstring != "" {
		lines = append(lines, "docstring: "+node.Docstring)
	}

	if len(r.Calls) > 0 {
		lines = append(lines, "", "calls:")
		for _, call := range r.Calls {
			lines = append(lines, "  - "+call)
		}
	}
	if len(r.CalledBy) > 0 {
		lines = append(lines, "", "called by:")
		for _, caller := range r.CalledBy {
			lines = append(lines, "  - "+caller)
		}
	}

	return strings.Join(lines, "\n")
}

// FormatSearchResults renders ranked results, showing each match's signature
// or, failing that, the first line of its docstring.
func FormatSearchResults(query string, results []search.Result) string {
	lines := []string{fmt.Sprintf("search: \"%s\" (%d results)", query, len(results)), ""}

	for i, r := range results {
		lines = append(lines, fmt.Sprintf("%d. %s [%s]", i+1, r.Node.ID, r.Node.Type))
		switch {
		case r.Node.Signature != "":
			lines = append(lines, "   "+r.Node.Signature)
		case r.Node.Docstring != "":
			lines = append(lines, `   """`+Truncate(r.Node.Docstring, 60)+`"""`)
		}
		lines = append(lines, "")
	}

	return strings.TrimRight(strings.Join(lines, "\n"), " \n")
}

// FormatRead renders source lines prefixed with right-aligned line numbers.
func FormatRead(r *explore.ReadResult) string {
	lines := []string{"file: " + r.Path, ""}
	for i, line := range r.Lines {
		lines = append(lines, fmt.Sprintf("%4d | %s", r.StartLine+i, line))
	}
	return strings.Join(lines, "\n")
}

// Truncate returns the first line of text, cut to maxLen runes with "..."
// when longer.
func Truncate(text string, maxLen int) string {
	first := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	runes := []rune(first)
	if len(runes) <= maxLen {
		return first
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// summary lists the non-zero counts of s. Methods are counted as functions.
func summary(s graph.Stats, withFiles bool) string {
	var parts []string
	if withFiles && s.Files > 0 {
		parts = append(parts, fmt.Sprintf("%d files", s.Files))
	}
	if s.Classes > 0 {
		parts = append(parts, fmt.Sprintf("%d classes", s.Classes))
	}
	if funcs := s.Functions + s.Methods; funcs > 0 {
		parts = append(parts, fmt.Sprintf("%d functions", funcs))
	}
	return strings.Join(parts, ", ")
}

func parenthesized(s string) string {
	if s == "" {
		return ""
	}
	return "  (" + s + ")"
}

func lineRange(n *graph.Node) string {
	if n.LineStart == 0 {
		return ""
	}
	return fmt.Sprintf(" [%d-%d]", n.LineStart, n.LineEnd)
}
