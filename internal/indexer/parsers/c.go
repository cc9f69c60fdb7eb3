package parsers

import (
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

// C has no classes; function names come from the declarator chain.
var C = &LanguageConfig{
	Name:          "c",
	Extensions:    []string{".c", ".h"},
	Grammar:       c.Language,
	FunctionKinds: []string{"function_definition"},
	CallKinds:     []string{"call_expression"},
	CommentKinds:  []string{"comment"},
}
