package parsers

import (
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// Java reads Javadoc and line comments above declarations.
var Java = &LanguageConfig{
	Name:          "java",
	Extensions:    []string{".java"},
	Grammar:       java.Language,
	ClassKinds:    []string{"class_declaration", "interface_declaration", "enum_declaration", "record_declaration"},
	FunctionKinds: []string{"method_declaration", "constructor_declaration"},
	CallKinds:     []string{"method_invocation"},
	CommentKinds:  []string{"line_comment", "block_comment"},
}
