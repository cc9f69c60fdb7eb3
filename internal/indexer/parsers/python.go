package parsers

import (
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// Python reads docstrings from the string literal opening a class or function body.
var Python = &LanguageConfig{
	Name:          "python",
	Extensions:    []string{".py", ".pyi"},
	Grammar:       python.Language,
	ClassKinds:    []string{"class_definition"},
	FunctionKinds: []string{"function_definition"},
	CallKinds:     []string{"call"},
	CommentKinds:  []string{"comment"},
	DocStyle:      DocBodyString,
}
