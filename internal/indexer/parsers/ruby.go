package parsers

import (
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

// Ruby treats modules as classes so their methods get qualified ids.
var Ruby = &LanguageConfig{
	Name:          "ruby",
	Extensions:    []string{".rb"},
	Grammar:       ruby.Language,
	ClassKinds:    []string{"class", "module"},
	FunctionKinds: []string{"method", "singleton_method"},
	CallKinds:     []string{"call"},
	CommentKinds:  []string{"comment"},
}
