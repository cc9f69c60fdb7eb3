package parsers

import (
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

// PHP covers classes, interfaces, and traits. Calls include static and member calls.
var PHP = &LanguageConfig{
	Name:          "php",
	Extensions:    []string{".php"},
	Grammar:       php.LanguagePHP,
	ClassKinds:    []string{"class_declaration", "interface_declaration", "trait_declaration", "enum_declaration"},
	FunctionKinds: []string{"function_definition", "method_declaration"},
	CallKinds: []string{
		"function_call_expression",
		"member_call_expression",
		"nullsafe_member_call_expression",
		"scoped_call_expression",
	},
	SkipKinds:    []string{"attribute_list"},
	CommentKinds: []string{"comment"},
}
