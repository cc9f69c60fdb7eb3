package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// Rust functions inside impl blocks become methods of the implemented type.
var Rust = &LanguageConfig{
	Name:          "rust",
	Extensions:    []string{".rs"},
	Grammar:       rust.Language,
	ClassKinds:    []string{"struct_item", "enum_item", "trait_item", "union_item"},
	FunctionKinds: []string{"function_item", "function_signature_item"},
	CallKinds:     []string{"call_expression"},
	OwnerKinds:    []string{"impl_item"},
	SkipKinds:     []string{"attribute_item"},
	CommentKinds:  []string{"line_comment", "block_comment"},
	Owner:         rustImplType,
}

func rustImplType(node *sitter.Node, source []byte) string {
	if node.Kind() != "impl_item" {
		return ""
	}
	t := node.ChildByFieldName("type")
	if t == nil {
		return ""
	}
	if t.Kind() == "type_identifier" {
		return extractNodeText(t, source)
	}
	return extractNodeText(findDescendantByType(t, "type_identifier"), source)
}
