package parsers

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// Go models struct and interface types as classes. Methods attach to
// their receiver type when it is declared in the same file.
var Go = &LanguageConfig{
	Name:          "go",
	Extensions:    []string{".go"},
	Grammar:       golang.Language,
	ClassKinds:    []string{"type_spec"},
	FunctionKinds: []string{"function_declaration", "method_declaration", "method_elem"},
	CallKinds:     []string{"call_expression"},
	WrapperKinds:  []string{"type_declaration"},
	CommentKinds:  []string{"comment"},
	IsClass:       isGoClassType,
	Owner:         goReceiverType,
}

func isGoClassType(node *sitter.Node) bool {
	t := node.ChildByFieldName("type")
	if t == nil {
		return false
	}
	switch t.Kind() {
	case "struct_type", "interface_type":
		return true
	}
	return false
}

func goReceiverType(node *sitter.Node, source []byte) string {
	receiver := node.ChildByFieldName("receiver")
	if receiver == nil {
		return ""
	}
	return extractNodeText(findDescendantByType(receiver, "type_identifier"), source)
}
