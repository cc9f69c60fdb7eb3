package parsers

import (
	"unsafe"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DocStyle selects where documentation for a definition is found.
type DocStyle int

const (
	// DocLeadingComment reads the comment block directly above a definition.
	DocLeadingComment DocStyle = iota
	// DocBodyString reads a string literal that opens the definition body.
	DocBodyString
)

// LanguageConfig describes how definitions look in one tree-sitter grammar.
// A single extractor walks every language using these tables.
type LanguageConfig struct {
	Name       string
	Extensions []string
	Grammar    func() unsafe.Pointer

	ClassKinds    []string
	FunctionKinds []string
	CallKinds     []string

	// BindingKinds bind a name to a value, e.g. `const f = () => {}`. A
	// binding whose value is one of FunctionValueKinds is a function.
	BindingKinds       []string
	FunctionValueKinds []string

	// OwnerKinds are blocks whose functions belong to a class declared
	// elsewhere in the file (e.g. Rust impl blocks).
	OwnerKinds []string

	// WrapperKinds wrap a definition without changing it (export statements,
	// type declarations). Leading comments may sit above the wrapper.
	WrapperKinds []string

	// SkipKinds may sit between a doc comment and its definition.
	SkipKinds []string

	CommentKinds []string
	DocStyle     DocStyle

	// IsClass filters class candidates. Nil accepts every ClassKinds node.
	IsClass func(node *sitter.Node) bool

	// Owner names the class a function attaches to, or "" for none.
	Owner func(node *sitter.Node, source []byte) string
}

func (c *LanguageConfig) language() *sitter.Language {
	return sitter.NewLanguage(c.Grammar())
}

func contains(list []string, kind string) bool {
	for _, k := range list {
		if k == kind {
			return true
		}
	}
	return false
}

func (c *LanguageConfig) isClass(node *sitter.Node) bool {
	if !contains(c.ClassKinds, node.Kind()) {
		return false
	}
	return c.IsClass == nil || c.IsClass(node)
}

// functionValue returns the function a binding node assigns, or nil.
func (c *LanguageConfig) functionValue(node *sitter.Node) *sitter.Node {
	if !contains(c.BindingKinds, node.Kind()) {
		return nil
	}
	value := node.ChildByFieldName("value")
	if value == nil || !contains(c.FunctionValueKinds, value.Kind()) {
		return nil
	}
	return value
}

func (c *LanguageConfig) isFunction(kind string) bool { return contains(c.FunctionKinds, kind) }
func (c *LanguageConfig) isCall(kind string) bool     { return contains(c.CallKinds, kind) }
func (c *LanguageConfig) isOwner(kind string) bool    { return contains(c.OwnerKinds, kind) }
func (c *LanguageConfig) isWrapper(kind string) bool  { return contains(c.WrapperKinds, kind) }
func (c *LanguageConfig) isSkipped(kind string) bool  { return contains(c.SkipKinds, kind) }
func (c *LanguageConfig) isComment(kind string) bool  { return contains(c.CommentKinds, kind) }
