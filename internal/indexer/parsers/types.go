package parsers

import "errors"

var (
	// ErrUnsupportedLanguage is returned when no parser is registered for a file extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrSyntax is returned when the source text does not parse cleanly.
	ErrSyntax = errors.New("syntax error")
)

// EntityKind identifies what a parsed entity is.
type EntityKind string

const (
	KindClass    EntityKind = "class"
	KindFunction EntityKind = "function"
	KindMethod   EntityKind = "method"
)

// Entity is a class, function, or method extracted from one source file.
// Children are only populated for classes and keep source order.
type Entity struct {
	Kind      EntityKind
	Name      string
	Signature string
	Docstring string
	StartLine int
	EndLine   int
	Calls     []string
	Children  []Entity
}

// Parser turns the text of a source file into its top-level entities.
type Parser interface {
	Parse(filePath string, source []byte) ([]Entity, error)
}
