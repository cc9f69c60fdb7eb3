package parsers

import (
	"fmt"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterParser extracts entities from any grammar described by a LanguageConfig.
type treeSitterParser struct {
	config   *LanguageConfig
	language *sitter.Language
}

func newTreeSitterParser(config *LanguageConfig) *treeSitterParser {
	return &treeSitterParser{
		config:   config,
		language: config.language(),
	}
}

// Parse parses source and returns its top-level entities in source order.
func (p *treeSitterParser) Parse(filePath string, source []byte) ([]Entity, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to load %s grammar: %w", p.config.Name, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, filePath)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, filePath)
	}

	x := &extractor{
		config: p.config,
		source: source,
		owned:  make(map[string][]Entity),
	}
	entities := x.collect(root, false)
	return x.attachOwned(entities), nil
}

// extractor holds per-parse state.
type extractor struct {
	config *LanguageConfig
	source []byte

	// owned holds methods declared outside their class body, keyed by class name.
	owned      map[string][]Entity
	ownerOrder []string
}

// collect walks the named children of node. Function bodies are not entered,
// so nested functions never become entities.
func (x *extractor) collect(node *sitter.Node, inClass bool) []Entity {
	var out []Entity
	count := node.NamedChildCount()
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		kind := child.Kind()

		switch {
		case x.config.isClass(child):
			if e, ok := x.classEntity(child); ok {
				out = append(out, e)
			}
		case x.config.isFunction(kind):
			e, ok := x.functionEntity(child, inClass)
			if !ok {
				continue
			}
			if !inClass && x.config.Owner != nil {
				if owner := x.config.Owner(child, x.source); owner != "" {
					x.own(owner, e)
					continue
				}
			}
			out = append(out, e)
		case x.config.functionValue(child) != nil:
			if e, ok := x.bindingEntity(child, inClass); ok {
				out = append(out, e)
			}
		case x.config.isOwner(kind):
			owner := ""
			if x.config.Owner != nil {
				owner = x.config.Owner(child, x.source)
			}
			for _, e := range x.collect(child, true) {
				if owner == "" || e.Kind == KindClass {
					out = append(out, e)
					continue
				}
				x.own(owner, e)
			}
		default:
			out = append(out, x.collect(child, inClass)...)
		}
	}
	return out
}

func (x *extractor) own(owner string, e Entity) {
	if _, ok := x.owned[owner]; !ok {
		x.ownerOrder = append(x.ownerOrder, owner)
	}
	e.Kind = KindMethod
	x.owned[owner] = append(x.owned[owner], e)
}

// attachOwned moves out-of-body methods into the class with the matching name.
// Methods whose class is not in this file stay top-level functions.
func (x *extractor) attachOwned(entities []Entity) []Entity {
	for i := range entities {
		e := &entities[i]
		if e.Kind != KindClass {
			continue
		}
		methods, ok := x.owned[e.Name]
		if !ok {
			continue
		}
		e.Children = append(e.Children, methods...)
		sortByLine(e.Children)
		delete(x.owned, e.Name)
	}

	for _, owner := range x.ownerOrder {
		for _, m := range x.owned[owner] {
			m.Kind = KindFunction
			entities = append(entities, m)
		}
	}
	sortByLine(entities)
	return entities
}

func sortByLine(entities []Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].StartLine < entities[j].StartLine
	})
}

func (x *extractor) classEntity(node *sitter.Node) (Entity, bool) {
	name := x.nameOf(node)
	if name == "" {
		return Entity{}, false
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		body = node
	}

	start, end := lineRange(node)
	return Entity{
		Kind:      KindClass,
		Name:      name,
		Docstring: x.docstring(node),
		StartLine: start,
		EndLine:   end,
		Children:  x.collect(body, true),
	}, true
}

func (x *extractor) functionEntity(node *sitter.Node, inClass bool) (Entity, bool) {
	name := x.nameOf(node)
	if name == "" {
		return Entity{}, false
	}

	kind := KindFunction
	if inClass {
		kind = KindMethod
	}

	start, end := lineRange(node)
	return Entity{
		Kind:      kind,
		Name:      name,
		Signature: x.signature(node),
		Docstring: x.docstring(node),
		StartLine: start,
		EndLine:   end,
		Calls:     x.calls(node),
	}, true
}

// bindingEntity builds a function from a name bound to a function value,
// e.g. `export const load = async (id) => {}` or a class field arrow.
func (x *extractor) bindingEntity(node *sitter.Node, inClass bool) (Entity, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		nameNode = node.ChildByFieldName("property")
	}
	if nameNode == nil {
		return Entity{}, false
	}
	switch nameNode.Kind() {
	case "identifier", "property_identifier", "private_property_identifier":
	default:
		// Destructuring patterns bind no single name.
		return Entity{}, false
	}
	value := x.config.functionValue(node)

	// The declaration statement carries the keyword and any leading comment.
	decl := node
	if parent := node.Parent(); parent != nil && (parent.Kind() == "lexical_declaration" || parent.Kind() == "variable_declaration") {
		decl = parent
	}

	kind := KindFunction
	if inClass {
		kind = KindMethod
	}

	start, _ := lineRange(decl)
	_, end := lineRange(node)
	return Entity{
		Kind:      kind,
		Name:      extractNodeText(nameNode, x.source),
		Signature: x.header(decl, value.ChildByFieldName("body")),
		Docstring: x.docstring(decl),
		StartLine: start,
		EndLine:   end,
		Calls:     x.calls(value),
	}, true
}

// nameOf returns the declared name of a definition node.
func (x *extractor) nameOf(node *sitter.Node) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return lastSegment(extractNodeText(n, x.source))
	}
	if d := node.ChildByFieldName("declarator"); d != nil {
		return x.declaratorName(d)
	}
	return ""
}

// declaratorName follows C-style declarator chains down to the identifier.
func (x *extractor) declaratorName(node *sitter.Node) string {
	for depth := 0; node != nil && depth < 16; depth++ {
		switch node.Kind() {
		case "identifier", "field_identifier":
			return extractNodeText(node, x.source)
		}
		next := node.ChildByFieldName("declarator")
		if next == nil {
			next = findChildByType(node, "identifier")
		}
		node = next
	}
	return ""
}

// lastSegment strips namespace qualifiers such as "A::B" or "a.b".
func lastSegment(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	if i := strings.LastIndexAny(name, `.\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// signature is the header text up to the body, whitespace collapsed.
func (x *extractor) signature(node *sitter.Node) string {
	return x.header(node, node.ChildByFieldName("body"))
}

// header is the text from the start of node up to body. Without a body it is
// the first line of node.
func (x *extractor) header(node, body *sitter.Node) string {
	var text string
	if body != nil && body.StartByte() > node.StartByte() {
		text = string(x.source[node.StartByte():body.StartByte()])
	} else {
		text = extractNodeText(node, x.source)
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
	}

	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(strings.TrimRight(text, ":{; "))
}

func lineRange(node *sitter.Node) (int, int) {
	return int(node.StartPosition().Row) + 1, int(node.EndPosition().Row) + 1
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for each node.
// Returning false from the visitor skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findDescendantByType returns the first node of the given type in pre-order.
func findDescendantByType(node *sitter.Node, nodeType string) *sitter.Node {
	var found *sitter.Node
	walkTree(node, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind() == nodeType {
			found = n
			return false
		}
		return true
	})
	return found
}
