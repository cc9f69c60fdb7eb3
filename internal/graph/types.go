package graph

// NodeType represents the kind of a node in the code graph.
type NodeType string

const (
	NodeRoot     NodeType = "root"
	NodeDir      NodeType = "dir"
	NodeFile     NodeType = "file"
	NodeClass    NodeType = "class"
	NodeFunction NodeType = "function"
	NodeMethod   NodeType = "method"
)

// RootID is the id of the project root node.
const RootID = "."

// Node represents a directory, file, or code entity in the project tree.
// Zero values of ParentID, FilePath, LineStart, and LineEnd mean "absent".
type Node struct {
	ID          string   `json:"id"`                  // Relative path, or "path:Outer.Inner" for entities
	ParentID    string   `json:"parent_id,omitempty"` // Empty only for the root
	Name        string   `json:"name"`                // Short display name
	Type        NodeType `json:"type"`                // Kind of node
	FilePath    string   `json:"file_path,omitempty"` // Relative file path (files and entities)
	LineStart   int      `json:"line_start,omitempty"`
	LineEnd     int      `json:"line_end,omitempty"`
	Signature   string   `json:"signature,omitempty"`
	Docstring   string   `json:"docstring,omitempty"`
	Calls       []string `json:"calls,omitempty"` // Callee names in first-appearance order
	ChildrenIDs []string `json:"children,omitempty"`
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := *n
	c.Calls = append([]string(nil), n.Calls...)
	c.ChildrenIDs = append([]string(nil), n.ChildrenIDs...)
	return &c
}

// IsEntity reports whether n is a class, function, or method.
func (n *Node) IsEntity() bool {
	switch n.Type {
	case NodeClass, NodeFunction, NodeMethod:
		return true
	}
	return false
}

// Stats counts nodes by type within a subtree.
type Stats struct {
	Files     int `json:"files"`
	Classes   int `json:"classes"`
	Functions int `json:"functions"`
	Methods   int `json:"methods"`
}

// Count adds one node of type t.
func (s *Stats) Count(t NodeType) {
	switch t {
	case NodeFile:
		s.Files++
	case NodeClass:
		s.Classes++
	case NodeFunction:
		s.Functions++
	case NodeMethod:
		s.Methods++
	}
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Files += other.Files
	s.Classes += other.Classes
	s.Functions += other.Functions
	s.Methods += other.Methods
}

// EntityID builds the id of an entity from its file path and qualified name parts.
func EntityID(filePath string, qualified ...string) string {
	id := filePath + ":"
	for i, part := range qualified {
		if i > 0 {
			id += "."
		}
		id += part
	}
	return id
}
