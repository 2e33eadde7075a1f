package paths

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is a tree node: either an Answer or a Branch.
// The zero value is not usable; build nodes with NewAnswer, NewIncomplete or
// NewBranch.
type Node struct {
	children *orderedmap.OrderedMap[string, *Entry] // nil for answers
	text     *string                                // nil for incomplete answers
}

// Entry is a keyed child of a Branch.
type Entry struct {
	Pattern *Pattern
	Node    *Node
}

// NewAnswer returns a terminal node holding text.
func NewAnswer(text string) *Node {
	return &Node{text: &text}
}

// NewIncomplete returns a terminal node with no answer yet.
func NewIncomplete() *Node {
	return &Node{}
}

// NewBranch returns an empty decision node.
func NewBranch() *Node {
	return &Node{children: orderedmap.New[string, *Entry]()}
}

// IsBranch reports whether n is a decision node.
func (n *Node) IsBranch() bool {
	return n.children != nil
}

// Text returns the answer held by a terminal node.
// ok is false for branches and for incomplete answers.
func (n *Node) Text() (text string, ok bool) {
	if n.IsBranch() || n.text == nil {
		return "", false
	}
	return *n.text, true
}

// Len returns the number of children of a branch (0 for answers).
func (n *Node) Len() int {
	if !n.IsBranch() {
		return 0
	}
	return n.children.Len()
}

// Get returns the child stored under key.
func (n *Node) Get(key string) (*Entry, bool) {
	if !n.IsBranch() {
		return nil, false
	}
	return n.children.Get(key)
}

// Entries returns the children of a branch in insertion order.
func (n *Node) Entries() []*Entry {
	if !n.IsBranch() {
		return nil
	}
	out := make([]*Entry, 0, n.children.Len())
	for pair := n.children.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Keys returns the child keys of a branch in insertion order.
func (n *Node) Keys() []string {
	entries := n.Entries()
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Pattern.Key()
	}
	return keys
}

// set stores child under p's key. An existing key keeps its position.
func (n *Node) set(p *Pattern, child *Node) {
	n.children.Set(p.Key(), &Entry{Pattern: p, Node: child})
}

// promote turns n into an empty branch in place.
func (n *Node) promote() {
	n.text = nil
	n.children = orderedmap.New[string, *Entry]()
}

// MarshalJSON encodes a branch as an object in insertion order, an answer
// as a string and an incomplete answer as null.
func (n *Node) MarshalJSON() ([]byte, error) {
	if !n.IsBranch() {
		if n.text == nil {
			return []byte("null"), nil
		}
		return json.Marshal(*n.text)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range n.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Pattern.Key())
		if err != nil {
			return nil, err
		}
		val, err := e.Node.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
