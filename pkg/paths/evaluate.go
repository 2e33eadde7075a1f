package paths

// Match is the outcome of a descent through the tree.
type Match struct {
	// Keys are the patterns matched on the way down, root first.
	Keys []string
	// Text is the answer, if any.
	Text string
	// Matched is true when the descent ended on an answer node.
	Matched bool
	// Answered is true when that answer was complete.
	Answered bool
}

// Depth returns the number of levels descended.
func (m Match) Depth() int {
	return len(m.Keys)
}

// Verify reports whether n and everything below it is complete.
// An empty branch passes vacuously.
func (n *Node) Verify() bool {
	if !n.IsBranch() {
		return n.text != nil
	}
	for _, e := range n.Entries() {
		if e.Node.IsBranch() {
			if !e.Node.Verify() {
				return false
			}
			continue
		}
		if e.Node.text == nil {
			return false
		}
	}
	return true
}

// Incomplete returns the key path of every placeholder answer below n.
func (n *Node) Incomplete() [][]string {
	var out [][]string
	n.Walk(func(keys []string, node *Node) {
		if !node.IsBranch() && node.text == nil {
			out = append(out, keys)
		}
	})
	return out
}

// Evaluate matches input against the entries below n.
// The first entry in insertion order whose pattern matches wins; a branch is
// descended with the same input and its siblings are never revisited.
func (n *Node) Evaluate(input string) (string, bool) {
	m := n.trace(input, nil)
	return m.Text, m.Answered
}

func (n *Node) trace(input string, onErr func(key string, err error)) Match {
	var m Match
	cur := n
	for cur.IsBranch() {
		next := cur.firstMatch(input, onErr)
		if next == nil {
			return Match{Keys: m.Keys}
		}
		m.Keys = append(m.Keys, next.Pattern.Key())
		cur = next.Node
	}
	m.Matched = true
	m.Text, m.Answered = cur.Text()
	return m
}

func (n *Node) firstMatch(input string, onErr func(key string, err error)) *Entry {
	for _, e := range n.Entries() {
		ok, err := e.Pattern.MatchString(input)
		if err != nil {
			if onErr != nil {
				onErr(e.Pattern.Key(), err)
			}
			continue
		}
		if ok {
			return e
		}
	}
	return nil
}

// WalkFunc is called for each entry with the keys leading to it.
// Each call receives its own keys slice.
type WalkFunc func(keys []string, node *Node)

// Walk visits every entry below n depth-first in insertion order.
func (n *Node) Walk(fn WalkFunc) {
	n.walk(nil, fn)
}

func (n *Node) walk(prefix []string, fn WalkFunc) {
	for _, e := range n.Entries() {
		keys := make([]string, len(prefix)+1)
		copy(keys, prefix)
		keys[len(prefix)] = e.Pattern.Key()
		fn(keys, e.Node)
		if e.Node.IsBranch() {
			e.Node.walk(keys, fn)
		}
	}
}
