package paths

import (
	"log/slog"

	"github.com/aretw0/arcty/internal/logging"
)

// Tree is a regex-keyed decision tree mapping input text to canned answers.
//
// A Tree is not safe for concurrent mutation. Once fully built it may be
// evaluated from several goroutines; hosts replace whole trees on reload
// instead of mutating a shared one.
type Tree struct {
	root   *Node
	logger *slog.Logger
}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the logger used to report skipped insertions and
// regex engine errors.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		t.logger = logger
	}
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		root:   NewBranch(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Root returns the root branch.
func (t *Tree) Root() *Node {
	return t.root
}

type insertConfig struct {
	createMissing bool
}

// InsertOption tunes a single insertion.
type InsertOption func(*insertConfig)

// CreateMissing makes Insert create empty branches for subpath keys that do
// not exist yet, instead of rejecting the insertion.
func CreateMissing() InsertOption {
	return func(c *insertConfig) {
		c.createMissing = true
	}
}

// Insert sets the entry keyed by pattern at the node addressed by subpath.
// A nil answer stores an incomplete placeholder.
//
// subpath is a sequence of keys from the root; every key must already exist
// unless CreateMissing is given. If the addressed node is an answer it is
// turned into a branch first. Failures are logged and returned as
// *InsertError; the tree is left unchanged.
func (t *Tree) Insert(pattern string, subpath []string, answer *string, opts ...InsertOption) error {
	var cfg insertConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	fail := func(err error) error {
		ierr := &InsertError{Pattern: pattern, Subpath: subpath, Err: err}
		t.logger.Error("path insertion skipped", "pattern", pattern, "subpath", subpath, "err", err)
		return ierr
	}

	p, err := Compile(pattern)
	if err != nil {
		return fail(err)
	}

	parent, err := t.resolve(subpath, cfg.createMissing)
	if err != nil {
		return fail(err)
	}

	if !parent.IsBranch() {
		t.logger.Debug("promoting answer to branch", "subpath", subpath)
		parent.promote()
	}

	leaf := NewIncomplete()
	if answer != nil {
		leaf = NewAnswer(*answer)
	}
	parent.set(p, leaf)

	t.logger.Debug("path inserted", "key", p.Key(), "subpath", subpath, "complete", answer != nil)
	return nil
}

// resolve walks subpath and returns the addressed node. In strict mode the
// walk is validated before anything is mutated.
func (t *Tree) resolve(subpath []string, create bool) (*Node, error) {
	if !create {
		cur := t.root
		for i, raw := range subpath {
			e, ok := cur.Get(CanonicalKey(raw))
			if !ok {
				return nil, ErrPathNotFound
			}
			// Only the last node may be an answer awaiting promotion.
			if !e.Node.IsBranch() && i < len(subpath)-1 {
				return nil, ErrPathNotFound
			}
			cur = e.Node
		}
		return cur, nil
	}

	// Compile everything up front so a bad key cannot leave half a path behind.
	patterns := make([]*Pattern, len(subpath))
	for i, raw := range subpath {
		p, err := Compile(raw)
		if err != nil {
			return nil, err
		}
		patterns[i] = p
	}

	cur := t.root
	for _, p := range patterns {
		if !cur.IsBranch() {
			cur.promote()
		}
		e, ok := cur.Get(p.Key())
		if !ok {
			child := NewBranch()
			cur.set(p, child)
			cur = child
			continue
		}
		cur = e.Node
	}
	return cur, nil
}

// Verify reports whether every reachable answer in the tree is complete.
func (t *Tree) Verify() bool {
	return t.root.Verify()
}

// Incomplete returns the key path of every placeholder answer in the tree.
func (t *Tree) Incomplete() [][]string {
	return t.root.Incomplete()
}

// Evaluate matches input against the tree.
// ok is false when no pattern matched or the matched answer is incomplete.
func (t *Tree) Evaluate(input string) (string, bool) {
	m := t.Trace(input)
	return m.Text, m.Answered
}

// Trace evaluates input and reports the keys walked on the way.
func (t *Tree) Trace(input string) Match {
	return t.root.trace(input, func(key string, err error) {
		t.logger.Warn("pattern test failed, treating as no match", "key", key, "err", err)
	})
}

// Walk visits every entry depth-first in insertion order.
func (t *Tree) Walk(fn WalkFunc) {
	t.root.Walk(fn)
}
