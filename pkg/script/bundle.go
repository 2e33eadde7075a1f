package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/arcty/pkg/domain"
	"github.com/aretw0/arcty/pkg/paths"
)

// ErrAmbiguousPath is returned for an entry that has both an answer and
// nested paths.
var ErrAmbiguousPath = errors.New("path has both an answer and nested paths")

// Plans maps a key path to the UI actions attached to its answer.
type Plans map[string]domain.Plan

// For returns the plan attached to the answer reached through keys.
func (p Plans) For(keys []string) domain.Plan {
	return p[planKey(keys)]
}

func planKey(keys []string) string {
	return strings.Join(keys, "\x00")
}

// drop forgets the plan at keys and every plan below it. An entry inserted
// again replaces its whole subtree, plans included.
func (p Plans) drop(keys []string) {
	key := planKey(keys)
	delete(p, key)
	for k := range p {
		if strings.HasPrefix(k, key+"\x00") {
			delete(p, k)
		}
	}
}

// Bundle is a script compiled into a decision tree.
type Bundle struct {
	Script *Script
	Tree   *paths.Tree
	Plans  Plans
}

// Build inserts every authored path into a new tree, parents before
// children. All insertion failures are reported together. The bundle holds
// a copy of s with empty texts set to their stock values.
func (s *Script) Build(opts ...paths.Option) (*Bundle, error) {
	filled := *s
	filled.ApplyDefaults()

	b := &Bundle{
		Script: &filled,
		Tree:   paths.New(opts...),
		Plans:  make(Plans),
	}

	var errs []error
	for _, spec := range s.Paths {
		errs = append(errs, b.insert(spec, nil)...)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to build paths: %w", err)
	}
	return b, nil
}

func (b *Bundle) insert(spec PathSpec, subpath []string) []error {
	if spec.Answer != nil && len(spec.Paths) > 0 {
		return []error{fmt.Errorf("%q: %w", spec.Pattern, ErrAmbiguousPath)}
	}

	if err := b.Tree.Insert(spec.Pattern, subpath, spec.Answer); err != nil {
		return []error{err}
	}

	keys := append(append([]string(nil), subpath...), paths.CanonicalKey(spec.Pattern))
	b.Plans.drop(keys)
	if len(spec.Actions) > 0 {
		plan := make(domain.Plan, 0, len(spec.Actions))
		for _, a := range spec.Actions {
			plan = append(plan, a.Action())
		}
		b.Plans[planKey(keys)] = plan
	}

	var errs []error
	for _, child := range spec.Paths {
		errs = append(errs, b.insert(child, keys)...)
	}
	return errs
}
