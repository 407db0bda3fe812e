package profile

import (
	"encoding/json"
	"fmt"
)

// MaxInheritanceDepth bounds the inheritance chain walked during resolution.
// Bundled profiles nest a handful of levels at most; anything deeper is a
// cycle rather than a legitimate hierarchy.
const MaxInheritanceDepth = 8

// BaseIndex looks up the engine's bundled factory profiles used as
// inheritance roots.
type BaseIndex interface {
	Lookup(category Category, name string) (*Document, bool)
}

// Resolver flattens documents against a base profile index.
//
// Resolution is pure: it performs no I/O beyond index lookups and never
// mutates its input, so it is safe to call concurrently with an in-flight
// slice job.
type Resolver struct {
	index BaseIndex
}

// NewResolver returns a resolver backed by the given base profile index.
func NewResolver(index BaseIndex) *Resolver {
	return &Resolver{index: index}
}

// Resolve flattens doc against its inheritance chain.
//
// The chain is walked iteratively with a depth counter: each "inherits"
// reference is looked up in the base index, and the collected chain is then
// merged root-first so that for every key present at multiple levels the
// child's value wins. Array and object values are replaced wholesale. The
// "inherits" key itself never appears in the output.
//
// Fails with ErrUnknownBaseProfile when a referenced base does not exist and
// with ErrInheritanceCycle when the chain exceeds MaxInheritanceDepth.
func (r *Resolver) Resolve(category Category, doc *Document) (*Document, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	chain := []*Document{doc}
	cur := doc
	for depth := 0; ; {
		raw, ok := cur.Get(KeyInherits)
		if !ok {
			break
		}
		var base string
		if err := json.Unmarshal(raw, &base); err != nil {
			return nil, fmt.Errorf("%w: %q is not a string", ErrInvalidDocument, KeyInherits)
		}
		if base == "" {
			break
		}

		depth++
		if depth > MaxInheritanceDepth {
			return nil, &ResolutionError{Category: category, Base: base, Err: ErrInheritanceCycle}
		}

		parent, ok := r.index.Lookup(category, base)
		if !ok {
			return nil, &ResolutionError{Category: category, Base: base, Err: ErrUnknownBaseProfile}
		}
		chain = append(chain, parent)
		cur = parent
	}

	// Merge root-first: later (more derived) documents override earlier ones.
	out := NewDocument()
	for i := len(chain) - 1; i >= 0; i-- {
		for _, key := range chain[i].Keys() {
			value, _ := chain[i].Get(key)
			out.Set(key, value)
		}
	}
	out.Delete(KeyInherits)

	return out, nil
}
