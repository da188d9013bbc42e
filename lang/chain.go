package lang

import "slices"

// Chain is the ordered list of variable names currently being resolved.
//
// One Chain is shared by reference across every nested resolution started by
// a single top-level call. It is not safe for concurrent use; concurrent
// top-level calls each own a Chain.
type Chain struct {
	names []string
}

// NewChain returns an empty Chain.
func NewChain() *Chain { return &Chain{} }

// Contains reports whether name is being resolved.
func (c *Chain) Contains(name string) bool {
	return slices.Contains(c.names, name)
}

// Push appends name. It fails with [ErrCircularReference] if name is already
// present.
func (c *Chain) Push(name string) error {
	if c.Contains(name) {
		return ErrCircularReference.With(attrChain(c), attrName(name))
	}

	c.names = append(c.names, name)

	return nil
}

// Pop removes name.
func (c *Chain) Pop(name string) {
	if i := slices.Index(c.names, name); i >= 0 {
		c.names = slices.Delete(c.names, i, i+1)
	}
}

// Len returns the number of names in the chain.
func (c *Chain) Len() int { return len(c.names) }

// Names returns a copy of the names in resolution order.
func (c *Chain) Names() []string { return slices.Clone(c.names) }
