package layout

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces ids for nodes created by the engine.
type IDGenerator interface {
	NewID(kind Kind) string
}

// UUIDGenerator creates ids of the form "<kind>-<uuid>".
type UUIDGenerator struct{}

// NewID returns a random, kind-prefixed id.
func (UUIDGenerator) NewID(kind Kind) string {
	return string(kind) + "-" + uuid.NewString()
}

// SequenceGenerator creates predictable ids of the form "<kind>-<n>".
// It is safe for concurrent use and intended for tests and fixtures.
type SequenceGenerator struct {
	mu   sync.Mutex
	next map[Kind]int
}

// NewID returns the next id for kind, starting at 1.
func (g *SequenceGenerator) NewID(kind Kind) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next == nil {
		g.next = make(map[Kind]int)
	}
	g.next[kind]++
	return fmt.Sprintf("%s-%d", kind, g.next[kind])
}

// freshID asks gen for ids until one is unused in t.
func freshID(t *Tree, gen IDGenerator, kind Kind) string {
	for {
		id := gen.NewID(kind)
		if _, taken := t.Layout[id]; !taken {
			if _, taken := t.Areas[id]; !taken {
				return id
			}
		}
	}
}
