// Package screen hosts independent layout instances.
//
// A [Screen] owns one committed tree, the rectangle it is projected into, the
// cached viewports of that projection and its own gesture controller. Screens
// share nothing: a gesture on one screen never touches another screen's tree.
// A [Manager] names screens and persists them through a store.
package screen

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/gesture"
	"github.com/matzehuels/karmyc/pkg/layout"
)

// Screen is one layout instance. It is safe for concurrent use.
type Screen struct {
	name   string
	engine *layout.Engine
	logger *log.Logger
	ctrl   *gesture.Controller

	mu       sync.RWMutex
	tree     *layout.Tree
	bounds   geom.Rect
	vps      layout.Viewports
	version  uint64
	resizing bool
	watchers []func(*layout.Tree)
}

func newScreen(name string, engine *layout.Engine, tree *layout.Tree, bounds geom.Rect, opts gesture.Options, logger *log.Logger) *Screen {
	s := &Screen{
		name:   name,
		engine: engine,
		logger: logger.With("screen", name),
		tree:   tree,
		bounds: bounds,
	}
	s.vps = layout.ProjectRoot(tree, bounds)
	s.ctrl = gesture.New(engine, s, s, opts, s.logger)
	return s
}

// Name returns the screen name.
func (s *Screen) Name() string { return s.name }

// Controller returns the screen's gesture controller.
func (s *Screen) Controller() *gesture.Controller { return s.ctrl }

// Tree returns the committed tree. Trees are never mutated after commit, so
// the result may be read without holding any lock.
func (s *Screen) Tree() *layout.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree
}

// Viewports returns the cached projection of the committed tree.
func (s *Screen) Viewports() layout.Viewports {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vps
}

// Snapshot returns the committed tree, its viewports and the version
// together.
func (s *Screen) Snapshot() (*layout.Tree, layout.Viewports, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree, s.vps, s.version
}

// Bounds returns the rectangle the root is projected into.
func (s *Screen) Bounds() geom.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bounds
}

// Version counts commits since the screen was created.
func (s *Screen) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// SetBounds changes the root rectangle and recomputes every viewport.
func (s *Screen) SetBounds(r geom.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds = r
	s.vps = layout.ProjectRoot(s.tree, r)
}

// Commit replaces the committed tree and reprojects it. Edits derived from
// the current tree go through Apply instead, so they cannot overwrite a
// concurrent commit.
func (s *Screen) Commit(t *layout.Tree) {
	s.mu.Lock()
	s.commitLocked(t)
	watchers := s.watchers
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(t)
	}
}

func (s *Screen) commitLocked(t *layout.Tree) {
	s.tree = t
	s.vps = layout.ProjectRoot(t, s.bounds)
	s.version++
}

// Apply runs a mutation against the committed tree and commits its result
// under one lock. A failed mutation leaves the screen untouched and returns
// its error. It implements gesture.Target.
//
//	err := s.Apply(func(t *layout.Tree) (*layout.Tree, error) {
//	    return engine.Split(t, "a", layout.Horizontal, layout.After)
//	})
func (s *Screen) Apply(fn func(*layout.Tree) (*layout.Tree, error)) error {
	s.mu.Lock()
	next, err := fn(s.tree)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.commitLocked(next)
	watchers := s.watchers
	s.mu.Unlock()
	for _, fn := range watchers {
		fn(next)
	}
	return nil
}

// ApplyAt is Apply for mutations that need the current viewports, such as
// drops and resizes by pointer position.
func (s *Screen) ApplyAt(fn func(*layout.Tree, layout.Viewports) (*layout.Tree, error)) error {
	return s.Apply(func(t *layout.Tree) (*layout.Tree, error) {
		return fn(t, s.vps)
	})
}

// Replace adopts t as the committed tree after validating and repairing it.
// Any gesture in progress is cancelled.
func (s *Screen) Replace(t *layout.Tree) {
	s.ctrl.Cancel()
	s.Commit(s.engine.Adopt(t))
}

// OnCommit registers fn to run after every commit, outside the screen lock.
func (s *Screen) OnCommit(fn func(*layout.Tree)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Marshal encodes the committed tree as a snapshot.
func (s *Screen) Marshal() ([]byte, error) {
	return layout.Marshal(s.Tree())
}

// Resizing reports whether a resize drag is in progress.
func (s *Screen) Resizing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resizing
}

// BeginResizing implements gesture.Signals.
func (s *Screen) BeginResizing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizing = true
}

// EndResizing implements gesture.Signals.
func (s *Screen) EndResizing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resizing = false
}

var (
	_ gesture.Target  = (*Screen)(nil)
	_ gesture.Signals = (*Screen)(nil)
)
