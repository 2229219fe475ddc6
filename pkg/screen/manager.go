package screen

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/karmyc/pkg/errors"
	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/gesture"
	"github.com/matzehuels/karmyc/pkg/layout"
	"github.com/matzehuels/karmyc/pkg/store"
)

// DefaultBounds is the root rectangle of screens created without one.
var DefaultBounds = geom.Rect{Width: 1280, Height: 800}

// Options configures a Manager.
type Options struct {
	// Store persists snapshots. Nil uses a NullStore.
	Store store.Store
	// Keyer maps screen names to store keys. Nil uses the default keyer.
	Keyer store.Keyer
	// TTL is passed to the store on save.
	TTL time.Duration
	// Retry repeats transient store failures. Zero uses store.DefaultRetry.
	Retry store.Retry
	// Gesture configures every screen's controller.
	Gesture gesture.Options
	// Bounds is the initial root rectangle of new screens.
	Bounds geom.Rect
	// Concurrency limits parallel saves in SaveAll.
	Concurrency int
	Logger      *log.Logger
}

// Manager owns a set of named screens.
type Manager struct {
	engine *layout.Engine
	store  store.Store
	keyer  store.Keyer
	opts   Options
	logger *log.Logger

	mu      sync.RWMutex
	screens map[string]*Screen
	loads   singleflight.Group
}

// NewManager creates a manager whose screens are edited by engine.
func NewManager(engine *layout.Engine, opts Options) *Manager {
	if opts.Store == nil {
		opts.Store = store.NewNullStore()
	}
	if opts.Keyer == nil {
		opts.Keyer = store.NewDefaultKeyer()
	}
	if opts.Bounds.IsEmpty() {
		opts.Bounds = DefaultBounds
	}
	if opts.Retry == (store.Retry{}) {
		opts.Retry = store.DefaultRetry
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Gesture == (gesture.Options{}) {
		opts.Gesture = gesture.DefaultOptions()
	}
	if opts.Logger == nil {
		opts.Logger = engine.Logger()
	}
	return &Manager{
		engine:  engine,
		store:   store.Observe(opts.Store, "layout"),
		keyer:   opts.Keyer,
		opts:    opts,
		logger:  opts.Logger,
		screens: make(map[string]*Screen),
	}
}

// Engine returns the engine shared by every screen.
func (m *Manager) Engine() *layout.Engine { return m.engine }

// Create adds a screen. A nil tree starts from the engine's default layout;
// otherwise t is validated and repaired first.
func (m *Manager) Create(name string, t *layout.Tree) (*Screen, error) {
	if err := errors.ValidateScreenName(name); err != nil {
		return nil, err
	}
	if t == nil {
		t = m.engine.DefaultTree()
	} else {
		t = m.engine.Adopt(t)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.screens[name]; exists {
		return nil, errors.New(errors.ErrCodeInvalidInput, "screen %q already exists", name)
	}
	s := newScreen(name, m.engine, t, m.opts.Bounds, m.opts.Gesture, m.logger)
	m.screens[name] = s
	m.logger.Debug("screen created", "screen", name, "nodes", t.Len())
	return s, nil
}

// Get returns a screen by name.
func (m *Manager) Get(name string) (*Screen, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.screens[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeScreenNotFound, "screen %q does not exist", name)
	}
	return s, nil
}

// Delete removes a screen from memory and cancels its gesture. The stored
// snapshot is kept; use Forget to remove it as well.
func (m *Manager) Delete(name string) error {
	m.mu.Lock()
	s, ok := m.screens[name]
	delete(m.screens, name)
	m.mu.Unlock()
	if !ok {
		return errors.New(errors.ErrCodeScreenNotFound, "screen %q does not exist", name)
	}
	s.ctrl.Cancel()
	return nil
}

// Forget deletes a screen's stored snapshot and, if loaded, the screen itself.
func (m *Manager) Forget(ctx context.Context, name string) error {
	_ = m.Delete(name)
	if err := m.store.Delete(ctx, m.keyer.LayoutKey(name)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete screen %s", name)
	}
	return nil
}

// List returns the names of loaded screens, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.screens))
	for name := range m.screens {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Stored returns the names of screens with a stored snapshot.
func (m *Manager) Stored(ctx context.Context) ([]string, error) {
	keys, err := m.store.List(ctx, m.keyer.Prefix())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list screens")
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if name, ok := m.keyer.Screen(k); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// =============================================================================
// Persistence
// =============================================================================

// Save writes a screen's committed tree to the store.
func (m *Manager) Save(ctx context.Context, name string) error {
	s, err := m.Get(name)
	if err != nil {
		return err
	}
	data, err := s.Marshal()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode screen %s", name)
	}
	key := m.keyer.LayoutKey(name)
	err = m.opts.Retry.Do(ctx, func() error {
		return m.store.Set(ctx, key, data, m.opts.TTL)
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "save screen %s", name)
	}
	m.logger.Debug("screen saved", "screen", name, "bytes", len(data))
	return nil
}

// SaveAll saves every loaded screen concurrently. The first failure is
// returned after all saves finish.
func (m *Manager) SaveAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Concurrency)
	for _, name := range m.List() {
		g.Go(func() error {
			return m.Save(ctx, name)
		})
	}
	return g.Wait()
}

// Open returns the named screen, loading it from the store if it is not in
// memory. Concurrent opens of the same screen share one load. A stored
// snapshot that cannot be decoded is replaced by the default layout and the
// decode error is logged.
func (m *Manager) Open(ctx context.Context, name string) (*Screen, error) {
	if s, err := m.Get(name); err == nil {
		return s, nil
	}
	if err := errors.ValidateScreenName(name); err != nil {
		return nil, err
	}

	v, err, _ := m.loads.Do(name, func() (any, error) {
		if s, err := m.Get(name); err == nil {
			return s, nil
		}
		data, hit, err := m.load(ctx, name)
		if err != nil {
			return nil, err
		}
		if !hit {
			return nil, errors.Wrap(errors.ErrCodeNotFound, store.ErrNotFound, "screen %q has no stored layout", name)
		}
		t, err := m.engine.Load(data)
		if err != nil {
			m.logger.Warn("stored layout unreadable, using default", "screen", name, "err", err)
		}
		return m.register(name, t), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Screen), nil
}

// OpenOrCreate opens a stored screen, creating a default one when nothing is
// stored under name.
func (m *Manager) OpenOrCreate(ctx context.Context, name string) (*Screen, error) {
	s, err := m.Open(ctx, name)
	if errors.Is(err, errors.ErrCodeNotFound) {
		s, err = m.Create(name, nil)
		if errors.Is(err, errors.ErrCodeInvalidInput) {
			// Lost a race with another creator.
			return m.Get(name)
		}
	}
	return s, err
}

func (m *Manager) load(ctx context.Context, name string) (data []byte, hit bool, err error) {
	key := m.keyer.LayoutKey(name)
	err = m.opts.Retry.Do(ctx, func() error {
		var err error
		data, hit, err = m.store.Get(ctx, key)
		return err
	})
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "load screen %s", name)
	}
	return data, hit, nil
}

// register installs a loaded screen unless another goroutine created one in
// the meantime.
func (m *Manager) register(name string, t *layout.Tree) *Screen {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.screens[name]; ok {
		return s
	}
	s := newScreen(name, m.engine, t, m.opts.Bounds, m.opts.Gesture, m.logger)
	m.screens[name] = s
	return s
}

// Close cancels all gestures and closes the store.
func (m *Manager) Close() error {
	m.mu.Lock()
	for _, s := range m.screens {
		s.ctrl.Cancel()
	}
	m.mu.Unlock()
	return m.store.Close()
}
