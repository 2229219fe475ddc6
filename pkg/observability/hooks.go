// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about layout mutations, gestures, and layout storage.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so the layout engine stays
// free of any metrics framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Layout().OnDanglingReference(rowID, childID)
//	observability.Store().OnStoreMiss(ctx, "layout")
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout engine.
//
// Layout operations are synchronous and never block, so these hooks carry no
// context. Implementations must return quickly.
type LayoutHooks interface {
	// OnMutation records a completed mutation. err is nil on success and a
	// coded error when the mutation resolved to a no-op.
	OnMutation(op string, nodeCount int, duration time.Duration, err error)

	// OnDanglingReference records a row child reference dropped by GC.
	OnDanglingReference(rowID, childID string)

	// OnSizeCoerced records a malformed child size replaced by a default.
	OnSizeCoerced(rowID string, count int)

	// OnNodesRemoved records nodes deleted by GC because they were unreachable.
	OnNodesRemoved(count int)
}

// =============================================================================
// Gesture Hooks
// =============================================================================

// GestureHooks receives events from pointer gesture controllers.
type GestureHooks interface {
	// OnGestureStart records the start of a drag.
	OnGestureStart(kind string)

	// OnGestureCommit records a gesture that produced a committed tree.
	OnGestureCommit(kind string, duration time.Duration)

	// OnGestureAbort records a gesture that ended without a mutation.
	OnGestureAbort(kind, reason string)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from layout storage backends.
type StoreHooks interface {
	// OnStoreHit records a successful read.
	OnStoreHit(ctx context.Context, keyType string)

	// OnStoreMiss records a read for a key that does not exist.
	OnStoreMiss(ctx context.Context, keyType string)

	// OnStoreSet records a write.
	OnStoreSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnMutation(string, int, time.Duration, error) {}
func (NoopLayoutHooks) OnDanglingReference(string, string)           {}
func (NoopLayoutHooks) OnSizeCoerced(string, int)                    {}
func (NoopLayoutHooks) OnNodesRemoved(int)                           {}

// NoopGestureHooks is a no-op implementation of GestureHooks.
type NoopGestureHooks struct{}

func (NoopGestureHooks) OnGestureStart(string)                 {}
func (NoopGestureHooks) OnGestureCommit(string, time.Duration) {}
func (NoopGestureHooks) OnGestureAbort(string, string)         {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string)      {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string)     {}
func (NoopStoreHooks) OnStoreSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	layoutHooks  LayoutHooks  = NoopLayoutHooks{}
	gestureHooks GestureHooks = NoopGestureHooks{}
	storeHooks   StoreHooks   = NoopStoreHooks{}
	hooksMu      sync.RWMutex
)

// SetLayoutHooks registers custom layout hooks.
// This should be called once at application startup before any mutations.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetGestureHooks registers custom gesture hooks.
func SetGestureHooks(h GestureHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		gestureHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Gesture returns the registered gesture hooks.
func Gesture() GestureHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return gestureHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	layoutHooks = NoopLayoutHooks{}
	gestureHooks = NoopGestureHooks{}
	storeHooks = NoopStoreHooks{}
}
