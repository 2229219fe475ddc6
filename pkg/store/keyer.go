package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// LayoutPrefix is the key prefix for screen layout snapshots.
const LayoutPrefix = "layout:"

// Keyer maps screen names to storage keys and back.
type Keyer interface {
	// LayoutKey returns the key a screen's snapshot is stored under.
	LayoutKey(screen string) string
	// Prefix returns the common prefix of every layout key, for List.
	Prefix() string
	// Screen recovers the screen name from a key produced by LayoutKey.
	Screen(key string) (string, bool)
}

// DefaultKeyer produces keys of the form "layout:<screen>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(screen string) string { return LayoutPrefix + screen }

func (DefaultKeyer) Prefix() string { return LayoutPrefix }

func (DefaultKeyer) Screen(key string) (string, bool) {
	return strings.CutPrefix(key, LayoutPrefix)
}

// ScopedKeyer wraps a Keyer with a prefix so several workspaces can share one
// backend without seeing each other's screens.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "workspace:alice:")
//	k.LayoutKey("main") // "workspace:alice:layout:main"
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix == "" {
		return inner
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(screen string) string {
	return k.prefix + k.inner.LayoutKey(screen)
}

func (k *ScopedKeyer) Prefix() string { return k.prefix + k.inner.Prefix() }

func (k *ScopedKeyer) Screen(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, k.prefix)
	if !ok {
		return "", false
	}
	return k.inner.Screen(rest)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
