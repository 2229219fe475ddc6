package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/matzehuels/karmyc/pkg/errors"
)

// =============================================================================
// Snapshot Serialization API
// =============================================================================

// Marshal encodes a tree as an indented {rootId, layout, areas} snapshot.
func Marshal(t *Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a tree as JSON to w.
func Write(t *Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes a tree snapshot to path with 0644 permissions.
func WriteFile(t *Tree, path string) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Unmarshal decodes a snapshot as-is, without validation or repair.
// Comments and trailing commas are accepted, so hand-edited layout files
// load the same as generated ones.
func Unmarshal(data []byte) (*Tree, error) {
	t := NewTree()
	if err := json.Unmarshal(jsonc.ToJSON(data), t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLayout, err, "decode layout snapshot")
	}
	t.ensureMaps()
	for id, n := range t.Layout {
		if n == nil {
			delete(t.Layout, id)
		}
	}
	return t, nil
}

// Read decodes a snapshot from r without validation or repair.
func Read(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Unmarshal(data)
}

// ReadFile decodes a snapshot file without validation or repair.
func ReadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return Unmarshal(data)
}

// =============================================================================
// Loading
// =============================================================================

// Load decodes a snapshot and repairs it exactly as after a mutation. When
// the snapshot has no valid root, or cannot be decoded at all, the engine's
// [Engine.DefaultTree] is returned. A decode failure is also reported as an
// error so callers can surface it; the returned tree is usable either way.
func (e *Engine) Load(data []byte) (*Tree, error) {
	raw, err := Unmarshal(data)
	if err != nil {
		e.logger.Warn("layout snapshot unreadable, using default", "err", err)
		return e.DefaultTree(), err
	}
	return e.Adopt(raw), nil
}

// LoadFile is Load for a file on disk.
func (e *Engine) LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return e.DefaultTree(), errors.Wrap(errors.ErrCodeNotFound, err, "read layout %s", path)
	}
	return e.Load(data)
}

// Adopt validates and repairs a tree obtained from outside the engine,
// falling back to [Engine.DefaultTree] when no valid root remains.
func (e *Engine) Adopt(raw *Tree) *Tree {
	t := e.Clean(raw)
	if t.IsEmpty() {
		e.logger.Info("layout has no areas, using default", "type", e.opts.DefaultAreaType)
		return e.DefaultTree()
	}
	return t
}
