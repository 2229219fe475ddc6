// Package pkg provides the libraries behind Karmyc, a layout engine for
// tiled workspaces.
//
// # Overview
//
// A layout is a tree of rows and areas kept in a flat id map. Rows split
// their rectangle among children by proportional sizes that always sum to
// one; areas are leaves carrying opaque, typed content. The pkg directory is
// organized into:
//
//  1. [layout] - the tree, the viewport projector, hit-testing, every
//     structural mutation and the garbage collector that repairs trees
//  2. [gesture] - the pointer state machine for corner and separator drags
//  3. [screen] - independent named screens and their persistence
//  4. [store] - snapshot backends (file, SQLite, Redis, MongoDB)
//  5. [render], [server], [config] - SVG/DOT output, the HTTP API and
//     configuration
//
// # Architecture
//
//	pointer events / HTTP / CLI
//	         ↓
//	    [gesture] controller (direction, split, resize, join)
//	         ↓
//	    [layout] engine (clone, edit, GC)
//	         ↓
//	    [screen] commit + reprojection
//	         ↓
//	    [store] snapshot {rootId, layout, areas}
//
// # Quick Start
//
//	engine := layout.NewEngine(layout.DefaultOptions(), registry.Builtin(), layout.UUIDGenerator{}, nil)
//	t := engine.DefaultTree()
//	t, _ = engine.Split(t, t.RootID, layout.Horizontal, layout.After)
//	vps := layout.ProjectRoot(t, geom.Rect{Width: 1280, Height: 800})
//	id, _ := layout.FindNearestLeaf(geom.Point{X: 900, Y: 400}, vps, t)
//
// Mutations never modify their input: each returns a new tree, or the
// original tree and a coded error from [errors] when the edit is refused.
package pkg
