package layout

import (
	"maps"
	"slices"
)

// DanglingRef is a row child reference GC removed.
type DanglingRef struct {
	Row    string `json:"row"`
	Child  string `json:"child"`
	Reason string `json:"reason"`
}

// Reasons recorded in [DanglingRef].
const (
	ReasonMissing   = "missing"
	ReasonDuplicate = "duplicate"
)

// Report describes the repairs made by a [GC] pass.
type Report struct {
	Passes         int            `json:"passes"`
	RemovedNodes   []string       `json:"removedNodes,omitempty"`
	RemovedContent []string       `json:"removedContent,omitempty"`
	EmptyRows      []string       `json:"emptyRows,omitempty"`
	Dangling       []DanglingRef  `json:"dangling,omitempty"`
	CoercedSizes   map[string]int `json:"coercedSizes,omitempty"`
	Renormalized   []string       `json:"renormalized,omitempty"`
	AddedContent   []string       `json:"addedContent,omitempty"`
	FixedNodes     []string       `json:"fixedNodes,omitempty"`
	InvalidRoot    bool           `json:"invalidRoot,omitempty"`
}

// Changed reports whether GC modified anything.
func (r Report) Changed() bool {
	return len(r.RemovedNodes) > 0 || len(r.RemovedContent) > 0 || len(r.EmptyRows) > 0 ||
		len(r.Dangling) > 0 || len(r.CoercedSizes) > 0 || len(r.Renormalized) > 0 ||
		len(r.AddedContent) > 0 || len(r.FixedNodes) > 0 || r.InvalidRoot
}

// GC returns a copy of t that satisfies the tree invariants, together with a
// report of what was repaired. The input is not modified.
//
// Starting from the root, GC keeps every node it can reach through row
// children. Within each row it drops references to missing nodes and repeated
// references to nodes already reached (cycles and shared children), coerces
// malformed sizes to an equal share, and renormalizes the survivors. Rows left
// with no children are deleted and the pass repeats until nothing changes,
// since deleting a row leaves a dangling reference in its parent.
//
// Unreachable nodes and their content are deleted, content stored for rows or
// unknown ids is deleted, and areas missing content receive an empty
// [DefaultAreaType] content. A root that is empty or does not resolve yields
// an empty tree.
//
// GC is idempotent: GC(GC(t)) equals GC(t).
func GC(t *Tree) (*Tree, Report) {
	out := t.Clone()
	var rep Report

	for {
		rep.Passes++
		if out.RootID != "" {
			if _, ok := out.Layout[out.RootID]; !ok {
				rep.InvalidRoot = true
				out.RootID = ""
			}
		}
		if out.RootID == "" {
			rep.RemovedNodes = append(rep.RemovedNodes, out.IDs()...)
			rep.RemovedContent = append(rep.RemovedContent, slices.Sorted(maps.Keys(out.Areas))...)
			clear(out.Layout)
			clear(out.Areas)
			return out, rep
		}

		reached := gcMark(out, &rep)

		for _, id := range out.IDs() {
			if !reached[id] {
				delete(out.Layout, id)
				rep.RemovedNodes = append(rep.RemovedNodes, id)
			}
		}

		var emptied []string
		for _, id := range out.IDs() {
			if n := out.Layout[id]; n.IsRow() && len(n.Children) == 0 {
				emptied = append(emptied, id)
			}
		}
		if len(emptied) == 0 {
			break
		}
		for _, id := range emptied {
			delete(out.Layout, id)
		}
		rep.EmptyRows = append(rep.EmptyRows, emptied...)
		rep.RemovedNodes = append(rep.RemovedNodes, emptied...)
	}

	for _, id := range slices.Sorted(maps.Keys(out.Areas)) {
		if n, ok := out.Layout[id]; !ok || !n.IsArea() {
			delete(out.Areas, id)
			rep.RemovedContent = append(rep.RemovedContent, id)
		}
	}
	for _, id := range out.IDs() {
		if !out.Layout[id].IsArea() {
			continue
		}
		if _, ok := out.Areas[id]; !ok {
			out.Areas[id] = Content{Type: DefaultAreaType}
			rep.AddedContent = append(rep.AddedContent, id)
		}
	}
	return out, rep
}

// gcMark walks from the root, pruning bad child references in place, and
// returns the set of reached node ids.
func gcMark(t *Tree, rep *Report) map[string]bool {
	reached := make(map[string]bool, len(t.Layout))
	var visit func(id string)
	visit = func(id string) {
		reached[id] = true
		n := t.Layout[id]
		if n.ID != id {
			n.ID = id
			rep.FixedNodes = append(rep.FixedNodes, id)
		}
		if n.Kind != KindRow {
			if n.Kind != KindArea || len(n.Children) > 0 || n.Orientation != "" {
				n.Kind = KindArea
				n.Children = nil
				n.Orientation = ""
				rep.FixedNodes = append(rep.FixedNodes, id)
			}
			return
		}
		if !n.Orientation.Valid() {
			n.Orientation = Horizontal
			rep.FixedNodes = append(rep.FixedNodes, id)
		}

		kept := n.Children[:0]
		for _, c := range n.Children {
			switch _, ok := t.Layout[c.ID]; {
			case !ok:
				rep.Dangling = append(rep.Dangling, DanglingRef{Row: id, Child: c.ID, Reason: ReasonMissing})
			case reached[c.ID] || slices.ContainsFunc(kept, func(k ChildRef) bool { return k.ID == c.ID }):
				rep.Dangling = append(rep.Dangling, DanglingRef{Row: id, Child: c.ID, Reason: ReasonDuplicate})
			default:
				kept = append(kept, c)
			}
		}
		dropped := len(kept) != len(n.Children)
		n.Children = kept

		if len(n.Children) > 0 {
			coerced, changed := repairSizes(n.Children)
			if coerced > 0 {
				if rep.CoercedSizes == nil {
					rep.CoercedSizes = make(map[string]int)
				}
				rep.CoercedSizes[id] += coerced
			}
			if changed && !dropped && coerced == 0 {
				rep.Renormalized = append(rep.Renormalized, id)
			}
		}

		for _, c := range n.Children {
			visit(c.ID)
		}
	}
	visit(t.RootID)
	return reached
}
