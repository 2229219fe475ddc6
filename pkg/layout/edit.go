package layout

import "slices"

// replaceSlot points id's slot in its parent at replacement, keeping the
// size. When id has no parent, replacement becomes the root.
func replaceSlot(t *Tree, parents map[string]string, id, replacement string) {
	pid, ok := parents[id]
	if !ok {
		t.RootID = replacement
		return
	}
	row := t.Layout[pid]
	if i := row.ChildIndex(id); i >= 0 {
		row.Children[i].ID = replacement
	}
}

// collapseRow replaces a row holding exactly one child with that child.
func collapseRow(t *Tree, parents map[string]string, rowID string) {
	row, ok := t.Row(rowID)
	if !ok || len(row.Children) != 1 {
		return
	}
	replaceSlot(t, parents, rowID, row.Children[0].ID)
	delete(t.Layout, rowID)
}

// detach unlinks id from its parent row without deleting it. Remaining
// siblings are renormalized, a row left with one child collapses into its
// slot, and a row left empty is itself detached and deleted, cascading up to
// the root. Detaching the root empties the tree.
func detach(t *Tree, id string) {
	parents := ParentIndex(t)
	pid, ok := parents[id]
	if !ok {
		if t.RootID == id {
			t.RootID = ""
		}
		return
	}
	row := t.Layout[pid]
	i := row.ChildIndex(id)
	row.Children = slices.Delete(row.Children, i, i+1)
	switch len(row.Children) {
	case 0:
		detach(t, pid)
		delete(t.Layout, pid)
	case 1:
		row.Children[0].Size = 1
		collapseRow(t, parents, pid)
	default:
		renormalize(row.Children)
	}
}

// deleteSubtree deletes id and every node below it, with their content.
func deleteSubtree(t *Tree, id string) {
	n, ok := t.Layout[id]
	if !ok {
		return
	}
	delete(t.Layout, id)
	delete(t.Areas, id)
	for _, c := range n.Children {
		deleteSubtree(t, c.ID)
	}
}

// landsInPlace reports whether moving source next to target on side p would
// leave source in the slot it already occupies.
func landsInPlace(t *Tree, sourceID, targetID string, p Placement) bool {
	if p == PlaceReplace {
		return false
	}
	parents := ParentIndex(t)
	pid, ok := parents[sourceID]
	if !ok || parents[targetID] != pid {
		return false
	}
	row := t.Layout[pid]
	if row.Orientation != p.Orientation() {
		return false
	}
	si, ti := row.ChildIndex(sourceID), row.ChildIndex(targetID)
	if p.Before() {
		return si == ti-1
	}
	return si == ti+1
}
