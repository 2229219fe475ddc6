package layout

// ParentIndex maps every child id to the id of the row that references it.
// The root and orphaned nodes have no entry.
//
// The index is derived in a single pass over all rows and is not cached; any
// mutation invalidates it.
func ParentIndex(t *Tree) map[string]string {
	parents := make(map[string]string, len(t.Layout))
	for _, id := range t.IDs() {
		n := t.Layout[id]
		if !n.IsRow() {
			continue
		}
		for _, c := range n.Children {
			if _, dup := parents[c.ID]; !dup {
				parents[c.ID] = id
			}
		}
	}
	return parents
}

// Siblings returns the ids immediately before and after id within its parent
// row. Missing neighbours are empty strings; ok is false when id has no
// parent.
func Siblings(t *Tree, parents map[string]string, id string) (prev, next string, ok bool) {
	pid, ok := parents[id]
	if !ok {
		return "", "", false
	}
	row := t.Layout[pid]
	i := row.ChildIndex(id)
	if i < 0 {
		return "", "", false
	}
	if i > 0 {
		prev = row.Children[i-1].ID
	}
	if i < len(row.Children)-1 {
		next = row.Children[i+1].ID
	}
	return prev, next, true
}
