package frame

// Arena holds closed frames whose parent is still open, indexed by key, with
// the parent-to-children relation kept as key lists in end order.
type Arena struct {
	records  map[string]Frame
	children map[string][]string
}

func NewArena() *Arena {
	return &Arena{
		records:  make(map[string]Frame),
		children: make(map[string][]string),
	}
}

func (a *Arena) Attach(parentKey string, child Frame) {
	a.records[child.Key] = child
	a.children[parentKey] = append(a.children[parentKey], child.Key)
}

// Take removes and returns the children attached under parentKey.
func (a *Arena) Take(parentKey string) []Frame {
	keys := a.children[parentKey]
	delete(a.children, parentKey)

	out := make([]Frame, 0, len(keys))
	for _, k := range keys {
		out = append(out, a.records[k])
		delete(a.records, k)
	}
	return out
}

func (a *Arena) Len() int {
	return len(a.records)
}
