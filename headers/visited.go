package headers

import "sort"

// VisitedSet records the files whose includes have been, or are being,
// processed. Keys and values are the same absolute path.
type VisitedSet map[string]string

// NewVisitedSet returns an empty set.
func NewVisitedSet() VisitedSet {
	return make(VisitedSet)
}

func (v VisitedSet) Add(path string) {
	v[path] = path
}

func (v VisitedSet) Has(path string) bool {
	_, ok := v[path]
	return ok
}

// Merge adds every entry of other to v.
func (v VisitedSet) Merge(other VisitedSet) {
	for k, val := range other {
		v[k] = val
	}
}

func (v VisitedSet) Len() int {
	return len(v)
}

// Paths returns the visited paths in lexical order.
func (v VisitedSet) Paths() []string {
	paths := make([]string, 0, len(v))
	for p := range v {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
