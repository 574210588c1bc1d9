package detection

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// ClassSet is the set of distinct class names seen above the threshold.
type ClassSet map[string]struct{}

// NewClassSet returns a set holding names.
func NewClassSet(names ...string) ClassSet {
	s := make(ClassSet, len(names))
	for _, name := range names {
		s.Add(name)
	}
	return s
}

// Add inserts a name.
func (s ClassSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s ClassSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names.
func (s ClassSet) Len() int {
	return len(s)
}

// Sorted returns the names in lexical order.
func (s ClassSet) Sorted() []string {
	names := lo.Keys(map[string]struct{}(s))
	sort.Strings(names)
	return names
}

// String formats the set as {'cat', 'dog'}, or set() when empty.
func (s ClassSet) String() string {
	if len(s) == 0 {
		return "set()"
	}
	quoted := lo.Map(s.Sorted(), func(name string, _ int) string {
		return "'" + name + "'"
	})
	return "{" + strings.Join(quoted, ", ") + "}"
}
