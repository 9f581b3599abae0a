package keywords

import "strings"

// Set is an insertion-ordered string set. Adding a value that is
// already present is a no-op, so matchers reporting the same keyword
// from several texts collapse silently.
type Set struct {
	seen  map[string]struct{}
	order []string
}

func NewSet() *Set {
	return &Set{seen: map[string]struct{}{}}
}

func (s *Set) Add(values ...string) {
	for _, v := range values {
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.order = append(s.order, v)
	}
}

func (s *Set) Len() int {
	return len(s.order)
}

// Values returns the members in insertion order.
func (s *Set) Values() []string {
	return s.order
}

func (s *Set) Join(sep string) string {
	return strings.Join(s.order, sep)
}
