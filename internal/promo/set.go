package promo

// mapCodeSet implements CodeSet with a plain map.
type mapCodeSet struct {
	codes map[string]struct{}
}

// NewMapCodeSet creates a map-backed code set with the given initial
// capacity.
func NewMapCodeSet(capacity int) CodeSet {
	return &mapCodeSet{codes: make(map[string]struct{}, capacity)}
}

func (s *mapCodeSet) Contains(code string) bool {
	_, ok := s.codes[code]
	return ok
}

func (s *mapCodeSet) Size() int {
	return len(s.codes)
}

// Add inserts a code into the set.
func (s *mapCodeSet) Add(code string) {
	s.codes[code] = struct{}{}
}
