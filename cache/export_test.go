package cache

// TrackedLen returns the number of keys in the registry of s.
func TrackedLen(s *Store) int {
	n := 0
	s.registry.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
