package utils

import "sync"

// IDSet tracks record ids already seen in a collection
type IDSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewIDSet creates an empty set sized for n ids
func NewIDSet(n int) *IDSet {
	return &IDSet{seen: make(map[string]struct{}, n)}
}

// Add returns true if the id is new, false if it was already added
func (s *IDSet) Add(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.seen[id]; exists {
		return false
	}
	s.seen[id] = struct{}{}
	return true
}

// Count returns the number of distinct ids
func (s *IDSet) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
