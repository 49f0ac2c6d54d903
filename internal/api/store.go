package api

import "sync"

// CompositeStore keeps finished composites in memory until deleted.
type CompositeStore struct {
	mu         sync.Mutex
	composites map[string]*CompositeResponse
}

func NewCompositeStore() *CompositeStore {
	return &CompositeStore{
		composites: make(map[string]*CompositeResponse),
	}
}

func (s *CompositeStore) Save(resp *CompositeResponse) {
	s.mu.Lock()
	s.composites[resp.ID] = resp
	s.mu.Unlock()
}

func (s *CompositeStore) Get(id string) (*CompositeResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resp, ok := s.composites[id]
	return resp, ok
}

func (s *CompositeStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.composites[id]; !ok {
		return false
	}
	delete(s.composites, id)
	return true
}

func (s *CompositeStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.composites)
}
