// Package store is the aggregation store: company records keyed by
// organization name, persisted as one JSON document.
package store

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/use-agent/founderscope/models"
)

// Store maps company identifiers to records. Put overwrites; nothing is
// ever deleted. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	companies map[string]*models.Company
}

// New returns an empty store.
func New() *Store {
	return &Store{companies: make(map[string]*models.Company)}
}

// Put stores c under id, replacing any previous record. Nil lists in c are
// replaced with empty ones, matching what Deserialize produces.
func (s *Store) Put(id string, c *models.Company) {
	normalize(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[id] = c
}

func (s *Store) Get(id string) (*models.Company, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.companies[id]
	return c, ok
}

// All returns a snapshot of the mapping. The records themselves are shared.
func (s *Store) All() map[string]*models.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*models.Company, len(s.companies))
	for k, v := range s.companies {
		out[k] = v
	}
	return out
}

// Names returns the identifiers in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.companies))
	for k := range s.companies {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.companies)
}

// Merge puts every entry of m.
func (s *Store) Merge(m map[string]*models.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range m {
		normalize(v)
		s.companies[k] = v
	}
}

// Serialize encodes the whole mapping as JSON.
func (s *Store) Serialize() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := json.MarshalIndent(s.companies, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "store: serialize")
	}
	return data, nil
}

// Deserialize decodes a mapping produced by Serialize.
func Deserialize(data []byte) (map[string]*models.Company, error) {
	m := make(map[string]*models.Company)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrap(err, "store: deserialize")
	}
	for _, c := range m {
		normalize(c)
	}
	return m, nil
}

// normalize replaces nil lists with empty ones, so a store round-trips
// through Serialize and Deserialize unchanged.
func normalize(c *models.Company) {
	if c == nil {
		return
	}
	if c.Founders == nil {
		c.Founders = []*models.Founder{}
	}
	if c.Industries == nil {
		c.Industries = []string{}
	}
	for _, f := range c.Founders {
		if f == nil {
			continue
		}
		if f.Education == nil {
			f.Education = []models.Education{}
		}
		if f.Experience == nil {
			f.Experience = []models.Experience{}
		}
	}
}
