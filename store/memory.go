package store

import (
	"context"
	"sync"

	"github.com/dawalabs/medglot"
)

// MemoryStore is an in-memory Store for tests and dry runs.
type MemoryStore struct {
	mu       sync.RWMutex
	routes   map[string]string // item code → route key
	records  map[string]map[string]any
	keywords map[string]*medglot.KeywordSet

	// UpdateCount tallies UpdateTranslation calls, for asserting
	// all-or-nothing persistence in tests.
	UpdateCount int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routes:   make(map[string]string),
		records:  make(map[string]map[string]any),
		keywords: make(map[string]*medglot.KeywordSet),
	}
}

func recordKey(routeKey, language string) string {
	return routeKey + "|" + language
}

// AddRoute registers an item-code → route-key mapping.
func (s *MemoryStore) AddRoute(itemCode, routeKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[itemCode] = routeKey
}

// AddRecord registers a content row. The fields map is copied.
func (s *MemoryStore) AddRecord(routeKey, language string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	s.records[recordKey(routeKey, language)] = copied
}

// RouteKeys implements Store.
func (s *MemoryStore) RouteKeys(ctx context.Context, itemCodes []string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string)
	for _, code := range itemCodes {
		if route, ok := s.routes[code]; ok {
			out[code] = route
		}
	}
	return out, nil
}

// Record implements Store.
func (s *MemoryStore) Record(ctx context.Context, routeKey, language string) (*medglot.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.records[recordKey(routeKey, language)]
	if !ok {
		return nil, ErrNotFound
	}

	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &medglot.Record{RouteKey: routeKey, Language: language, Fields: copied}, nil
}

// Keywords implements Store.
func (s *MemoryStore) Keywords(ctx context.Context, routeKey, language string) (*medglot.KeywordSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ks, ok := s.keywords[recordKey(routeKey, language)]
	if !ok || ks.Empty() {
		return nil, ErrNotFound
	}
	return ks, nil
}

// SaveKeywords implements Store.
func (s *MemoryStore) SaveKeywords(ctx context.Context, routeKey, language string, ks *medglot.KeywordSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keywords[recordKey(routeKey, language)] = ks
	return nil
}

// MedicineName implements Store.
func (s *MemoryStore) MedicineName(ctx context.Context, routeKey, language string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.records[recordKey(routeKey, language)]
	if !ok {
		return "", ErrNotFound
	}
	name, _ := fields["name"].(string)
	if name == "" {
		return "", ErrNotFound
	}
	return name, nil
}

// UpdateTranslation implements Store. The whole field set is applied in one
// step, mirroring the single-statement semantics of the real store.
func (s *MemoryStore) UpdateTranslation(ctx context.Context, routeKey, language string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey(routeKey, language)
	row, ok := s.records[key]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		row[k] = v
	}
	s.UpdateCount++
	return nil
}

// IncompleteRoutes implements Store.
func (s *MemoryStore) IncompleteRoutes(ctx context.Context, routeKeys []string, language string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, route := range routeKeys {
		fields, ok := s.records[recordKey(route, language)]
		if !ok {
			continue
		}
		rec := &medglot.Record{RouteKey: route, Language: language, Fields: fields}
		if !rec.Complete() {
			out = append(out, route)
		}
	}
	return out, nil
}

// UpdateMeta implements Store.
func (s *MemoryStore) UpdateMeta(ctx context.Context, routeKey, language, title, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.records[recordKey(routeKey, language)]
	if !ok {
		return ErrNotFound
	}
	row["meta_title"] = title
	row["meta_description"] = description
	return nil
}

// Verify MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
