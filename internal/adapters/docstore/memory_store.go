package docstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"logistics-scheduler-service/internal/domain"
	"logistics-scheduler-service/internal/ports"
)

// MemoryStore is an in-process DocumentStore used by tests and local runs.
// CommitHook, when set, is called before each commit is applied and can
// fail it.
type MemoryStore struct {
	mu         sync.RWMutex
	docs       map[string]map[string]map[string]any
	commits    int
	CommitHook func(writes []ports.Write) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string]map[string]map[string]any{}}
}

// Seed writes a document outside of any commit.
func (s *MemoryStore) Seed(collection, id string, data map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, domain.CloneData(data))
}

// Commits is the number of successful commits.
func (s *MemoryStore) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// Count is the number of documents directly inside collection.
func (s *MemoryStore) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs[collection])
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[collection][id]
	if !ok {
		return ports.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, ports.ErrDocumentNotFound)
	}
	return ports.Document{Collection: collection, ID: id, Data: domain.CloneData(data)}, nil
}

func (s *MemoryStore) Query(_ context.Context, collection string, q ports.Query) ([]ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selectDocs(q, func(c string) bool { return c == collection }), nil
}

func (s *MemoryStore) QueryGroup(_ context.Context, group string, q ports.Query) ([]ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selectDocs(q, func(c string) bool { return domain.CollectionGroup(c) == group }), nil
}

func (s *MemoryStore) selectDocs(q ports.Query, include func(string) bool) []ports.Document {
	out := []ports.Document{}
	for collection, docs := range s.docs {
		if !include(collection) {
			continue
		}
		for id, data := range docs {
			if q.StartAfter != "" && id <= q.StartAfter {
				continue
			}
			if !matchesAll(data, q.Filters) {
				continue
			}
			out = append(out, ports.Document{Collection: collection, ID: id, Data: domain.CloneData(data)})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Collection < out[j].Collection
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func (s *MemoryStore) Commit(_ context.Context, writes []ports.Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CommitHook != nil {
		if err := s.CommitHook(writes); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}

	for i, w := range writes {
		if w.Collection == "" || w.ID == "" {
			return fmt.Errorf("commit: write #%d: collection and id are required", i+1)
		}
		if w.Kind < ports.WriteSet || w.Kind > ports.WriteDelete {
			return fmt.Errorf("commit: write #%d: unknown write kind %d", i+1, w.Kind)
		}
		if len(w.Precondition) == 0 {
			continue
		}
		current, ok := s.docs[w.Collection][w.ID]
		if !ok || !satisfies(current, w.Precondition) {
			return fmt.Errorf("commit: %w", &ports.PreconditionError{Collection: w.Collection, ID: w.ID})
		}
	}

	for _, w := range writes {
		switch w.Kind {
		case ports.WriteSet:
			s.put(w.Collection, w.ID, domain.CloneData(w.Data))
		case ports.WriteMerge:
			merged := domain.CloneData(s.docs[w.Collection][w.ID])
			if merged == nil {
				merged = map[string]any{}
			}
			for k, v := range domain.CloneData(w.Data) {
				merged[k] = v
			}
			s.put(w.Collection, w.ID, merged)
		case ports.WriteDelete:
			delete(s.docs[w.Collection], w.ID)
			if len(s.docs[w.Collection]) == 0 {
				delete(s.docs, w.Collection)
			}
		}
	}

	s.commits++
	return nil
}

func (s *MemoryStore) put(collection, id string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if s.docs[collection] == nil {
		s.docs[collection] = map[string]map[string]any{}
	}
	s.docs[collection][id] = data
}
