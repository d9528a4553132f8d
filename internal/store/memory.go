package store

import (
	"sync"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

// MemoryStore is an in-memory implementation of the persistence interfaces,
// for tests and for callers embedding the engine without a database.
type MemoryStore struct {
	mu            sync.RWMutex
	states        map[string]map[string]core.KnowledgeState // userID -> topic -> state
	similarities  map[[2]string]core.SimilarityRecord
	relationships []core.ContentRelationship
	deliveries    map[string][]string // userID -> content IDs in delivery order
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states:       make(map[string]map[string]core.KnowledgeState),
		similarities: make(map[[2]string]core.SimilarityRecord),
		deliveries:   make(map[string][]string),
	}
}

// GetState retrieves the knowledge state for a (user, topic) pair. Returns
// nil, nil on a miss.
func (m *MemoryStore) GetState(userID, topic string) (*core.KnowledgeState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if state, ok := m.states[userID][topic]; ok {
		copied := state
		return &copied, nil
	}
	return nil, nil
}

// PutState upserts the knowledge state for a (user, topic) pair.
func (m *MemoryStore) PutState(state core.KnowledgeState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.states[state.UserID] == nil {
		m.states[state.UserID] = make(map[string]core.KnowledgeState)
	}
	m.states[state.UserID][state.Topic] = state
	return nil
}

// ListStates returns all knowledge-state rows for a user.
func (m *MemoryStore) ListStates(userID string) ([]core.KnowledgeState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	states := make([]core.KnowledgeState, 0, len(m.states[userID]))
	for _, state := range m.states[userID] {
		states = append(states, state)
	}
	return states, nil
}

// GetSimilarity retrieves a cached similarity record. Returns nil, nil on a
// miss.
func (m *MemoryStore) GetSimilarity(contentA, contentB string) (*core.SimilarityRecord, error) {
	a, b := core.PairKey(contentA, contentB)

	m.mu.RLock()
	defer m.mu.RUnlock()

	if record, ok := m.similarities[[2]string{a, b}]; ok {
		copied := record
		return &copied, nil
	}
	return nil, nil
}

// PutSimilarity caches a similarity record.
func (m *MemoryStore) PutSimilarity(record core.SimilarityRecord) error {
	a, b := core.PairKey(record.ContentA, record.ContentB)
	record.ContentA, record.ContentB = a, b

	m.mu.Lock()
	defer m.mu.Unlock()

	m.similarities[[2]string{a, b}] = record
	return nil
}

// PutRelationship stores a discovered relationship.
func (m *MemoryStore) PutRelationship(rel core.ContentRelationship) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.relationships = append(m.relationships, rel)
	return nil
}

// ListRelationships returns relationships touching the given content item.
func (m *MemoryStore) ListRelationships(contentID string) ([]core.ContentRelationship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rels []core.ContentRelationship
	for _, rel := range m.relationships {
		if rel.ParentID == contentID || rel.ChildID == contentID {
			rels = append(rels, rel)
		}
	}
	return rels, nil
}

// MarkDelivered records that content was delivered to a user.
func (m *MemoryStore) MarkDelivered(userID, contentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.deliveries[userID] {
		if id == contentID {
			return nil
		}
	}
	m.deliveries[userID] = append(m.deliveries[userID], contentID)
	return nil
}

// ListDelivered returns the IDs of content delivered to a user.
func (m *MemoryStore) ListDelivered(userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string{}, m.deliveries[userID]...), nil
}
