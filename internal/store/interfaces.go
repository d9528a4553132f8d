package store

import (
	"github.com/forthing17-ops/signalcast-sub000/internal/core"
)

// KnowledgeStore persists per-(user, topic) knowledge state. A nil result
// with nil error is a miss (first interaction with the topic).
type KnowledgeStore interface {
	GetState(userID, topic string) (*core.KnowledgeState, error)
	PutState(state core.KnowledgeState) error
	ListStates(userID string) ([]core.KnowledgeState, error)
}

// SimilarityStore caches pairwise similarity records. Records are
// write-once per pair in practice; concurrent writers are idempotent since
// the value is deterministic for equal embeddings.
type SimilarityStore interface {
	GetSimilarity(contentA, contentB string) (*core.SimilarityRecord, error)
	PutSimilarity(record core.SimilarityRecord) error
}

// RelationshipStore persists discovered content relationships.
type RelationshipStore interface {
	PutRelationship(rel core.ContentRelationship) error
	ListRelationships(contentID string) ([]core.ContentRelationship, error)
}

// DeliveryLog records which content has been delivered to a user. The
// anti-repetition filter compares candidates against this log only, not all
// historical content.
type DeliveryLog interface {
	MarkDelivered(userID, contentID string) error
	ListDelivered(userID string) ([]string, error)
}
