package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/forthing17-ops/signalcast-sub000/internal/core"
	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite-backed persistence adapter. It implements
// KnowledgeStore, SimilarityStore, RelationshipStore, and DeliveryLog.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with a SQLite database under
// dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "signalcast.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	knowledgeTable := `
	CREATE TABLE IF NOT EXISTS knowledge_state (
		user_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		confidence_level REAL NOT NULL,
		content_count INTEGER NOT NULL,
		knowledge_depth TEXT NOT NULL,
		last_interaction DATETIME,
		PRIMARY KEY (user_id, topic)
	);`

	similarityTable := `
	CREATE TABLE IF NOT EXISTS similarity_records (
		content_a TEXT NOT NULL,
		content_b TEXT NOT NULL,
		similarity REAL NOT NULL,
		comparison TEXT NOT NULL,
		computed_at DATETIME,
		PRIMARY KEY (content_a, content_b)
	);`

	relationshipsTable := `
	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		parent_id TEXT NOT NULL,
		child_id TEXT NOT NULL,
		type TEXT NOT NULL,
		strength REAL NOT NULL
	);`

	deliveriesTable := `
	CREATE TABLE IF NOT EXISTS deliveries (
		user_id TEXT NOT NULL,
		content_id TEXT NOT NULL,
		delivered_at DATETIME,
		PRIMARY KEY (user_id, content_id)
	);`

	tables := []string{knowledgeTable, similarityTable, relationshipsTable, deliveriesTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetState retrieves the knowledge state for a (user, topic) pair. Returns
// nil, nil on a miss.
func (s *Store) GetState(userID, topic string) (*core.KnowledgeState, error) {
	query := `
	SELECT user_id, topic, confidence_level, content_count, knowledge_depth, last_interaction
	FROM knowledge_state
	WHERE user_id = ? AND topic = ?`

	row := s.db.QueryRow(query, userID, topic)

	var state core.KnowledgeState
	var depth string

	err := row.Scan(
		&state.UserID,
		&state.Topic,
		&state.ConfidenceLevel,
		&state.ContentCount,
		&depth,
		&state.LastInteraction,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan knowledge state: %w", err)
	}

	state.KnowledgeDepth = core.KnowledgeDepth(depth)
	return &state, nil
}

// PutState upserts the knowledge state for a (user, topic) pair.
func (s *Store) PutState(state core.KnowledgeState) error {
	query := `
	INSERT OR REPLACE INTO knowledge_state
	(user_id, topic, confidence_level, content_count, knowledge_depth, last_interaction)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		state.UserID,
		state.Topic,
		state.ConfidenceLevel,
		state.ContentCount,
		string(state.KnowledgeDepth),
		state.LastInteraction,
	)

	return err
}

// ListStates returns all knowledge-state rows for a user.
func (s *Store) ListStates(userID string) ([]core.KnowledgeState, error) {
	query := `
	SELECT user_id, topic, confidence_level, content_count, knowledge_depth, last_interaction
	FROM knowledge_state
	WHERE user_id = ?
	ORDER BY topic`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge states: %w", err)
	}
	defer rows.Close()

	var states []core.KnowledgeState
	for rows.Next() {
		var state core.KnowledgeState
		var depth string
		if err := rows.Scan(
			&state.UserID,
			&state.Topic,
			&state.ConfidenceLevel,
			&state.ContentCount,
			&depth,
			&state.LastInteraction,
		); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge state: %w", err)
		}
		state.KnowledgeDepth = core.KnowledgeDepth(depth)
		states = append(states, state)
	}

	return states, rows.Err()
}

// GetSimilarity retrieves a cached similarity record for a content pair.
// Returns nil, nil on a miss. Pair order does not matter.
func (s *Store) GetSimilarity(contentA, contentB string) (*core.SimilarityRecord, error) {
	a, b := core.PairKey(contentA, contentB)

	query := `
	SELECT content_a, content_b, similarity, comparison, computed_at
	FROM similarity_records
	WHERE content_a = ? AND content_b = ?`

	row := s.db.QueryRow(query, a, b)

	var record core.SimilarityRecord
	err := row.Scan(
		&record.ContentA,
		&record.ContentB,
		&record.Similarity,
		&record.Comparison,
		&record.ComputedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan similarity record: %w", err)
	}

	return &record, nil
}

// PutSimilarity caches a similarity record, canonicalizing the pair order.
func (s *Store) PutSimilarity(record core.SimilarityRecord) error {
	a, b := core.PairKey(record.ContentA, record.ContentB)

	query := `
	INSERT OR REPLACE INTO similarity_records
	(content_a, content_b, similarity, comparison, computed_at)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, a, b, record.Similarity, record.Comparison, record.ComputedAt)
	return err
}

// PutRelationship stores a discovered relationship.
func (s *Store) PutRelationship(rel core.ContentRelationship) error {
	query := `
	INSERT OR REPLACE INTO relationships
	(id, parent_id, child_id, type, strength)
	VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, rel.ID, rel.ParentID, rel.ChildID, string(rel.Type), rel.Strength)
	return err
}

// ListRelationships returns relationships touching the given content item,
// in either direction.
func (s *Store) ListRelationships(contentID string) ([]core.ContentRelationship, error) {
	query := `
	SELECT id, parent_id, child_id, type, strength
	FROM relationships
	WHERE parent_id = ? OR child_id = ?`

	rows, err := s.db.Query(query, contentID, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	var rels []core.ContentRelationship
	for rows.Next() {
		var rel core.ContentRelationship
		var relType string
		if err := rows.Scan(&rel.ID, &rel.ParentID, &rel.ChildID, &relType, &rel.Strength); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		rel.Type = core.RelationshipType(relType)
		rels = append(rels, rel)
	}

	return rels, rows.Err()
}

// MarkDelivered records that content was delivered to a user.
func (s *Store) MarkDelivered(userID, contentID string) error {
	query := `
	INSERT OR REPLACE INTO deliveries (user_id, content_id, delivered_at)
	VALUES (?, ?, ?)`

	_, err := s.db.Exec(query, userID, contentID, time.Now().UTC())
	return err
}

// ListDelivered returns the IDs of content delivered to a user, most recent
// first.
func (s *Store) ListDelivered(userID string) ([]string, error) {
	query := `
	SELECT content_id FROM deliveries
	WHERE user_id = ?
	ORDER BY delivered_at DESC`

	rows, err := s.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
