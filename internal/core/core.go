package core

import "time"

// KnowledgeDepth is the ordinal learning stage for a topic. Depth only ever
// moves forward (beginner -> intermediate -> advanced).
type KnowledgeDepth string

const (
	DepthBeginner     KnowledgeDepth = "beginner"
	DepthIntermediate KnowledgeDepth = "intermediate"
	DepthAdvanced     KnowledgeDepth = "advanced"
)

// Rank returns the ordinal position of the depth tier (beginner=0).
func (d KnowledgeDepth) Rank() int {
	switch d {
	case DepthIntermediate:
		return 1
	case DepthAdvanced:
		return 2
	default:
		return 0
	}
}

// Next returns the following depth tier. Advanced has no successor and
// returns itself.
func (d KnowledgeDepth) Next() KnowledgeDepth {
	switch d {
	case DepthBeginner:
		return DepthIntermediate
	case DepthIntermediate:
		return DepthAdvanced
	default:
		return DepthAdvanced
	}
}

// GapType classifies a detected knowledge gap.
type GapType string

const (
	GapMissing      GapType = "missing"      // Declared interest with no knowledge state at all
	GapShallow      GapType = "shallow"      // Engaged but confidence stayed low
	GapOutdated     GapType = "outdated"     // Solid confidence but stale interaction history
	GapPrerequisite GapType = "prerequisite" // Required foundation for an engaged topic is weak or absent
)

// GapSeverity ranks how urgently a gap should be addressed.
type GapSeverity string

const (
	SeverityLow      GapSeverity = "low"
	SeverityMedium   GapSeverity = "medium"
	SeverityHigh     GapSeverity = "high"
	SeverityCritical GapSeverity = "critical"
)

// Rank returns the ordinal position of the severity (low=0, critical=3).
func (s GapSeverity) Rank() int {
	switch s {
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 0
	}
}

// RelationshipType classifies how two content items relate.
type RelationshipType string

const (
	RelBuildsOn     RelationshipType = "builds_on"    // Child extends the parent's ideas (directional)
	RelPrerequisite RelationshipType = "prerequisite" // Parent should be read before the child (directional)
	RelRelated      RelationshipType = "related"      // Same subject, comparable depth (symmetric)
	RelContrasts    RelationshipType = "contrasts"    // Same subject, divergent treatment (symmetric)
	RelCrossDomain  RelationshipType = "cross_domain" // Bridges two inferred domains
)

// Domain is the inferred subject area of a content item, used for
// cross-domain connection discovery.
type Domain string

const (
	DomainTechnology Domain = "technology"
	DomainBusiness   Domain = "business"
	DomainDesign     Domain = "design"
	DomainData       Domain = "data"
	DomainProduct    Domain = "product"
	DomainOperations Domain = "operations"
	DomainSecurity   Domain = "security"
	DomainInnovation Domain = "innovation"
)

// CrossDomainType classifies the nature of a cross-domain connection.
type CrossDomainType string

const (
	CrossSynergistic    CrossDomainType = "synergistic"
	CrossCompetitive    CrossDomainType = "competitive"
	CrossComplementary  CrossDomainType = "complementary"
	CrossCausal         CrossDomainType = "causal"
	CrossTransformative CrossDomainType = "transformative"
)

// ContentItem represents a single piece of ingested content. Items are
// immutable once scored except for the cached embedding.
type ContentItem struct {
	ID          string                 `json:"id"`                    // Unique identifier for the content item
	Title       string                 `json:"title"`                 // Title of the content
	Body        string                 `json:"body"`                  // Body text (may contain HTML from the ingestion pipeline)
	Platform    string                 `json:"platform"`              // Source platform (e.g. "reddit", "hackernews", "producthunt")
	Topics      []string               `json:"topics"`                // Topic tags assigned at ingestion
	PublishedAt time.Time              `json:"published_at"`          // Original publish timestamp
	Embedding   []float64              `json:"embedding,omitempty"`   // Precomputed embedding vector (optional)
	EmbeddedAt  time.Time              `json:"embedded_at,omitempty"` // When the embedding was generated
	Metadata    map[string]interface{} `json:"metadata,omitempty"`    // Platform-specific signals (votes, comments, category, ...)
}

// UserProfile captures the professional context the engine personalizes for.
// Owned by preference management; read-only to the engine.
type UserProfile struct {
	UserID            string   `json:"user_id"`            // Unique identifier for the user
	Interests         []string `json:"interests"`          // Ordered interest keywords
	TechStack         []string `json:"tech_stack"`         // Technologies the user works with
	Role              string   `json:"role"`               // Professional role (e.g. "frontend engineer")
	Industry          string   `json:"industry"`           // Industry the user works in
	DepthPreference   string   `json:"depth_preference"`   // Preferred content depth ("beginner", "intermediate", "advanced")
	NoveltyPreference float64  `json:"novelty_preference"` // 0..1, higher means stricter repetition filtering
	CuriosityTopics   []string `json:"curiosity_topics"`   // Topics the user wants to explore beyond their stack
}

// KnowledgeState tracks one user's command of one topic. Created on first
// interaction, mutated only by the knowledge tracker, never deleted.
type KnowledgeState struct {
	UserID          string         `json:"user_id"`          // Owning user
	Topic           string         `json:"topic"`            // Topic label (lower-cased)
	ConfidenceLevel float64        `json:"confidence_level"` // 0..1 estimate of understanding
	ContentCount    int            `json:"content_count"`    // Number of content interactions recorded
	KnowledgeDepth  KnowledgeDepth `json:"knowledge_depth"`  // Current depth tier, monotonic non-decreasing
	LastInteraction time.Time      `json:"last_interaction"` // Timestamp of the most recent interaction
}

// Interaction is the signal recorded when a user engages with content on a
// topic. Comprehension is optional; nil means no self-assessment was
// collected.
type Interaction struct {
	ContentID     string    `json:"content_id"`              // Content the user interacted with
	Topics        []string  `json:"topics"`                  // Topics the interaction applies to
	Unhelpful     bool      `json:"unhelpful"`               // Explicitly marked as not helpful
	Difficulty    string    `json:"difficulty"`              // "easy", "medium", "hard" (empty = medium)
	Comprehension *float64  `json:"comprehension,omitempty"` // Optional 0..1 self-assessed comprehension
	OccurredAt    time.Time `json:"occurred_at"`             // When the interaction happened
}

// TopicPrerequisite is one node of the static prerequisite graph. Loaded
// once at startup from configuration; the graph must be acyclic.
type TopicPrerequisite struct {
	Topic         string         `json:"topic" yaml:"topic"`                 // Topic name (graph key)
	Prerequisites []string       `json:"prerequisites" yaml:"prerequisites"` // Topics that should be learned first
	Difficulty    KnowledgeDepth `json:"difficulty" yaml:"difficulty"`       // Intrinsic difficulty tier
	Importance    float64        `json:"importance" yaml:"importance"`       // 0..1 weight used for gap severity
}

// KnowledgeGap is a detected deficiency in the user's knowledge. Derived
// state: recomputed on each analysis call, never authoritative.
type KnowledgeGap struct {
	Topic            string      `json:"topic"`             // Topic the gap concerns
	Type             GapType     `json:"type"`              // Classification of the gap
	Severity         GapSeverity `json:"severity"`          // How urgently it should be addressed
	Priority         float64     `json:"priority"`          // 0..1 ordering signal within a severity band
	Foundational     float64     `json:"foundational"`      // 0..1 importance as a prerequisite for other topics
	RelatedTopics    []string    `json:"related_topics"`    // Topics that depend on or triggered this gap
	SuggestedContent []string    `json:"suggested_content"` // Descriptors of content that would close the gap
}

// GapAnalysisResult aggregates one analysis pass over a user's knowledge.
type GapAnalysisResult struct {
	UserID             string              `json:"user_id"`
	Gaps               []KnowledgeGap      `json:"gaps"` // Sorted by severity desc, then priority desc
	CountsBySeverity   map[GapSeverity]int `json:"counts_by_severity"`
	LearningPath       []string            `json:"learning_path"`       // Topologically ordered topics to study
	RecommendedActions []string            `json:"recommended_actions"` // Human-readable next steps for the top gaps
	AnalyzedAt         time.Time           `json:"analyzed_at"`
}

// ContentRelationship links two content items. Direction matters only for
// builds_on and prerequisite; symmetric types store one arbitrary direction.
type ContentRelationship struct {
	ID       string           `json:"id"`        // Unique identifier for the relationship
	ParentID string           `json:"parent_id"` // Source item (the foundation for directional types)
	ChildID  string           `json:"child_id"`  // Target item
	Type     RelationshipType `json:"type"`      // Classification of the relationship
	Strength float64          `json:"strength"`  // 0..1 blend of similarity and topic overlap
}

// CrossDomainConnection is a discovered bridge between content in two
// different inferred domains.
type CrossDomainConnection struct {
	SourceID         string          `json:"source_id"`
	TargetID         string          `json:"target_id"`
	SourceDomain     Domain          `json:"source_domain"`
	TargetDomain     Domain          `json:"target_domain"`
	Type             CrossDomainType `json:"type"`
	Similarity       float64         `json:"similarity"`
	BridgingConcepts []string        `json:"bridging_concepts"` // Shared topics plus detected bridging keywords
	Opportunity      string          `json:"opportunity"`       // What the bridge is good for, keyed by domain pair and type
	Synergy          string          `json:"synergy"`           // How the two sides reinforce each other
	Risk             string          `json:"risk"`              // What to watch out for when acting on the bridge
}

// ContentCluster groups content sharing a primary topic.
type ContentCluster struct {
	Topic         string   `json:"topic"`          // Primary topic label of the cluster
	MemberIDs     []string `json:"member_ids"`     // Content items in the cluster
	CentralID     string   `json:"central_id"`     // Most-connected member
	AvgComplexity float64  `json:"avg_complexity"` // Mean complexity score of members (0..1)
}

// SimilarityRecord caches one pairwise comparison. Content is immutable
// post-creation, so a computed record is stable and cached indefinitely.
type SimilarityRecord struct {
	ContentA   string    `json:"content_a"`  // Lexicographically smaller content ID
	ContentB   string    `json:"content_b"`  // Lexicographically larger content ID
	Similarity float64   `json:"similarity"` // Cosine similarity, practically 0..1
	Comparison string    `json:"comparison"` // "embedding" or "topic_overlap"
	ComputedAt time.Time `json:"computed_at"`
}

// PairKey returns the canonical (ordered) key for a content ID pair so that
// (a,b) and (b,a) address the same cached record.
func PairKey(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// RelationshipAnalysis aggregates one relationship-discovery pass over a
// set of content items.
type RelationshipAnalysis struct {
	Relationships []ContentRelationship   `json:"relationships"`
	ConnectionMap map[string][]string     `json:"connection_map"` // Undirected adjacency list by content ID
	LearningPath  []string                `json:"learning_path"`  // Content IDs ordered so foundations come first
	Clusters      []ContentCluster        `json:"clusters"`
	CrossDomain   []CrossDomainConnection `json:"cross_domain"`
	AnalyzedAt    time.Time               `json:"analyzed_at"`
}

// RepetitionMatch is one delivered item found too similar to a candidate.
type RepetitionMatch struct {
	ContentID  string  `json:"content_id"` // Previously delivered item
	Similarity float64 `json:"similarity"` // Similarity to the candidate
}

// RepetitionVerdict is the anti-repetition filter's decision for one
// candidate item. All matches are returned for transparency.
type RepetitionVerdict struct {
	ContentID     string            `json:"content_id"`     // Candidate item
	IsRepetitive  bool              `json:"is_repetitive"`  // True if any match met the threshold
	Matches       []RepetitionMatch `json:"matches"`        // Delivered items at or above the threshold
	ThresholdUsed float64           `json:"threshold_used"` // Effective similarity threshold applied
}
