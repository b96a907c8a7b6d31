package domain

import "time"

// Role identifies the speaker of a dialog turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is a single utterance in a dialog. Turns are never mutated once
// appended to a session's history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"content"`
}

// Preference is a durable personal fact about the user, keyed by a
// normalized category such as "favorite animal". Last write wins.
type Preference struct {
	Key   string
	Value string
}

// Provenance values for stored knowledge.
const (
	SourceSeed   = "seed_knowledge"
	SourceDialog = "dialog"
	SourceManual = "manual"
)

// RecordMetadata carries the provenance of a knowledge record.
type RecordMetadata struct {
	Source    string `json:"source"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp,omitempty"`
	Query     string `json:"query,omitempty"`
}

// KnowledgeRecord is an immutable (text, metadata) pair persisted in the
// vector index. Updates are new inserts with fresh IDs.
type KnowledgeRecord struct {
	ID       string
	Text     string
	Metadata RecordMetadata
}

// SearchHit is one retrieved text, scored by the index's similarity.
type SearchHit struct {
	Text     string
	Score    float64
	Metadata RecordMetadata
}

// Timing breaks a retrieval or generation call into its phases. Exposed
// for observability only; not part of any correctness contract.
type Timing struct {
	Embed    time.Duration
	Search   time.Duration
	Generate time.Duration
	Total    time.Duration
}

// Health reports backend readiness per service.
type Health struct {
	Status          string
	Services        map[string]string
	ModelsAvailable int
}

// Healthy is the status value reported by a fully working backend.
const Healthy = "healthy"
