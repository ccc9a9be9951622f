package model

// Corpus names the two logically separate document collections.
type Corpus string

const (
	CorpusPersonal Corpus = "personal"
	CorpusShared   Corpus = "shared"
)

// OwnerShared is the sentinel owner for shared-corpus rows. Shared documents
// are never filtered by requester identity.
const OwnerShared = "shared"

const (
	DocTypeChatNote     = "chat_note"
	DocTypeMetricNote   = "metric_note"
	DocTypeVaccineNote  = "vaccine_note"
	DocTypeVisionNote   = "vision_note"
	DocTypeKnowledge    = "knowledge"
	DocTypePlanSummary  = "plan_summary"
	DocTypePlanSchedule = "plan_schedule"
)

type Document struct {
	ID       string            `json:"id"`
	OwnerID  string            `json:"owner_id"`
	PetID    string            `json:"pet_id,omitempty"`
	DocType  string            `json:"doc_type"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
	// Embedding is write-side only; it is never serialized back to callers.
	Embedding []float32 `json:"-"`
	Ctime     int64     `json:"ctime"`
	Mtime     int64     `json:"mtime"`
}

// ScoredDocument is a ranked retrieval hit. Score is cosine similarity,
// higher means more relevant.
type ScoredDocument struct {
	Document
	Corpus Corpus  `json:"corpus"`
	Score  float64 `json:"score"`
}
