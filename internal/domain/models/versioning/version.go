package versioning

import (
	"encoding/json"
	"time"
)

// Snapshot is an opaque structured content snapshot: a JSON object of typed
// fields (headline, body, quotes, ...). The service layer derives a canonical
// plain-text projection from it; storage treats it as a JSONB blob.
type Snapshot = json.RawMessage

// Version is an immutable, numbered snapshot of a document's content.
// For a given document, version numbers form a contiguous sequence 1..N in
// creation order. Once created, only the two milestone fields may change;
// content, version_number, created_by and created_at are fixed forever.
type Version struct {
	ID            string    `json:"id" db:"id"`
	DocumentID    string    `json:"document_id" db:"document_id"`
	VersionNumber int       `json:"version_number" db:"version_number"`
	Content       Snapshot  `json:"content" db:"content"`
	WordCount     int       `json:"word_count" db:"word_count"`
	QualityScore  *int      `json:"quality_score,omitempty" db:"quality_score"` // 0-100 when present
	IsMilestone   bool      `json:"is_milestone" db:"is_milestone"`
	MilestoneName *string   `json:"milestone_name,omitempty" db:"milestone_name"` // set iff IsMilestone
	CreatedBy     string    `json:"created_by" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
