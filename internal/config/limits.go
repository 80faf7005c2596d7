package config

import "time"

const (
	// DefaultLockTTL is how long an edit lock survives without renewal before
	// it goes stale and may be displaced by another acquirer. 30 minutes
	// recovers from crashed or abandoned sessions without a heartbeat.
	DefaultLockTTL = 30 * time.Minute

	// MaxDocumentTitleLength is the maximum length for document titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxDocumentTitleLength = 255

	// MaxMilestoneNameLength is the maximum length for milestone names.
	// Same as document titles for consistency.
	MaxMilestoneNameLength = 255

	// MaxSnapshotBytes bounds the size of one content snapshot. Structured
	// editor payloads run well under this; anything bigger is rejected
	// before hitting the database.
	MaxSnapshotBytes = 5 << 20

	// MaxQualityScore is the upper bound of the optional compliance score
	// supplied by external scoring.
	MaxQualityScore = 100
)
