package versioning

import (
	"time"
)

// Document is the mutable entity being authored. It holds a pointer to its
// current version and the optional edit lock. Version history itself is
// append-only and lives in Version rows.
type Document struct {
	ID               string     `json:"id" db:"id"`
	Title            string     `json:"title" db:"title"`
	CurrentVersionID *string    `json:"current_version_id" db:"current_version_id"` // NULL until first version
	LockedBy         *string    `json:"locked_by" db:"locked_by"`                   // NULL = unlocked
	LockedAt         *time.Time `json:"locked_at" db:"locked_at"`
	CreatedBy        string     `json:"created_by" db:"created_by"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// Locked reports whether an edit lock is currently recorded on the document.
// Staleness of the lock is a policy decision and is evaluated by the lock
// manager, not here.
func (d *Document) Locked() bool {
	return d.LockedBy != nil
}
