package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tag represents a reusable label attachable to many stores.
// Tags are global, not owned by any store, and identified externally by
// TagID. Names are unique across the system and compared case-sensitively.
// A tag is never deleted when its last link goes away; orphans persist.
type Tag struct {
	TagID     uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
