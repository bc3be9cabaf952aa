// Package domain contains the core data types for the store directory service.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Store represents a single business location in the directory.
// StoreID is the stable external identifier exposed over HTTP; the internal
// numeric row id never leaves the repo layer.
type Store struct {
	StoreID   uuid.UUID
	Name      string
	Address   string
	Content   string
	Lat       float64
	Lng       float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoreWithTags is a Store together with the names of every tag linked to it.
// Tags is never nil; a store without tags carries an empty slice.
type StoreWithTags struct {
	Store
	Tags []string
}

// StorePatch describes a partial update to a store. Nil scalar fields are
// left untouched. Lat/Lng accompany Address: when the address changes, the
// caller re-geocodes and supplies both coordinates together.
type StorePatch struct {
	Name    *string
	Address *string
	Lat     *float64
	Lng     *float64
	Content *string

	// Tags is the full target tag set. nil means "do not touch tags";
	// an empty non-nil slice removes every link.
	Tags []string
}

// ListFilter narrows a store listing.
// NamePattern is a case-insensitive substring match on the store name.
// TagName restricts results to stores linked to a tag with exactly that name.
// Both filters combine with logical AND; empty values are ignored.
type ListFilter struct {
	NamePattern string
	TagName     string
}
