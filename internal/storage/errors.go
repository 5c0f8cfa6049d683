package storage

import "errors"

var (
	// ErrCatalogEntryNotFound is returned when a catalog entry is not found
	ErrCatalogEntryNotFound = errors.New("catalog entry not found")

	// ErrCatalogEntryExists is returned when an entry with the same name is already stored
	ErrCatalogEntryExists = errors.New("catalog entry already exists")
)
