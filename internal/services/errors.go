package services

import "errors"

var (
	// ErrInvalidCollection means the collection input failed validation. Nothing is loaded.
	ErrInvalidCollection = errors.New("invalid collection")

	// ErrNoSnapshots means the snapshot store holds no rows at all.
	ErrNoSnapshots = errors.New("no snapshots found; run the snapshot job first")

	// ErrCatalogUnavailable wraps transport and non-404 failures from Scryfall.
	ErrCatalogUnavailable = errors.New("scryfall lookup failed")

	// ErrCardNotFound means Scryfall has no card for a set and collector number.
	ErrCardNotFound = errors.New("card not found on scryfall")
)
