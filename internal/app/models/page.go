package models

// PageRequest selects one 1-based page of a listing.
type PageRequest struct {
	Page int
	Size int
}
