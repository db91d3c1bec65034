package repository

import "errors"

var (
	// ErrNotFound is wrapped by every implementation when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is wrapped when a unique key (email, slug, provider ref) already exists.
	ErrDuplicate = errors.New("record already exists")
)
