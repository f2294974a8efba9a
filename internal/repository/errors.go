package repository

import "github.com/alexanderramin/goaltree/internal/domain"

// Repository errors alias the domain sentinels so callers can match either.
var (
	ErrNotFound = domain.ErrNotFound
	ErrConflict = domain.ErrConflict
)
