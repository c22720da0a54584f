package store

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a targeted write matches no row.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a unique column would be duplicated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrDimensionMismatch is returned when a vector does not have the configured length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrZeroVector is returned for a vector with zero norm, which has no cosine distance.
	ErrZeroVector = errors.New("embedding has zero norm")
)

// DefaultListLimit is applied by services when a caller asks for no limit.
const DefaultListLimit = 100
