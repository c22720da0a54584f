package store

import (
	"github.com/hrygo/rosterly/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver

	// dimensions is the fixed length of every stored embedding.
	dimensions int
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	dimensions := profile.AIEmbeddingDimensions
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &Store{
		driver:     driver,
		profile:    profile,
		dimensions: dimensions,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

// Dimensions returns the embedding length the schema was created with.
func (s *Store) Dimensions() int {
	return s.dimensions
}

func (s *Store) Close() error {
	return s.driver.Close()
}
