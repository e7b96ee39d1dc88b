package storage

// Service provides high-level operations for storing and retrieving cards
// and decks.
type Service struct {
	db *DB
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{db: db}
}

// DB returns the underlying database handle.
func (s *Service) DB() *DB {
	return s.db
}
