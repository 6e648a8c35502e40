package store

import (
	"sync"

	"certreg-backend/internal/models"

	"github.com/google/uuid"
)

// MemoryStore keeps records in mutex-guarded maps. It backs tests and
// local development; the digest index gives it the same insert-if-absent
// semantics as the database constraint.
type MemoryStore struct {
	mutex    sync.RWMutex
	byDigest map[string]*models.Certificate
	byID     map[uuid.UUID]*models.Certificate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byDigest: make(map[string]*models.Certificate),
		byID:     make(map[uuid.UUID]*models.Certificate),
	}
}

func (s *MemoryStore) InsertIfAbsent(cert *models.Certificate) (*models.Certificate, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if existing, ok := s.byDigest[cert.Digest]; ok {
		return copyRecord(existing), false, nil
	}

	stored := copyRecord(cert)
	s.byDigest[stored.Digest] = stored
	s.byID[stored.ID] = stored
	return copyRecord(stored), true, nil
}

func (s *MemoryStore) FindByDigest(digest string) (*models.Certificate, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	cert, ok := s.byDigest[digest]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(cert), nil
}

func (s *MemoryStore) FindByID(id uuid.UUID) (*models.Certificate, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	cert, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyRecord(cert), nil
}

// Count reports the number of stored records.
func (s *MemoryStore) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.byDigest)
}

// copyRecord keeps callers from mutating the store's view of a record.
func copyRecord(cert *models.Certificate) *models.Certificate {
	c := *cert
	return &c
}
