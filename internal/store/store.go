package store

import (
	"errors"

	"certreg-backend/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("certificate not found")
	ErrInvalidID = errors.New("invalid certificate id")
)

// RecordStore persists certificate records keyed uniquely by digest.
//
// InsertIfAbsent must be atomic under concurrent callers submitting the
// same digest: exactly one insert may succeed, and every loser observes
// the winner's record with inserted=false.
type RecordStore interface {
	InsertIfAbsent(cert *models.Certificate) (*models.Certificate, bool, error)
	FindByDigest(digest string) (*models.Certificate, error)
	FindByID(id uuid.UUID) (*models.Certificate, error)
}
