package store

import (
	"database/sql"
	"errors"
	"fmt"

	"certreg-backend/internal/database"
	"certreg-backend/internal/models"

	"github.com/google/uuid"
)

// PostgresStore backs the registry with a certificates table whose
// digest column carries a unique constraint. Duplicate detection is
// delegated to that constraint rather than an application pre-check, so
// two concurrent identical uploads cannot both insert.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertIfAbsent(cert *models.Certificate) (*models.Certificate, bool, error) {
	query := `
		insert into certificates (id, name, issuer, date_of_issue, filename, storage_ref, digest, created_at)
		values (:id, :name, :issuer, :date_of_issue, :filename, :storage_ref, :digest, :created_at)
		on conflict (digest) do nothing
	`
	res, err := s.db.NamedExec(query, cert)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert certificate: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read insert result: %w", err)
	}
	if rows == 1 {
		return cert, true, nil
	}

	// Conflict: a record with this digest already exists, reread it.
	existing, err := s.FindByDigest(cert.Digest)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load existing certificate: %w", err)
	}
	return existing, false, nil
}

func (s *PostgresStore) FindByDigest(digest string) (*models.Certificate, error) {
	var cert models.Certificate
	query := `
		select id, name, issuer, date_of_issue, filename, storage_ref, digest, created_at
		from certificates where digest = $1
	`
	if err := s.db.Get(&cert, query, digest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get certificate by digest: %w", err)
	}
	return &cert, nil
}

func (s *PostgresStore) FindByID(id uuid.UUID) (*models.Certificate, error) {
	var cert models.Certificate
	query := `
		select id, name, issuer, date_of_issue, filename, storage_ref, digest, created_at
		from certificates where id = $1
	`
	if err := s.db.Get(&cert, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get certificate by id: %w", err)
	}
	return &cert, nil
}
