package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"certreg-backend/certreg/blobstore"
	"certreg-backend/certreg/hashing"
	"certreg-backend/internal/models"
	"certreg-backend/internal/store"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

const unknownValue = "Unknown"

type IngestStatus string

const (
	StatusRecorded        IngestStatus = "recorded"
	StatusAlreadyRecorded IngestStatus = "already_recorded"
)

type IngestMetadata struct {
	Name        string
	Issuer      string
	DateOfIssue string
	Filename    string
}

type IngestResult struct {
	Status      IngestStatus
	Certificate *models.Certificate
}

type VerifyResult struct {
	Verified    bool
	Certificate *models.Certificate
	Reason      string
}

// RegistryService orchestrates ingestion and verification. Blob-write
// ordering: the blob is committed before the record insert, and rolled
// back when the insert reveals a pre-existing digest or fails outright.
// A record therefore never points at a blob that was not yet durable.
type RegistryService struct {
	records store.RecordStore
	blobs   *blobstore.Store
}

func NewRegistryService(records store.RecordStore, blobs *blobstore.Store) *RegistryService {
	return &RegistryService{records: records, blobs: blobs}
}

// Ingest registers the uploaded bytes. A digest already present in the
// registry yields the existing record with StatusAlreadyRecorded and
// exactly one durable blob per digest, ever.
func (s *RegistryService) Ingest(data []byte, meta IngestMetadata) (*IngestResult, error) {
	digest := hashing.DigestBytes(data)

	ref, err := s.blobs.Put(meta.Filename, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to store certificate file: %w", err)
	}

	cert := &models.Certificate{
		ID:          uuid.New(),
		Name:        orUnknown(meta.Name),
		Issuer:      orUnknown(meta.Issuer),
		DateOfIssue: meta.DateOfIssue,
		Filename:    meta.Filename,
		StorageRef:  ref,
		Digest:      digest,
		CreatedAt:   time.Now().UTC(),
	}

	stored, inserted, err := s.records.InsertIfAbsent(cert)
	if err != nil {
		result := fmt.Errorf("failed to save certificate record: %w", err)
		if delErr := s.blobs.Delete(ref); delErr != nil {
			result = multierror.Append(result, fmt.Errorf("blob rollback failed: %w", delErr))
		}
		return nil, result
	}

	if !inserted {
		// Duplicate digest: this call's blob is an orphan, remove it.
		if delErr := s.blobs.Delete(ref); delErr != nil {
			log.Printf("failed to roll back duplicate blob %s: %v", ref, delErr)
		}
		return &IngestResult{Status: StatusAlreadyRecorded, Certificate: stored}, nil
	}

	return &IngestResult{Status: StatusRecorded, Certificate: stored}, nil
}

// VerifyByContent checks whether bytes identical to data were ever
// ingested. A miss is a normal outcome, not an error; only a storage
// failure is reported as one.
func (s *RegistryService) VerifyByContent(data []byte) (*VerifyResult, error) {
	digest := hashing.DigestBytes(data)

	cert, err := s.records.FindByDigest(digest)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return &VerifyResult{Verified: false, Reason: "no matching record found"}, nil
		}
		return nil, fmt.Errorf("failed to look up digest: %w", err)
	}
	return &VerifyResult{Verified: true, Certificate: cert}, nil
}

// VerifyByID checks whether id names a registered certificate. A
// malformed id and a well-formed but absent id both verify false, with
// distinct reasons.
func (s *RegistryService) VerifyByID(id string) (*VerifyResult, error) {
	cert, err := s.FetchMetadata(id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidID):
			return &VerifyResult{Verified: false, Reason: "invalid certificate id"}, nil
		case errors.Is(err, store.ErrNotFound):
			return &VerifyResult{Verified: false, Reason: "certificate id not found"}, nil
		}
		return nil, err
	}
	return &VerifyResult{Verified: true, Certificate: cert}, nil
}

func (s *RegistryService) FetchMetadata(id string) (*models.Certificate, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, store.ErrInvalidID
	}
	return s.records.FindByID(parsed)
}

// FetchBlob returns the stored bytes and original filename for id.
// An absent record and a record whose blob is missing from storage both
// surface as ErrNotFound; the log tells the two causes apart.
func (s *RegistryService) FetchBlob(id string) (io.ReadCloser, string, error) {
	cert, err := s.FetchMetadata(id)
	if err != nil {
		return nil, "", err
	}

	if cert.StorageRef == "" {
		log.Printf("certificate %s has no stored file", cert.ID)
		return nil, "", store.ErrNotFound
	}

	rc, err := s.blobs.Get(cert.StorageRef)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			log.Printf("certificate %s references missing blob %s", cert.ID, cert.StorageRef)
			return nil, "", store.ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open certificate file: %w", err)
	}
	return rc, cert.Filename, nil
}

func orUnknown(v string) string {
	if v == "" {
		return unknownValue
	}
	return v
}
