package models

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is a registered document. Identity for content lookups is
// the Digest; the ID is assigned once at ingestion and never changes.
// StorageRef locates the raw bytes in the blob store and stays out of
// API responses.
type Certificate struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Issuer      string    `db:"issuer" json:"issuer"`
	DateOfIssue string    `db:"date_of_issue" json:"date_of_issue"`
	Filename    string    `db:"filename" json:"filename"`
	StorageRef  string    `db:"storage_ref" json:"-"`
	Digest      string    `db:"digest" json:"hash"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
