package dto

import (
	"certreg-backend/internal/models"

	"github.com/google/uuid"
)

// UploadResponse is the explicit result of an upload. ID and Hash
// always refer to the certificate carried alongside, whether this call
// created it or it was already recorded.
type UploadResponse struct {
	Status      string              `json:"status"`
	ID          uuid.UUID           `json:"id"`
	Hash        string              `json:"hash"`
	Certificate *models.Certificate `json:"certificate"`
}

type VerifyResponse struct {
	Verified    bool                `json:"verified"`
	Certificate *models.Certificate `json:"certificate,omitempty"`
	Reason      string              `json:"reason,omitempty"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}
