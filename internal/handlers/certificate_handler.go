package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"certreg-backend/internal/dto"
	"certreg-backend/internal/services"
	"certreg-backend/internal/store"
	"certreg-backend/utils/response"
)

// fileField is the multipart field the frontend pages submit.
const fileField = "certificateFile"

type CertificateHandler struct {
	service *services.RegistryService
}

func NewCertificateHandler(service *services.RegistryService) *CertificateHandler {
	return &CertificateHandler{service: service}
}

func (h *CertificateHandler) UploadCertificate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 100*1024*1024) // 100MB limit

	if err := r.ParseMultipartForm(32 * 1024 * 1024); err != nil {
		response.Error(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse multipart form: %v", err))
		return
	}

	file, header, err := r.FormFile(fileField)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "certificateFile is required")
		return
	}
	defer file.Close()

	// TODO: stream large uploads through the hasher instead of buffering
	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read file: %v", err))
		return
	}

	result, err := h.service.Ingest(data, services.IngestMetadata{
		Name:        r.FormValue("name"),
		Issuer:      r.FormValue("issuer"),
		DateOfIssue: r.FormValue("date"),
		Filename:    header.Filename,
	})
	if err != nil {
		response.Error(w, http.StatusInternalServerError, fmt.Sprintf("Failed to record certificate: %v", err))
		return
	}

	status := http.StatusCreated
	if result.Status == services.StatusAlreadyRecorded {
		status = http.StatusOK
	}
	response.JSON(w, status, dto.UploadResponse{
		Status:      string(result.Status),
		ID:          result.Certificate.ID,
		Hash:        result.Certificate.Digest,
		Certificate: result.Certificate,
	})
}

// VerifyCertificate accepts either a file or an id. A non-match is a
// successful verification with verified=false, never an error status.
func (h *CertificateHandler) VerifyCertificate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 100*1024*1024) // 100MB limit

	if err := r.ParseMultipartForm(32 * 1024 * 1024); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		response.Error(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	if file, _, err := r.FormFile(fileField); err == nil {
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read file: %v", err))
			return
		}
		result, err := h.service.VerifyByContent(data)
		h.respondVerify(w, result, err)
		return
	}

	if id := r.FormValue("id"); id != "" {
		result, err := h.service.VerifyByID(id)
		h.respondVerify(w, result, err)
		return
	}

	response.Error(w, http.StatusBadRequest, "Provide a file (certificateFile) or an id")
}

func (h *CertificateHandler) respondVerify(w http.ResponseWriter, result *services.VerifyResult, err error) {
	if err != nil {
		response.Error(w, http.StatusInternalServerError, fmt.Sprintf("Verification failed: %v", err))
		return
	}
	response.JSON(w, http.StatusOK, dto.VerifyResponse{
		Verified:    result.Verified,
		Certificate: result.Certificate,
		Reason:      result.Reason,
	})
}

func (h *CertificateHandler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		response.Error(w, http.StatusBadRequest, "'id' not present in path")
		return
	}

	cert, err := h.service.FetchMetadata(id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidID):
			response.Error(w, http.StatusBadRequest, "Invalid certificate id")
		case errors.Is(err, store.ErrNotFound):
			response.Error(w, http.StatusNotFound, "Certificate not found")
		default:
			response.Error(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get certificate: %v", err))
		}
		return
	}

	response.JSON(w, http.StatusOK, cert)
}

func (h *CertificateHandler) GetCertificateFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		response.Error(w, http.StatusBadRequest, "'id' not present in path")
		return
	}

	rc, filename, err := h.service.FetchBlob(id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrInvalidID):
			response.Error(w, http.StatusBadRequest, "Invalid certificate id")
		case errors.Is(err, store.ErrNotFound):
			response.Error(w, http.StatusNotFound, "Certificate file not found")
		default:
			response.Error(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve file: %v", err))
		}
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}
