package handlers

import (
	"net/http"

	"certreg-backend/internal/database"
	"certreg-backend/internal/dto"
	"certreg-backend/utils/response"
)

type HealthHandler struct {
	db *database.DB
}

func NewHealthHandler(db *database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		response.Error(w, http.StatusServiceUnavailable, "Database unreachable")
		return
	}
	response.JSON(w, http.StatusOK, dto.HealthResponse{OK: true})
}
