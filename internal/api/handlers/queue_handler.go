package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/clinicamia/agenda-service/internal/domain/entities"
)

// QueueService defines the interface for daily queue reads
type QueueService interface {
	GetDailyQueue(ctx context.Context, doctorID string) (*entities.DailyQueue, error)
	GetScheduleChecksum(ctx context.Context, doctorID string, from, to time.Time) (string, error)
}

// QueueHandler handles daily queue requests
type QueueHandler struct {
	service QueueService
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(service QueueService) *QueueHandler {
	return &QueueHandler{
		service: service,
	}
}

// GetDailyQueue handles GET /api/doctors/{id}/daily-queue
func (h *QueueHandler) GetDailyQueue(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	queue, err := h.service.GetDailyQueue(r.Context(), doctorID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"queue": queue,
	})
}

// GetScheduleChecksum handles GET /api/doctors/{id}/schedule-checksum?from=&to=
func (h *QueueHandler) GetScheduleChecksum(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid from date format (use YYYY-MM-DD)")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid to date format (use YYYY-MM-DD)")
			return
		}
		to = parsed
	}

	checksum, err := h.service.GetScheduleChecksum(r.Context(), doctorID, from, to)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"doctor_id": doctorID,
		"checksum":  checksum,
	})
}
