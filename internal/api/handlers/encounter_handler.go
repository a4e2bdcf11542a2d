package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clinicamia/agenda-service/internal/domain/entities"
	apperrors "github.com/clinicamia/agenda-service/pkg/errors"
)

// EncounterService defines the interface for appointment lifecycle operations
type EncounterService interface {
	GetAppointment(ctx context.Context, id string) (*entities.Appointment, error)
	Transition(ctx context.Context, appointmentID string, target entities.AppointmentStatus) (*entities.Appointment, error)
}

// EncounterHandler handles appointment lifecycle requests
type EncounterHandler struct {
	service EncounterService
}

// NewEncounterHandler creates a new encounter handler
func NewEncounterHandler(service EncounterService) *EncounterHandler {
	return &EncounterHandler{
		service: service,
	}
}

// GetAppointment handles GET /api/appointments/{id}
func (h *EncounterHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	appointment, err := h.service.GetAppointment(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

// UpdateStatus handles POST /api/appointments/{id}/status
func (h *EncounterHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.Status == "" {
		respondWithError(w, http.StatusBadRequest, "status is required")
		return
	}

	appointment, err := h.service.Transition(r.Context(), id, entities.AppointmentStatus(payload.Status))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithServiceError maps application error types to HTTP status codes.
func respondWithServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		switch appErr.Type {
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeInvalidTransition:
			respondWithError(w, http.StatusUnprocessableEntity, appErr.Message)
		case apperrors.ErrorTypeConflict:
			respondWithError(w, http.StatusConflict, appErr.Message)
		case apperrors.ErrorTypeExternal:
			respondWithError(w, http.StatusBadGateway, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, appErr.Message)
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}
