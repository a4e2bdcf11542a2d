package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clinicamia/agenda-service/internal/application/services"
	"github.com/clinicamia/agenda-service/internal/domain/entities"
)

// FollowUpService defines the interface for follow-up lifecycle operations
type FollowUpService interface {
	Schedule(ctx context.Context, input services.CreateFollowUpInput) (*entities.FollowUp, error)
	Get(ctx context.Context, id string) (*entities.FollowUp, error)
	Complete(ctx context.Context, id, notes string) (*entities.FollowUp, error)
	LinkAppointment(ctx context.Context, id, appointmentID string) (*entities.FollowUp, error)
	Cancel(ctx context.Context, id string) (*entities.FollowUp, error)
	ListByPatient(ctx context.Context, patientID string) ([]*services.FollowUpView, error)
	ListPendingByDoctor(ctx context.Context, doctorID string) ([]*services.FollowUpView, error)
}

// FollowUpHandler handles follow-up requests
type FollowUpHandler struct {
	service FollowUpService
}

// NewFollowUpHandler creates a new follow-up handler
func NewFollowUpHandler(service FollowUpService) *FollowUpHandler {
	return &FollowUpHandler{
		service: service,
	}
}

type createFollowUpRequest struct {
	OriginAppointmentID string `json:"origin_appointment_id"`
	PatientID           string `json:"patient_id"`
	DoctorID            string `json:"doctor_id"`
	Type                string `json:"type"`
	Priority            string `json:"priority"`
	OffsetDays          *int   `json:"offset_days"`
	Reason              string `json:"reason"`
	Instructions        string `json:"instructions"`
}

// CreateFollowUp handles POST /api/follow-ups
func (h *FollowUpHandler) CreateFollowUp(w http.ResponseWriter, r *http.Request) {
	var payload createFollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	followUp, err := h.service.Schedule(r.Context(), services.CreateFollowUpInput{
		OriginAppointmentID: payload.OriginAppointmentID,
		PatientID:           payload.PatientID,
		DoctorID:            payload.DoctorID,
		Type:                entities.FollowUpType(payload.Type),
		Priority:            entities.FollowUpPriority(payload.Priority),
		OffsetDays:          payload.OffsetDays,
		Reason:              payload.Reason,
		Instructions:        payload.Instructions,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, followUp)
}

// GetFollowUp handles GET /api/follow-ups/{id}
func (h *FollowUpHandler) GetFollowUp(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "follow-up ID is required")
		return
	}

	followUp, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, followUp)
}

// GetCatalog handles GET /api/follow-ups/catalog. Types are free form on
// creation; the catalog lists the presets UIs offer by default.
func (h *FollowUpHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"types":          entities.FollowUpTypeCatalog,
		"priorities":     []entities.FollowUpPriority{entities.FollowUpPriorityLow, entities.FollowUpPriorityNormal, entities.FollowUpPriorityHigh, entities.FollowUpPriorityUrgent},
		"offset_presets": entities.FollowUpOffsetPresets,
	})
}

// CompleteFollowUp handles POST /api/follow-ups/{id}/complete
func (h *FollowUpHandler) CompleteFollowUp(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "follow-up ID is required")
		return
	}

	var payload struct {
		Notes string `json:"notes"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
	}

	followUp, err := h.service.Complete(r.Context(), id, payload.Notes)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, followUp)
}

// LinkAppointment handles POST /api/follow-ups/{id}/appointment
func (h *FollowUpHandler) LinkAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "follow-up ID is required")
		return
	}

	var payload struct {
		AppointmentID string `json:"appointment_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if payload.AppointmentID == "" {
		respondWithError(w, http.StatusBadRequest, "appointment_id is required")
		return
	}

	followUp, err := h.service.LinkAppointment(r.Context(), id, payload.AppointmentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, followUp)
}

// CancelFollowUp handles POST /api/follow-ups/{id}/cancel
func (h *FollowUpHandler) CancelFollowUp(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "follow-up ID is required")
		return
	}

	followUp, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, followUp)
}

// ListPatientFollowUps handles GET /api/patients/{id}/follow-ups
func (h *FollowUpHandler) ListPatientFollowUps(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	followUps, err := h.service.ListByPatient(r.Context(), patientID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"follow_ups": followUps,
	})
}

// ListPendingFollowUps handles GET /api/doctors/{id}/follow-ups/pending
func (h *FollowUpHandler) ListPendingFollowUps(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	followUps, err := h.service.ListPendingByDoctor(r.Context(), doctorID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"follow_ups": followUps,
	})
}
