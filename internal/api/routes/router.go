package routes

import (
	"net/http"

	"github.com/clinicamia/agenda-service/internal/api/handlers"
	"github.com/clinicamia/agenda-service/internal/api/middleware"
	"github.com/clinicamia/agenda-service/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	encounterHandler *handlers.EncounterHandler
	queueHandler     *handlers.QueueHandler
	followUpHandler  *handlers.FollowUpHandler
	sseHandler       *handlers.SSEHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	encounterHandler *handlers.EncounterHandler,
	queueHandler *handlers.QueueHandler,
	followUpHandler *handlers.FollowUpHandler,
	sseHandler *handlers.SSEHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		encounterHandler: encounterHandler,
		queueHandler:     queueHandler,
		followUpHandler:  followUpHandler,
		sseHandler:       sseHandler,

		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Appointment lifecycle endpoints
	r.mux.HandleFunc("GET /api/appointments/{id}", r.encounterHandler.GetAppointment)
	r.mux.HandleFunc("POST /api/appointments/{id}/status", r.encounterHandler.UpdateStatus)

	// Daily queue endpoints
	r.mux.HandleFunc("GET /api/doctors/{id}/daily-queue", r.queueHandler.GetDailyQueue)
	r.mux.HandleFunc("GET /api/doctors/{id}/schedule-checksum", r.queueHandler.GetScheduleChecksum)

	// Follow-up endpoints
	r.mux.HandleFunc("POST /api/follow-ups", r.followUpHandler.CreateFollowUp)
	r.mux.HandleFunc("GET /api/follow-ups/catalog", r.followUpHandler.GetCatalog)
	r.mux.HandleFunc("GET /api/follow-ups/{id}", r.followUpHandler.GetFollowUp)
	r.mux.HandleFunc("POST /api/follow-ups/{id}/complete", r.followUpHandler.CompleteFollowUp)
	r.mux.HandleFunc("POST /api/follow-ups/{id}/appointment", r.followUpHandler.LinkAppointment)
	r.mux.HandleFunc("POST /api/follow-ups/{id}/cancel", r.followUpHandler.CancelFollowUp)
	r.mux.HandleFunc("GET /api/patients/{id}/follow-ups", r.followUpHandler.ListPatientFollowUps)
	r.mux.HandleFunc("GET /api/doctors/{id}/follow-ups/pending", r.followUpHandler.ListPendingFollowUps)

	// Real-time queue update stream
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/doctors/{id}", r.sseHandler.StreamDoctorUpdates)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so cached responses also get CORS headers.

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	// Apply cache middleware if available
	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
