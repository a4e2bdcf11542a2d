package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/clinicamia/agenda-service/internal/domain/entities"
	"github.com/clinicamia/agenda-service/internal/domain/providers"
	"github.com/clinicamia/agenda-service/internal/domain/repositories"
	"github.com/clinicamia/agenda-service/internal/infrastructure/observability"
)

// activeStatuses are the statuses a next-upcoming candidate may hold
var activeStatuses = map[entities.AppointmentStatus]bool{
	entities.AppointmentStatusScheduled: true,
	entities.AppointmentStatusConfirmed: true,
	entities.AppointmentStatusWaiting:   true,
}

// BuildDailyQueue derives the queue view from a snapshot of appointments.
// It is a pure function of (appointments, now): it never mutates its input
// and holds no state between calls, so every refresh recomputes the full
// view from scratch.
func BuildDailyQueue(doctorID string, date time.Time, appointments []*entities.Appointment, now time.Time) *entities.DailyQueue {
	ordered := make([]*entities.Appointment, len(appointments))
	copy(ordered, appointments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartMinutes < ordered[j].StartMinutes
	})

	queue := &entities.DailyQueue{
		DoctorID:     doctorID,
		Date:         date.Format("2006-01-02"),
		Ordered:      ordered,
		StatusCounts: make(map[entities.AppointmentStatus]int),
		GeneratedAt:  now,
	}

	nowMinutes := now.Hour()*60 + now.Minute()
	completed := 0

	for _, appt := range ordered {
		switch entities.PeriodFor(appt.StartMinutes) {
		case entities.PeriodMorning:
			queue.Periods.Morning = append(queue.Periods.Morning, appt)
		case entities.PeriodAfternoon:
			queue.Periods.Afternoon = append(queue.Periods.Afternoon, appt)
		case entities.PeriodEvening:
			queue.Periods.Evening = append(queue.Periods.Evening, appt)
		}

		queue.StatusCounts[appt.Status]++
		if appt.Status == entities.AppointmentStatusCompleted {
			completed++
		}

		if appt.Status == entities.AppointmentStatusInProgress {
			if queue.InProgress == nil {
				// Earliest wins; ordered is already sorted by start time
				queue.InProgress = appt
			} else {
				queue.Warnings = append(queue.Warnings, fmt.Sprintf(
					"multiple in-progress appointments for doctor %s: kept %s, ignored %s",
					doctorID, queue.InProgress.ID, appt.ID,
				))
			}
		}

		if queue.NextUpcoming == nil && activeStatuses[appt.Status] && appt.StartMinutes >= nowMinutes {
			queue.NextUpcoming = appt
		}
	}

	queue.CompletedCount = completed
	if len(ordered) > 0 {
		queue.ProgressRatio = float64(completed) / float64(len(ordered))
	}

	return queue
}

// ScheduleChecksum derives a cheap change-detection token from the snapshot
// summary. Pollers compare tokens between ticks and skip the full re-fetch
// when nothing changed.
func ScheduleChecksum(count int, lastUpdate time.Time) string {
	if count == 0 {
		return "empty"
	}
	return fmt.Sprintf("%d-%d", count, lastUpdate.UnixMilli())
}

// DailyQueueService serves derived daily queue views for doctors
type DailyQueueService struct {
	repo        repositories.AppointmentRepository
	cache       providers.CacheProvider
	location    *time.Location
	cacheTTL    time.Duration
	minDuration int
	maxDuration int
	now         func() time.Time
}

// NewDailyQueueService creates a new daily queue service. Non-positive
// duration bounds fall back to the entity defaults.
func NewDailyQueueService(
	repo repositories.AppointmentRepository,
	cache providers.CacheProvider,
	location *time.Location,
	cacheTTL time.Duration,
	minDuration, maxDuration int,
) *DailyQueueService {
	if minDuration <= 0 {
		minDuration = entities.MinAppointmentDuration
	}
	if maxDuration <= 0 {
		maxDuration = entities.MaxAppointmentDuration
	}
	return &DailyQueueService{
		repo:        repo,
		cache:       cache,
		location:    location,
		cacheTTL:    cacheTTL,
		minDuration: minDuration,
		maxDuration: maxDuration,
		now:         time.Now,
	}
}

// GetDailyQueue returns the derived queue for a doctor's current date
func (s *DailyQueueService) GetDailyQueue(ctx context.Context, doctorID string) (*entities.DailyQueue, error) {
	logger := observability.LoggerFromContext(ctx)
	now := s.now().In(s.location)
	cacheKey := s.queueCacheKey(doctorID, now)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			queue := &entities.DailyQueue{}
			if err := json.Unmarshal(data, queue); err == nil {
				return queue, nil
			}
			logger.Warn().Str("doctor_id", doctorID).Msg("corrupt cached queue, rebuilding")
		}
	}

	appointments, err := s.repo.ListByDoctorAndDate(ctx, doctorID, now)
	if err != nil {
		return nil, err
	}

	queue := BuildDailyQueue(doctorID, now, appointments, now)

	// Appointments come from an external booking system; a malformed
	// schedule is surfaced as a warning, never dropped from the queue
	for _, appt := range appointments {
		if err := appt.Validate(s.minDuration, s.maxDuration); err != nil {
			queue.Warnings = append(queue.Warnings, fmt.Sprintf(
				"appointment %s has an invalid schedule: %v", appt.ID, err))
		}
	}

	for _, warning := range queue.Warnings {
		logger.Warn().Str("doctor_id", doctorID).Msg(warning)
	}

	count, lastUpdate, err := s.repo.ScheduleSummary(ctx, doctorID, now, now)
	if err != nil {
		logger.Warn().Err(err).Str("doctor_id", doctorID).Msg("failed to derive schedule checksum")
	} else {
		queue.Checksum = ScheduleChecksum(count, lastUpdate)
	}

	if s.cache != nil {
		if data, err := json.Marshal(queue); err == nil {
			ttl := int(s.cacheTTL.Seconds())
			if ttl < 1 {
				ttl = 1
			}
			if err := s.cache.Set(ctx, cacheKey, data, ttl); err != nil {
				logger.Warn().Err(err).Str("doctor_id", doctorID).Msg("failed to cache daily queue")
			}
		}
	}

	return queue, nil
}

// GetScheduleChecksum returns the change-detection token for a doctor's
// schedule within [from, to]. Zero bounds default to today and today+30d.
func (s *DailyQueueService) GetScheduleChecksum(ctx context.Context, doctorID string, from, to time.Time) (string, error) {
	now := s.now().In(s.location)
	if from.IsZero() {
		from = now
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, 30)
	}
	count, lastUpdate, err := s.repo.ScheduleSummary(ctx, doctorID, from, to)
	if err != nil {
		return "", err
	}
	return ScheduleChecksum(count, lastUpdate), nil
}

// InvalidateQueue drops the cached view for a doctor's current date. Called
// after every successful transition so the next read rebuilds from storage.
func (s *DailyQueueService) InvalidateQueue(ctx context.Context, doctorID string) {
	if s.cache == nil {
		return
	}
	now := s.now().In(s.location)
	if err := s.cache.Delete(ctx, s.queueCacheKey(doctorID, now)); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("doctor_id", doctorID).Msg("failed to invalidate queue cache")
	}
}

func (s *DailyQueueService) queueCacheKey(doctorID string, now time.Time) string {
	return fmt.Sprintf("queue:doctor:%s:%s", doctorID, now.Format("2006-01-02"))
}
