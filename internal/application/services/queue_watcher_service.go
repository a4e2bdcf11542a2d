package services

import (
	"context"
	"sync"
	"time"

	"github.com/clinicamia/agenda-service/internal/domain/entities"
	"github.com/clinicamia/agenda-service/internal/infrastructure/clients/agendaapi"
	"github.com/clinicamia/agenda-service/internal/infrastructure/observability"
)

// QueueWatcherService polls a doctor's daily queue on a fixed interval and
// keeps the last good snapshot when a fetch fails, so consumers always see
// stale-but-available data rather than an empty view.
type QueueWatcherService struct {
	client   agendaapi.Client
	doctorID string
	interval time.Duration

	mu           sync.RWMutex
	snapshot     *entities.DailyQueue
	lastChecksum string
	lastError    error
	lastFetch    time.Time

	onUpdate func(*entities.DailyQueue)
}

// NewQueueWatcherService creates a watcher for one doctor's queue
func NewQueueWatcherService(client agendaapi.Client, doctorID string, interval time.Duration) *QueueWatcherService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &QueueWatcherService{
		client:   client,
		doctorID: doctorID,
		interval: interval,
	}
}

// OnUpdate registers a callback invoked after every successful refresh
// that produced a changed snapshot. Must be called before Start.
func (s *QueueWatcherService) OnUpdate(fn func(*entities.DailyQueue)) {
	s.onUpdate = fn
}

// Snapshot returns the last successful snapshot and the error from the most
// recent fetch attempt, if any
func (s *QueueWatcherService) Snapshot() (*entities.DailyQueue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.lastError
}

// LastFetch returns the instant of the most recent successful fetch
func (s *QueueWatcherService) LastFetch() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFetch
}

// Stale reports whether the held snapshot outlived the last fetch attempt,
// meaning data is being served from before a fetch failure
func (s *QueueWatcherService) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil && s.lastError != nil
}

// Refresh performs one full re-fetch. The checksum endpoint is consulted
// first so an unchanged schedule skips the heavier queue fetch.
func (s *QueueWatcherService) Refresh(ctx context.Context) error {
	logger := observability.LoggerFromContext(ctx)

	checksum, err := s.client.GetScheduleChecksum(ctx, s.doctorID)
	if err == nil {
		s.mu.RLock()
		unchanged := s.snapshot != nil && checksum == s.lastChecksum
		s.mu.RUnlock()
		if unchanged {
			s.recordResult(nil)
			return nil
		}
	} else {
		logger.Warn().Err(err).Str("doctor_id", s.doctorID).Msg("checksum fetch failed, fetching full queue")
	}

	queue, err := s.client.GetDailyQueue(ctx, s.doctorID)
	if err != nil {
		// Keep the previous snapshot; the next tick retries
		logger.Warn().Err(err).Str("doctor_id", s.doctorID).Msg("queue fetch failed, keeping last snapshot")
		s.recordResult(err)
		return err
	}

	s.mu.Lock()
	s.snapshot = queue
	s.lastChecksum = queue.Checksum
	s.lastError = nil
	s.lastFetch = time.Now()
	callback := s.onUpdate
	s.mu.Unlock()

	if callback != nil {
		callback(queue)
	}

	return nil
}

func (s *QueueWatcherService) recordResult(err error) {
	s.mu.Lock()
	s.lastError = err
	if err == nil {
		s.lastFetch = time.Now()
	}
	s.mu.Unlock()
}

// Start launches the polling loop in a background goroutine. The loop does
// an immediate refresh, then ticks at the configured interval until the
// context is cancelled.
func (s *QueueWatcherService) Start(ctx context.Context) {
	logger := observability.GetLogger()

	if err := s.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Str("doctor_id", s.doctorID).Msg("initial queue refresh failed")
	}

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				logger.Info().Str("doctor_id", s.doctorID).Msg("stopping queue watcher")
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					logger.Warn().Err(err).Str("doctor_id", s.doctorID).Msg("periodic queue refresh failed")
				}
			}
		}
	}()
	logger.Info().Str("doctor_id", s.doctorID).Dur("interval", s.interval).Msg("started queue watcher")
}
