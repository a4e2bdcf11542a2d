package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/clinicamia/agenda-service/internal/application/services"
	"github.com/clinicamia/agenda-service/internal/domain/entities"
	"github.com/clinicamia/agenda-service/internal/infrastructure/clients/agendaapi"
	"github.com/clinicamia/agenda-service/internal/infrastructure/observability"
	"github.com/clinicamia/agenda-service/pkg/config"
)

// queue-watch tails one doctor's daily queue, polling the agenda API on a
// fixed interval and printing a summary whenever the schedule changes.
func main() {
	doctorID := flag.String("doctor", "", "doctor ID to watch")
	flag.Parse()

	if *doctorID == "" {
		log.Fatal("usage: queue-watch -doctor <id>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger("queue-watch", os.Getenv("ENVIRONMENT"))
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := agendaapi.NewClient(cfg.Agenda.BaseURL)
	watcher := services.NewQueueWatcherService(client, *doctorID, cfg.Agenda.PollInterval)

	watcher.OnUpdate(func(queue *entities.DailyQueue) {
		next := "none"
		if queue.NextUpcoming != nil {
			next = queue.NextUpcoming.StartClock()
		}
		logger.Info().
			Str("doctor_id", queue.DoctorID).
			Str("date", queue.Date).
			Int("appointments", len(queue.Ordered)).
			Int("completed", queue.CompletedCount).
			Str("next_upcoming", next).
			Msg("queue updated")
	})

	watcher.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("queue watcher stopped")
}
