// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartLevelReconciler runs ReconcileLevels every interval until ctx is done.
func (s *ProgressionService) StartLevelReconciler(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			fixed, err := s.ReconcileLevels(ctx)
			if err != nil {
				log.Printf("[SCHEDULER] level reconcile failed: %v", err)
				return
			}
			if fixed > 0 {
				log.Printf("✅ [SCHEDULER] repaired level of %d users", fixed)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	go func() {
		<-ctx.Done()
		if err := sched.Shutdown(); err != nil {
			log.Printf("[SCHEDULER] shutdown: %v", err)
		}
	}()
	return sched, nil
}
