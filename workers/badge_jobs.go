// workers/badge_jobs.go
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"coding-edu-platform/services"

	"github.com/hibiken/asynq"
)

const (
	TypeProgressEvent = "progress:event"

	progressQueue      = "default"
	progressMaxRetry   = 3
	progressJobTimeout = 30 * time.Second
)

// BadgeJobManager moves badge evaluation off the request path through asynq.
// It is both the EventPublisher (client side) and the worker (server side).
type BadgeJobManager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	badges *services.BadgeService
}

func NewBadgeJobManager(redisURL string, badges *services.BadgeService) (*BadgeJobManager, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			progressQueue: 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("❌ [JOBS] task failed: type=%s error=%v", task.Type(), err)
		}),
		Logger: asynqLogger{},
	})

	jm := &BadgeJobManager{
		client: asynq.NewClient(redisOpt),
		server: server,
		mux:    asynq.NewServeMux(),
		badges: badges,
	}
	jm.mux.HandleFunc(TypeProgressEvent, jm.HandleProgressEvent)
	return jm, nil
}

// Publish enqueues the event for the worker.
func (jm *BadgeJobManager) Publish(ctx context.Context, ev services.ProgressEvent) error {
	task, err := NewProgressEventTask(ev)
	if err != nil {
		return err
	}
	info, err := jm.client.EnqueueContext(ctx, task,
		asynq.Queue(progressQueue),
		asynq.MaxRetry(progressMaxRetry),
		asynq.Timeout(progressJobTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue progress event: %w", err)
	}
	log.Printf("[JOBS] queued %s for %s (id=%s)", ev.Kind, ev.UserID, info.ID)
	return nil
}

func NewProgressEventTask(ev services.ProgressEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress event: %w", err)
	}
	return asynq.NewTask(TypeProgressEvent, payload), nil
}

// HandleProgressEvent is the asynq handler for TypeProgressEvent.
func (jm *BadgeJobManager) HandleProgressEvent(ctx context.Context, task *asynq.Task) error {
	var ev services.ProgressEvent
	if err := json.Unmarshal(task.Payload(), &ev); err != nil {
		return fmt.Errorf("failed to unmarshal progress event: %v: %w", err, asynq.SkipRetry)
	}
	if ev.UserID == "" {
		return fmt.Errorf("progress event without user: %w", asynq.SkipRetry)
	}

	awarded, err := jm.badges.AutoAwardBadges(ctx, ev.UserID)
	if errors.Is(err, services.ErrNotFound) {
		return fmt.Errorf("award badges for %s: %v: %w", ev.UserID, err, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("award badges for %s: %w", ev.UserID, err)
	}
	if len(awarded) > 0 {
		log.Printf("🎉 [JOBS] %s earned %d badge(s) after %s", ev.UserID, len(awarded), ev.Kind)
	}
	return nil
}

// Run starts the worker and blocks until ctx is cancelled.
func (jm *BadgeJobManager) Run(ctx context.Context) error {
	log.Println("🔁 [JOBS] Starting badge worker…")
	if err := jm.server.Start(jm.mux); err != nil {
		return err
	}
	<-ctx.Done()
	log.Println("[JOBS] Stopping badge worker…")
	jm.server.Shutdown()
	return jm.client.Close()
}

type asynqLogger struct{}

func (asynqLogger) Debug(args ...interface{}) {}

func (asynqLogger) Info(args ...interface{}) {
	log.Printf("[JOBS] %s", fmt.Sprint(args...))
}

func (asynqLogger) Warn(args ...interface{}) {
	log.Printf("⚠️  [JOBS] %s", fmt.Sprint(args...))
}

func (asynqLogger) Error(args ...interface{}) {
	log.Printf("❌ [JOBS] %s", fmt.Sprint(args...))
}

func (asynqLogger) Fatal(args ...interface{}) {
	log.Fatalf("❌ [JOBS] %s", fmt.Sprint(args...))
}
