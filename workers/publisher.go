package workers

import (
	"context"
	"log"

	"coding-edu-platform/services"
)

// InlinePublisher evaluates badges on the request goroutine. Used when no
// REDIS_URL is configured.
type InlinePublisher struct {
	Badges *services.BadgeService
}

func NewInlinePublisher(badges *services.BadgeService) *InlinePublisher {
	return &InlinePublisher{Badges: badges}
}

func (p *InlinePublisher) Publish(ctx context.Context, ev services.ProgressEvent) error {
	awarded, err := p.Badges.AutoAwardBadges(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if len(awarded) > 0 {
		log.Printf("🎉 [EVENTS] %s earned %d badge(s) after %s", ev.UserID, len(awarded), ev.Kind)
	}
	return nil
}
