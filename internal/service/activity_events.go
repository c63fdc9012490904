package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/scholarship-api/internal/models"
)

// Activity event types.
const (
	EventActivitySubmitted = "activity.submitted"
	EventActivityReviewed  = "activity.reviewed"
)

// ActivityEvent is the payload broadcast when an activity changes.
type ActivityEvent struct {
	ID           string                `json:"id"`
	Type         string                `json:"type"`
	ActivityID   uint                  `json:"activity_id"`
	ScholarID    uint                  `json:"scholar_id"`
	Status       models.ActivityStatus `json:"status"`
	Hours        float64               `json:"hours"`
	ActivityDate string                `json:"activity_date"`
	ReviewerID   *uint                 `json:"reviewer_id,omitempty"`
	OccurredAt   time.Time             `json:"occurred_at"`
}

// ActivityEventPublisher broadcasts activity events to other systems.
type ActivityEventPublisher interface {
	Publish(ctx context.Context, event ActivityEvent) error
}

type brokerEventPublisher struct {
	nats    *nats.Conn
	redis   *redis.Client
	subject string
	channel string
}

// NewActivityEventPublisher publishes on NATS and Redis pub/sub, whichever is
// configured. With neither, events are dropped.
func NewActivityEventPublisher(natsConn *nats.Conn, redisClient *redis.Client, subject string) ActivityEventPublisher {
	if subject == "" {
		subject = "scholarship.activities"
	}
	return &brokerEventPublisher{
		nats:    natsConn,
		redis:   redisClient,
		subject: subject,
		channel: subject,
	}
}

func (p *brokerEventPublisher) Publish(ctx context.Context, event ActivityEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.nats != nil {
		if err := p.nats.Publish(p.subject+"."+event.Type, payload); err != nil {
			errs = append(errs, err)
		}
	}
	if p.redis != nil {
		if err := p.redis.Publish(ctx, p.channel, payload).Err(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func newActivityEvent(eventType string, activity models.Activity) ActivityEvent {
	return ActivityEvent{
		Type:         eventType,
		ActivityID:   activity.ID,
		ScholarID:    activity.ScholarID,
		Status:       activity.Status,
		Hours:        activity.Hours,
		ActivityDate: activity.ActivityDate.Format("2006-01-02"),
		ReviewerID:   activity.ReviewedBy,
	}
}

// publishActivityEvent logs publish failures; events never fail the caller.
func publishActivityEvent(ctx context.Context, publisher ActivityEventPublisher, logger zerolog.Logger, event ActivityEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", event.Type).Uint("activity_id", event.ActivityID).Msg("failed to publish activity event")
	}
}
