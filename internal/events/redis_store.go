package events

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore appends events to a capped Redis stream.
type RedisStore struct {
	Client *redis.Client
	Stream string
	MaxLen int64
}

// Append implements EventStore.
func (s RedisStore) Append(ctx context.Context, event Event) error {
	if s.Client == nil {
		return nil
	}
	stream := s.Stream
	if stream == "" {
		stream = "pos:events"
	}
	args := &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"id":          event.ID.String(),
			"topic":       event.Topic,
			"aggregateId": event.AggregateID.String(),
			"payload":     string(event.Payload),
			"occurredAt":  event.OccurredAt.UTC().Format(time.RFC3339Nano),
		},
	}
	if s.MaxLen > 0 {
		args.MaxLen = s.MaxLen
		args.Approx = true
	}
	return s.Client.XAdd(ctx, args).Err()
}
