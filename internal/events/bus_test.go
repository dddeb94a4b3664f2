package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/events"
)

type captureStore struct {
	events []events.Event
	err    error
}

func (c *captureStore) Append(_ context.Context, event events.Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitPersistsAndNotifies(t *testing.T) {
	store := &captureStore{}
	notifier := &captureNotifier{}
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	bus := events.Bus{
		Store:     store,
		Notifiers: []events.Notifier{notifier},
		Now:       func() time.Time { return fixed },
	}

	aggregate := uuid.New()
	event, err := bus.Emit(context.Background(), events.TopicSaleCompleted, aggregate, events.SaleCompleted{SaleID: aggregate.String(), Total: "43.60"})
	require.NoError(t, err)
	require.Equal(t, fixed, event.OccurredAt)
	require.Len(t, store.events, 1)
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, notifier.events[0].ID)

	var decoded events.SaleCompleted
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "43.60", decoded.Total)
}

func TestEmitContinuesAfterNotifierFailure(t *testing.T) {
	failing := &captureNotifier{err: errors.New("boom")}
	after := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{failing, nil, after}}

	_, err := bus.Emit(context.Background(), events.TopicSaleCompleted, uuid.New(), nil)
	require.ErrorContains(t, err, "boom")
	require.Len(t, after.events, 1)
}

func TestEmitStoreFailureStopsDispatch(t *testing.T) {
	notifier := &captureNotifier{}
	bus := events.Bus{Store: &captureStore{err: errors.New("down")}, Notifiers: []events.Notifier{notifier}}

	_, err := bus.Emit(context.Background(), events.TopicSaleCompleted, uuid.New(), nil)
	require.Error(t, err)
	require.Empty(t, notifier.events)
}

func TestEmitValidatesInput(t *testing.T) {
	bus := events.Bus{}
	_, err := bus.Emit(context.Background(), " ", uuid.New(), nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicSaleCompleted, uuid.Nil, nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicSaleCompleted, uuid.New(), "{not json")
	require.Error(t, err)
}

func TestRedisStoreAppendsToStream(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bus := events.Bus{Store: events.RedisStore{Client: client, Stream: "pos:test:events"}}
	_, err = bus.Emit(context.Background(), events.TopicSaleCompleted, uuid.New(), map[string]any{"total": "1.00"})
	require.NoError(t, err)

	entries, err := client.XRange(context.Background(), "pos:test:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, events.TopicSaleCompleted, entries[0].Values["topic"])
	require.JSONEq(t, `{"total":"1.00"}`, entries[0].Values["payload"].(string))
}
