package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/resilience"
)

type failingSource struct{}

func (failingSource) Find(context.Context, int) (catalog.Item, error) {
	return catalog.Item{}, errors.New("connection refused")
}

func newService(t *testing.T, cache *catalog.Cache) *catalog.Service {
	t.Helper()
	src, err := catalog.NewMemorySource(catalog.DefaultItems())
	require.NoError(t, err)
	svc, err := catalog.NewService(catalog.ServiceConfig{Source: src, Cache: cache})
	require.NoError(t, err)
	return svc
}

func TestLookup(t *testing.T) {
	svc := newService(t, nil)

	item, err := svc.Lookup(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, "Milk", item.Description)
	require.Equal(t, 6, item.VATPercent)

	_, err = svc.Lookup(context.Background(), 99)
	require.ErrorIs(t, err, catalog.ErrItemNotFound)
}

func TestLookupUnavailable(t *testing.T) {
	svc, err := catalog.NewService(catalog.ServiceConfig{Source: failingSource{}})
	require.NoError(t, err)
	_, err = svc.Lookup(context.Background(), 1)
	require.ErrorIs(t, err, catalog.ErrUnavailable)
}

func TestLookupReadsThroughCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := newService(t, catalog.NewCache(client, time.Minute, "pos:"))
	_, err = svc.Lookup(context.Background(), 2)
	require.NoError(t, err)
	require.True(t, mr.Exists("pos:catalog:item:2"))

	// A cached entry wins over the source.
	require.NoError(t, mr.Set("pos:catalog:item:2", `{"id":2,"description":"Cached","unitPrice":"1","vatPercent":0}`))
	item, err := svc.Lookup(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, "Cached", item.Description)
	require.True(t, item.UnitPrice.Equal(decimal.NewFromInt(1)))

	cache := catalog.NewCache(client, time.Minute, "pos:")
	mr.Del("pos:catalog:item:2")
	_, ok, err := cache.Get(context.Background(), 2)
	require.NoError(t, err)
	require.False(t, ok)
	item, err = svc.Lookup(context.Background(), 2)
	require.NoError(t, err)
	require.NotEqual(t, "Cached", item.Description)
}

func TestNewMemorySourceRejectsInvalid(t *testing.T) {
	_, err := catalog.NewMemorySource([]catalog.Item{{ID: 1, Description: " ", UnitPrice: decimal.NewFromInt(1)}})
	require.ErrorIs(t, err, catalog.ErrInvalidItem)

	dup := catalog.DefaultItems()[:1]
	dup = append(dup, dup[0])
	_, err = catalog.NewMemorySource(dup)
	require.ErrorIs(t, err, catalog.ErrInvalidItem)
}

func TestItemHandler(t *testing.T) {
	handler := catalog.NewHandler(catalog.HandlerConfig{Service: newService(t, nil)})
	r := chi.NewRouter()
	r.Get("/api/v1/items/{id}", handler.Item)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/items/1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data catalog.Item `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "Apple", body.Data.Description)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/items/42", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Contains(t, rr.Body.String(), "ITEM_NOT_FOUND")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/items/abc", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGuardedSourceFailsFast(t *testing.T) {
	breaker := resilience.NewBreaker(1, time.Minute)
	svc, err := catalog.NewService(catalog.ServiceConfig{Source: catalog.GuardedSource{Source: failingSource{}, Breaker: breaker}})
	require.NoError(t, err)

	_, err = svc.Lookup(context.Background(), 1)
	require.ErrorIs(t, err, catalog.ErrUnavailable)
	require.Equal(t, resilience.Open, breaker.State())

	_, err = svc.Lookup(context.Background(), 1)
	require.ErrorIs(t, err, catalog.ErrUnavailable)
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
}

func TestGuardedSourceNotFoundDoesNotTrip(t *testing.T) {
	source, err := catalog.NewMemorySource(catalog.DefaultItems())
	require.NoError(t, err)
	breaker := resilience.NewBreaker(1, time.Minute)
	guarded := catalog.GuardedSource{Source: source, Breaker: breaker}

	_, err = guarded.Find(context.Background(), 99)
	require.ErrorIs(t, err, catalog.ErrItemNotFound)
	require.Equal(t, resilience.Closed, breaker.State())
}
