package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdempotencyStore struct {
	data map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{data: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	f.data[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "bo:idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func newIdempotencyTestRouter(store *fakeIdempotencyStore, calls *int) http.Handler {
	r := chi.NewRouter()
	r.Use(Idempotency(store, nil))
	r.Post("/api/v1/orders/{orderID}/capture", func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"data":{"call":%d}}`, *calls)
	})
	r.Get("/api/v1/wallets/{ownerID}/balance", func(w http.ResponseWriter, _ *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestIdempotency_ReplayReturnsStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	router := newIdempotencyTestRouter(store, &calls)

	body := `{"amount":"50.00"}`
	first := httptest.NewRequest(http.MethodPost, "/api/v1/orders/9/capture", strings.NewReader(body))
	first.Header.Set("Idempotency-Key", "key-1")
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, first)
	require.Equal(t, http.StatusOK, rec1.Code)
	require.Equal(t, 1, calls)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/orders/9/capture", strings.NewReader(body))
	second.Header.Set("Idempotency-Key", "key-1")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, second)

	assert.Equal(t, 1, calls, "handler must not run again on replay")
	assert.Equal(t, rec1.Body.String(), rec2.Body.String())
	assert.Equal(t, "application/json", rec2.Header().Get("Content-Type"))
}

func TestIdempotency_KeyReuseWithDifferentBodyConflicts(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	router := newIdempotencyTestRouter(store, &calls)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/orders/9/capture", strings.NewReader(`{"amount":"50.00"}`))
	first.Header.Set("Idempotency-Key", "key-1")
	router.ServeHTTP(httptest.NewRecorder(), first)
	require.Equal(t, 1, calls)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/orders/9/capture", strings.NewReader(`{"amount":"999.00"}`))
	second.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, second)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestIdempotency_MissingKeyRejected(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	router := newIdempotencyTestRouter(store, &calls)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/9/capture", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Zero(t, calls)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdempotency_UncoveredRoutesPassThrough(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	router := newIdempotencyTestRouter(store, &calls)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallets/3/balance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.data, "reads are never recorded")
}
