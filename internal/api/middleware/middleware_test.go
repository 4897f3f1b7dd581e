package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/septic-booking-service/internal/domain"
	"github.com/m04kA/septic-booking-service/pkg/logger"
)

func TestAuth(t *testing.T) {
	var got domain.Actor
	h := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := GetActor(r.Context())
		require.True(t, ok)
		got = actor
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		id     string
		role   string
		status int
	}{
		{"valid", "10", "Customer", http.StatusNoContent},
		{"missing id", "", "customer", http.StatusUnauthorized},
		{"negative id", "-5", "customer", http.StatusUnauthorized},
		{"unknown role", "10", "admin", http.StatusUnauthorized},
		{"missing role", "10", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(HeaderUserID, tt.id)
			req.Header.Set(HeaderUserRole, tt.role)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	assert.Equal(t, domain.Actor{ID: 10, Role: domain.RoleCustomer}, got)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	existing := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, existing)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, existing, seen)
}

type observed struct {
	method, route string
	status        int
}

type fakeHTTPMetrics struct {
	mu   sync.Mutex
	seen []observed
}

func (f *fakeHTTPMetrics) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, observed{method, route, status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &fakeHTTPMetrics{}
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/43", nil))

	require.Len(t, m.seen, 2)
	assert.Equal(t, observed{http.MethodGet, "/bookings/{bookingId}", http.StatusNotFound}, m.seen[0])
	assert.Equal(t, m.seen[0], m.seen[1])
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2)
	h := Auth(limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	send := func(userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(HeaderUserID, userID)
		req.Header.Set(HeaderUserRole, "customer")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("1"))
	assert.Equal(t, http.StatusOK, send("1"))
	assert.Equal(t, http.StatusTooManyRequests, send("1"))

	// Лимит у каждого участника свой
	assert.Equal(t, http.StatusOK, send("2"))
}

func TestRateLimiter_SweepIdle(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(0.001, 1)
	limiter.now = func() time.Time { return now }

	req := func(userID int64) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		return r.WithContext(WithActor(r.Context(), domain.Actor{ID: userID, Role: domain.RoleCustomer}))
	}

	assert.True(t, limiter.getLimiter(clientKey(req(1))).Allow())
	now = now.Add(20 * time.Minute)
	assert.True(t, limiter.getLimiter(clientKey(req(2))).Allow())

	assert.Equal(t, 1, limiter.Sweep(10*time.Minute))
	assert.Equal(t, 0, limiter.Sweep(10*time.Minute))

	_, ok := limiter.limiters.Load("actor:1")
	assert.False(t, ok)

	// Активный участник сохраняет свой лимит
	assert.False(t, limiter.getLimiter(clientKey(req(2))).Allow())
	// Удалённый получает новый
	assert.True(t, limiter.getLimiter(clientKey(req(1))).Allow())
}

func TestAccessLog_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, zerolog.InfoLevel, nil)

	r := mux.NewRouter()
	r.Use(RequestID, AccessLog(log))
	r.Handle("/bookings/{bookingId}", Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))

	req := httptest.NewRequest(http.MethodGet, "/bookings/7", nil)
	req.Header.Set(HeaderUserID, "10")
	req.Header.Set(HeaderUserRole, "customer")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, rec.Header().Get(HeaderRequestID), entry["request_id"])
	assert.Equal(t, "warn", entry["level"])
	assert.Contains(t, entry["message"], "GET /bookings/7 - 404")
}
