package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/septic-booking-service/internal/domain"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrProofRequired, http.StatusBadRequest},
		{domain.ErrNotOwner, http.StatusForbidden},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrSlotUnavailable, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFromError(tt.err), tt.err.Error())
	}
}

func TestRespondDomainError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondDomainError(rec, domain.ErrStoreUnavailable, "should not leak")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, msgStoreUnavailable, body.Message)

	rec = httptest.NewRecorder()
	RespondDomainError(rec, domain.ErrSlotUnavailable, "слот занят")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "слот занят")
	assert.Equal(t, contentTypeJSON, rec.Header().Get(contentTypeHeader))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "x", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	assert.Error(t, DecodeJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, DecodeJSON(r, &dst))
}

func TestPathInt64(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": "42"})
	id, err := PathInt64(r, "bookingId")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	r = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": "-1"})
	_, err = PathInt64(r, "bookingId")
	assert.Error(t, err)

	r = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"bookingId": "abc"})
	_, err = PathInt64(r, "bookingId")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("PHT", 8*60*60)

	d, err := ParseDate("2025-06-01", loc)
	require.NoError(t, err)
	assert.Equal(t, loc, d.Location())
	assert.Equal(t, 1, d.Day())

	_, err = ParseDate("06/01/2025", loc)
	assert.Error(t, err)

	none, err := ParseOptionalDate("", loc)
	require.NoError(t, err)
	assert.Nil(t, none)
}
