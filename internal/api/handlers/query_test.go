package handlers

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListFilter(t *testing.T) {
	loc := time.FixedZone("PHT", 8*60*60)

	t.Run("empty", func(t *testing.T) {
		f, err := ParseListFilter(url.Values{}, loc)
		require.NoError(t, err)
		assert.Nil(t, f.StartDate)
		assert.Nil(t, f.EndDate)
		assert.Nil(t, f.Status)
		assert.False(t, f.IncludeInactive)
	})

	t.Run("single date", func(t *testing.T) {
		f, err := ParseListFilter(url.Values{"date": {"2025-06-01"}}, loc)
		require.NoError(t, err)
		require.NotNil(t, f.StartDate)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, loc), *f.StartDate)
		assert.Equal(t, *f.StartDate, *f.EndDate)
	})

	t.Run("range and status", func(t *testing.T) {
		f, err := ParseListFilter(url.Values{
			"from":            {"2025-06-01"},
			"to":              {"2025-06-30"},
			"status":          {"completed"},
			"includeInactive": {"true"},
		}, loc)
		require.NoError(t, err)
		assert.Equal(t, 1, f.StartDate.Day())
		assert.Equal(t, 30, f.EndDate.Day())
		assert.Equal(t, "completed", *f.Status)
		assert.True(t, f.IncludeInactive)
	})

	for _, q := range []url.Values{
		{"date": {"01.06.2025"}},
		{"from": {"2025-13-01"}},
		{"to": {"tomorrow"}},
		{"includeInactive": {"maybe"}},
	} {
		_, err := ParseListFilter(q, loc)
		assert.Error(t, err, q.Encode())
	}
}

func TestParseOptionalInt64(t *testing.T) {
	v, err := ParseOptionalInt64("")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = ParseOptionalInt64("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), *v)

	_, err = ParseOptionalInt64("0")
	assert.Error(t, err)

	_, err = ParseOptionalInt64("abc")
	assert.Error(t, err)
}
