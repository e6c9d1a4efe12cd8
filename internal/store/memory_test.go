package store

import (
	"context"
	"testing"

	"github.com/anna-julia-wojcik/ztp-grupa-16/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_LatestAndRetention(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, s.LoadReport(ctx, domain.Report{RunID: id, Source: "2015.xlsx"}))
	}
	require.NoError(t, s.LoadReport(ctx, domain.Report{RunID: "run-1", Source: "2014.xlsx"}))

	latest, err := s.Latest("2015.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "run-3", latest.RunID)

	history, err := s.History("2015.xlsx")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "run-2", history[0].RunID)

	assert.Equal(t, []string{"2014.xlsx", "2015.xlsx"}, s.Sources())
}

func TestMemoryStore_DefaultKeepsLatestOnly(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.LoadReport(ctx, domain.Report{RunID: "a", Source: "x"}))
	require.NoError(t, s.LoadReport(ctx, domain.Report{RunID: "b", Source: "x"}))

	history, err := s.History("x")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "b", history[0].RunID)
}

func TestMemoryStore_NotFound(t *testing.T) {
	s := NewMemoryStore(1)

	_, err := s.Latest("missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.History("missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, s.Sources())
	assert.Equal(t, "memory", s.Name())
}
