package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/fsdcheck/pkg/errors"
	"github.com/matzehuels/fsdcheck/pkg/report"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close(ctx)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Save(ctx, &report.Report{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", got.ID)

	_, err = s.Get(ctx, "missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	list, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].ID, "newest first")
	assert.Equal(t, "b", list[1].ID)

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStoreReplace(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Save(ctx, &report.Report{ID: "a", Passed: false}))
	require.NoError(t, s.Save(ctx, &report.Report{ID: "a", Passed: true}))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.Passed)
	list, _ := s.List(ctx, 0)
	assert.Len(t, list, 1)
}
