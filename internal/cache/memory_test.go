package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(clockwork.NewFakeClock())

	require.NoError(t, m.Set(ctx, "reading_cache", []byte(`{"value":42}`), time.Minute))

	got, err := m.Get(ctx, "reading_cache")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"value":42}`), got)
}

func TestMemoryMissOnAbsentKey(t *testing.T) {
	m := NewMemory(clockwork.NewFakeClock())

	_, err := m.Get(context.Background(), "alerts_cache")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryExpiresAtTTL(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	m := NewMemory(clock)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 15*time.Minute))

	clock.Advance(15*time.Minute - time.Second)
	_, err := m.Get(ctx, "k")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	// The expired entry is gone even if the clock moves backwards again.
	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryOverwriteResetsTTL(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	m := NewMemory(clock)

	require.NoError(t, m.Set(ctx, "k", []byte("old"), time.Minute))
	clock.Advance(30 * time.Second)
	require.NoError(t, m.Set(ctx, "k", []byte("new"), time.Minute))

	clock.Advance(45 * time.Second)
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(clockwork.NewFakeClock())

	val := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", val, time.Minute))
	val[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}
