package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ithesk/qraxer/internal/qraxer/store/kv"
	"github.com/ithesk/qraxer/internal/testutil/redistest"
)

func exercise(t *testing.T, s kv.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "a")
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Set(ctx, "a", []byte("one"), 0))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []byte("one"), got)

	require.NoError(t, s.Set(ctx, "a", []byte("two"), time.Hour))
	got, err = s.Get(ctx, "a")
	require.NoError(t, err)
	require.Equal(t, []byte("two"), got)

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestMemory(t *testing.T) {
	exercise(t, kv.NewMemory())
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := kv.NewMemory().WithClock(func() time.Time { return now })

	require.NoError(t, m.Set(ctx, "short", []byte("x"), time.Minute))
	require.NoError(t, m.Set(ctx, "long", []byte("y"), time.Hour))
	require.NoError(t, m.Set(ctx, "forever", []byte("z"), 0))

	now = now.Add(time.Minute)
	_, err := m.Get(ctx, "short")
	require.ErrorIs(t, err, kv.ErrNotFound)

	now = now.Add(2 * time.Hour)
	require.Equal(t, 1, m.Sweep())
	_, err = m.Get(ctx, "forever")
	require.NoError(t, err)
}

func TestMemoryGetKeepsReplacedEntry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var m *kv.Memory
	var onTick func()
	m = kv.NewMemory().WithClock(func() time.Time {
		if f := onTick; f != nil {
			onTick = nil
			f()
		}
		return now
	})

	require.NoError(t, m.Set(ctx, "k", []byte("stale"), time.Minute))
	now = now.Add(time.Minute)

	// A writer replaces the entry after Get saw the expired one.
	onTick = func() {
		require.NoError(t, m.Set(ctx, "k", []byte("fresh"), time.Hour))
	}
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("fresh"), got)

	got, err = m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("fresh"), got)
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := kv.NewMemory()
	v := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", v, 0))
	v[0] = 'X'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}

func TestRedis(t *testing.T) {
	client := redistest.Start(t)
	exercise(t, kv.NewRedis(client, "qraxer:test:"))
}
