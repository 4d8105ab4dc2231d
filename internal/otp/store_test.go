package otp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/consultsite/internal/mocks"
)

func newTestStore(clock *fakeClock, ttl time.Duration) *Store {
	provider := mocks.NewMockAuthProvider()
	s := NewStore(func(id string) *Flow {
		return NewFlow(id, provider, WithClock(clock.Now))
	}, ttl)
	s.nowF = clock.Now
	return s
}

func TestStore_GetOrCreate(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(clock, time.Minute)

	f, created := s.GetOrCreate("")
	require.True(t, created)
	require.NotEmpty(t, f.ID())

	again, created := s.GetOrCreate(f.ID())
	assert.False(t, created)
	assert.Same(t, f, again)

	other, created := s.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, "unknown-id", other.ID())
	assert.Equal(t, 2, s.Len())
}

func TestStore_IdleExpiry(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(clock, time.Minute)

	f, _ := s.GetOrCreate("")

	clock.Advance(50 * time.Second)
	_, ok := s.Get(f.ID())
	require.True(t, ok, "touch keeps the flow alive")

	clock.Advance(50 * time.Second)
	_, ok = s.Get(f.ID())
	require.True(t, ok)

	clock.Advance(61 * time.Second)
	_, ok = s.Get(f.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Sweep(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(clock, time.Minute)

	old, _ := s.GetOrCreate("")
	clock.Advance(45 * time.Second)
	fresh, _ := s.GetOrCreate("")
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	_, ok := s.Get(old.ID())
	assert.False(t, ok)
	_, ok = s.Get(fresh.ID())
	assert.True(t, ok)
}

func TestStore_NoTTL(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(clock, 0)

	f, _ := s.GetOrCreate("")
	clock.Advance(24 * time.Hour)

	assert.Equal(t, 0, s.Sweep())
	_, ok := s.Get(f.ID())
	assert.True(t, ok)
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(newFakeClock(), time.Minute)
	f, _ := s.GetOrCreate("")

	s.Delete(f.ID())
	_, ok := s.Get(f.ID())
	assert.False(t, ok)
}

func TestStore_RunStopsWithContext(t *testing.T) {
	s := newTestStore(newFakeClock(), time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
