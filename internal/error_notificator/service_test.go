package error_notificator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	userID  string
	details string
}

type recordingInfra struct {
	calls []sent
}

func (r *recordingInfra) Notify(_ context.Context, userID string, _ error, details string) error {
	r.calls = append(r.calls, sent{userID: userID, details: details})
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(window time.Duration) (*Service, *recordingInfra, *fakeClock) {
	infra := &recordingInfra{}
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	s := NewServiceWithWindow(infra, window)
	s.now = clock.now
	return s, infra, clock
}

func TestServiceSuppressesRepeats(t *testing.T) {
	s, infra, clock := newTestService(time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Notify(ctx, "bob", boom, "Ошибка LLM"))
		clock.advance(10 * time.Second)
	}
	require.Len(t, infra.calls, 1)
	assert.Equal(t, "Ошибка LLM", infra.calls[0].details)

	clock.advance(time.Minute)
	require.NoError(t, s.Notify(ctx, "bob", boom, "Ошибка LLM"))
	require.Len(t, infra.calls, 2)
	assert.Equal(t, "Ошибка LLM (ещё 2 раз за последние 1m0s)", infra.calls[1].details)
}

func TestServiceKeysByUserAndDetails(t *testing.T) {
	s, infra, _ := newTestService(time.Minute)
	ctx := context.Background()
	boom := errors.New("boom")

	require.NoError(t, s.Notify(ctx, "bob", boom, "Ошибка LLM"))
	require.NoError(t, s.Notify(ctx, "alice", boom, "Ошибка LLM"))
	require.NoError(t, s.Notify(ctx, "bob", boom, "Ошибка записи истории"))

	assert.Equal(t, []sent{
		{"bob", "Ошибка LLM"},
		{"alice", "Ошибка LLM"},
		{"bob", "Ошибка записи истории"},
	}, infra.calls)
}

func TestServiceZeroWindowForwardsEverything(t *testing.T) {
	s, infra, _ := newTestService(0)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Notify(context.Background(), "bob", errors.New("boom"), "x"))
	}
	assert.Len(t, infra.calls, 3)
}
