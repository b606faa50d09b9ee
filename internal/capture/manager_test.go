package capture

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreateAndGet(t *testing.T) {
	t.Parallel()

	m := NewManager(5*time.Second, nil, nil)
	s := m.Create()

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerScheduleReset(t *testing.T) {
	t.Parallel()

	m := NewManager(10*time.Millisecond, nil, nil)
	s := m.Create()
	advanceTo(t, s, ScreenThankYou)

	m.ScheduleReset(s.ID())

	require.Eventually(t, func() bool {
		return s.Screen() == ScreenPreferences
	}, time.Second, 5*time.Millisecond, "thank-you timer should reset the session")
}

func TestManagerScheduleResetUnknownSession(t *testing.T) {
	t.Parallel()

	m := NewManager(time.Millisecond, nil, nil)
	// Must not panic.
	m.ScheduleReset(uuid.New())
}

func TestManagerPurge(t *testing.T) {
	t.Parallel()

	m := NewManager(5*time.Second, nil, nil)
	stale := m.Create()
	fresh := m.Create()

	time.Sleep(20 * time.Millisecond)
	fresh.SetLeadID(uuid.New()) // touch

	removed := m.Purge(10 * time.Millisecond)
	assert.Equal(t, 1, removed)

	_, err := m.Get(stale.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)
}
