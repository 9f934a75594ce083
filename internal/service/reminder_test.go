package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler() (*ReminderScheduler, *mockChatRepo, *fakeClock) {
	chat := &mockChatRepo{}
	clock := &fakeClock{}
	s := NewReminderScheduler(chat, nil, zap.NewNop()).WithTimerFunc(clock.After)
	return s, chat, clock
}

func TestReminderScheduler_FiresOnce(t *testing.T) {
	s, chat, clock := newTestScheduler()

	require.True(t, s.Schedule("C1", "1.1", "U1", 10*time.Second))
	assert.True(t, s.Pending("1.1"))
	require.Len(t, clock.Timers(), 1)
	assert.Equal(t, 10*time.Second, clock.Timers()[0].delay)

	clock.FireAll()
	clock.Timers()[0].fn() // a late duplicate callback must not nudge twice

	nudges := chat.PostsOf("ephemeral")
	require.Len(t, nudges, 1)
	assert.Equal(t, "C1", nudges[0].channel)
	assert.Equal(t, "U1", nudges[0].user)
	assert.Equal(t, "<@U1>, this urgent message has not been replied to in the last 10 seconds. Please follow up!", nudges[0].text)
	assert.False(t, s.Pending("1.1"))
}

func TestReminderScheduler_CancelBeforeFire(t *testing.T) {
	s, chat, clock := newTestScheduler()

	s.Schedule("C1", "1.1", "U1", 10*time.Second)
	assert.True(t, s.Cancel("1.1"))
	assert.False(t, s.Pending("1.1"))
	assert.True(t, clock.Timers()[0].stopped)

	// even if the timer callback sneaks through, the cancelled state wins
	clock.Timers()[0].fn()
	assert.Empty(t, chat.Posts())

	assert.False(t, s.Cancel("1.1"), "second cancel is a no-op")
}

func TestReminderScheduler_CancelAfterFire(t *testing.T) {
	s, chat, clock := newTestScheduler()

	s.Schedule("C1", "1.1", "U1", time.Second)
	clock.FireAll()
	assert.False(t, s.Cancel("1.1"))
	assert.Len(t, chat.Posts(), 1)
}

func TestReminderScheduler_AtMostOnePerTS(t *testing.T) {
	s, _, clock := newTestScheduler()

	assert.True(t, s.Schedule("C1", "1.1", "U1", time.Second))
	assert.False(t, s.Schedule("C1", "1.1", "U1", time.Second))
	assert.True(t, s.Schedule("C1", "2.2", "U1", time.Second))
	assert.Len(t, clock.Timers(), 2)
}

func TestReminderScheduler_CancelOnReplyIgnoresAuthor(t *testing.T) {
	s, _, _ := newTestScheduler()

	s.Schedule("C1", "1.1", "U1", time.Second)
	assert.False(t, s.CancelOnReply("1.1", "U1"))
	assert.True(t, s.Pending("1.1"))
	assert.True(t, s.CancelOnReply("1.1", "U2"))
	assert.False(t, s.Pending("1.1"))
}

func TestReminderScheduler_Stop(t *testing.T) {
	s, chat, clock := newTestScheduler()

	s.Schedule("C1", "1.1", "U1", time.Second)
	s.Schedule("C1", "2.2", "U2", time.Second)
	s.Stop()

	assert.False(t, s.Pending("1.1"))
	assert.False(t, s.Pending("2.2"))
	clock.FireAll()
	assert.Empty(t, chat.Posts())
}

func TestReminderScheduler_FireCancelRace(t *testing.T) {
	for i := 0; i < 50; i++ {
		s, chat, clock := newTestScheduler()
		s.Schedule("C1", "1.1", "U1", time.Second)
		timer := clock.Timers()[0]

		var wg sync.WaitGroup
		var cancelled bool
		wg.Add(2)
		go func() { defer wg.Done(); timer.fn() }()
		go func() { defer wg.Done(); cancelled = s.Cancel("1.1") }()
		wg.Wait()

		if cancelled {
			assert.Empty(t, chat.Posts())
		} else {
			assert.Len(t, chat.Posts(), 1)
		}
		assert.False(t, s.Pending("1.1"))
	}
}

func TestReminderScheduler_RealTimer(t *testing.T) {
	chat := &mockChatRepo{}
	s := NewReminderScheduler(chat, nil, zap.NewNop())

	s.Schedule("C1", "1.1", "U1", 10*time.Millisecond)
	assert.Eventually(t, func() bool { return len(chat.Posts()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestHumanizeDelay(t *testing.T) {
	assert.Equal(t, "10 seconds", HumanizeDelay(10*time.Second))
	assert.Equal(t, "1 minute", HumanizeDelay(time.Minute))
	assert.Equal(t, "5 minutes", HumanizeDelay(5*time.Minute))
}
