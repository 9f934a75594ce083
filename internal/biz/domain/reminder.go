package domain

import (
	"sync/atomic"
	"time"
)

// ReminderState is the lifecycle state of a pending reminder
type ReminderState int32

const (
	ReminderPending ReminderState = iota
	ReminderFired
	ReminderCancelled
)

func (s ReminderState) String() string {
	switch s {
	case ReminderPending:
		return "pending"
	case ReminderFired:
		return "fired"
	case ReminderCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Reminder is a one-shot nudge for an urgent message that nobody answered.
// It leaves the pending state exactly once: either it fires or it is cancelled.
type Reminder struct {
	ID        string
	Channel   string
	MessageTS string
	User      string
	Delay     time.Duration
	CreatedAt time.Time

	state atomic.Int32
}

// NewReminder creates a reminder in the pending state
func NewReminder(id, channel, messageTS, user string, delay time.Duration) *Reminder {
	return &Reminder{
		ID:        id,
		Channel:   channel,
		MessageTS: messageTS,
		User:      user,
		Delay:     delay,
		CreatedAt: time.Now(),
	}
}

// State returns the current state
func (r *Reminder) State() ReminderState {
	return ReminderState(r.state.Load())
}

// Fire moves pending -> fired. Returns false if the reminder was already resolved.
func (r *Reminder) Fire() bool {
	return r.state.CompareAndSwap(int32(ReminderPending), int32(ReminderFired))
}

// Cancel moves pending -> cancelled. Returns false if the reminder was already resolved.
func (r *Reminder) Cancel() bool {
	return r.state.CompareAndSwap(int32(ReminderPending), int32(ReminderCancelled))
}
