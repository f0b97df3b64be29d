package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_TTLFollowsSessionClock(t *testing.T) {
	past := time.Date(2001, 1, 1, 10, 0, 0, 0, time.UTC)

	sess := NewSession(1, past, 30*time.Minute)
	assert.Equal(t, 30*time.Minute, sess.TTL())

	sess = sess.Advance(Initial(), past.Add(20*time.Minute), 15*time.Minute)
	assert.Equal(t, 15*time.Minute, sess.TTL())
	assert.False(t, sess.Expired(past.Add(30*time.Minute)))
	assert.True(t, sess.Expired(past.Add(35*time.Minute)))

	assert.Zero(t, NewSession(1, past, 0).TTL())
}
