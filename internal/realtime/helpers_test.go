package realtime_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/boardpulse/boardpulse/internal/domain"
	"github.com/boardpulse/boardpulse/internal/realtime"
)

func newTestConn() *realtime.Conn {
	return realtime.NewConn(uuid.NewString())
}

func userRef(name string) *domain.UserRef {
	return &domain.UserRef{
		ID:    uuid.New(),
		Name:  name,
		Email: name + "@example.com",
	}
}

// recv pops the next frame from a connection's outbox. Everything in this
// package enqueues synchronously, so a frame that should exist already does.
func recv(t *testing.T, c *realtime.Conn) realtime.Envelope {
	t.Helper()

	select {
	case frame, ok := <-c.Outbox():
		require.True(t, ok, "outbox closed")
		var env realtime.Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		return env
	default:
		t.Fatal("expected a frame, outbox empty")
		return realtime.Envelope{}
	}
}

// recvAll drains every pending frame.
func recvAll(t *testing.T, c *realtime.Conn) []realtime.Envelope {
	t.Helper()

	var out []realtime.Envelope
	for {
		select {
		case frame, ok := <-c.Outbox():
			if !ok {
				return out
			}
			var env realtime.Envelope
			require.NoError(t, json.Unmarshal(frame, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func decodeData[T any](t *testing.T, env realtime.Envelope) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}
