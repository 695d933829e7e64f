package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardpulse/boardpulse/internal/notify"
	redisstore "github.com/boardpulse/boardpulse/internal/store/redis"
)

func TestNotify(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ps, err := redisstore.New(ctx, srv.Addr(), "", 0)
	require.NoError(t, err)
	defer ps.Close()

	messages, cleanup, err := ps.SubscribeUserNotifications(ctx)
	require.NoError(t, err)
	defer cleanup()

	notifier := notify.New(ps)
	userID := uuid.New()
	boardID := uuid.New()

	sent := notify.Notification{
		Message:   "You have been added to board: Roadmap",
		BoardID:   boardID,
		Type:      notify.TypeBoardInvite,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, notifier.Notify(ctx, userID, sent))

	select {
	case msg := <-messages:
		assert.Equal(t, redisstore.UserChannel(userID), msg.Channel)

		var got notify.Notification
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, sent.Message, got.Message)
		assert.Equal(t, boardID, got.BoardID)
		assert.Equal(t, notify.TypeBoardInvite, got.Type)
		assert.True(t, sent.Timestamp.Equal(got.Timestamp))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}
