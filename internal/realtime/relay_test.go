package realtime_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardpulse/boardpulse/internal/domain"
	"github.com/boardpulse/boardpulse/internal/realtime"
)

// relayFixture joins three named connections to board b1 and one to board b2,
// drains the join chatter, and returns everything for assertions.
type relayFixture struct {
	relay                    *realtime.Relay
	sender, peer, other, far *realtime.Conn
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()

	broker := realtime.NewRoomBroker()
	rt := realtime.NewRouter(broker, realtime.NewRegistry())

	f := &relayFixture{
		relay:  realtime.NewRelay(broker),
		sender: newTestConn(),
		peer:   newTestConn(),
		other:  newTestConn(),
		far:    newTestConn(),
	}

	rt.JoinBoard(f.sender, "b1", userRef("ada"))
	rt.JoinBoard(f.peer, "b1", userRef("bob"))
	rt.JoinBoard(f.other, "b1", userRef("carol"))
	rt.JoinBoard(f.far, "b2", userRef("dave"))

	for _, c := range []*realtime.Conn{f.sender, f.peer, f.other, f.far} {
		recvAll(t, c)
	}
	return f
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestRelayExcludesSender(t *testing.T) {
	t.Parallel()

	f := newRelayFixture(t)

	f.relay.Rebroadcast(f.sender, realtime.EventTaskUpdated, raw(t, map[string]any{
		"boardId": "b1",
		"task":    map[string]any{"id": "t1", "title": "X"},
	}))

	assert.Empty(t, recvAll(t, f.sender), "sender must receive zero copies of its own mutation")

	for _, c := range []*realtime.Conn{f.peer, f.other} {
		frames := recvAll(t, c)
		require.Len(t, frames, 1, "every other room member receives exactly one copy")
		assert.Equal(t, realtime.EventTaskUpdated, frames[0].Event)

		data := decodeData[map[string]any](t, frames[0])
		assert.Equal(t, "t1", data["id"])
		assert.Equal(t, "X", data["title"])

		sender, ok := data["sender"].(map[string]any)
		require.True(t, ok, "sender identity must be attached")
		assert.Equal(t, "ada", sender["name"])
	}

	assert.Empty(t, recvAll(t, f.far), "other boards stay silent")
}

func TestRelayTaskCreatedAndListEvents(t *testing.T) {
	t.Parallel()

	f := newRelayFixture(t)

	f.relay.Rebroadcast(f.sender, realtime.EventTaskCreated, raw(t, map[string]any{
		"boardId": "b1",
		"task":    map[string]any{"id": "t9", "list_id": "l1"},
	}))
	f.relay.Rebroadcast(f.sender, realtime.EventListCreated, raw(t, map[string]any{
		"boardId": "b1",
		"list":    map[string]any{"id": "l2", "title": "Doing"},
	}))

	frames := recvAll(t, f.peer)
	require.Len(t, frames, 2)
	assert.Equal(t, realtime.EventTaskCreated, frames[0].Event)
	assert.Equal(t, realtime.EventListCreated, frames[1].Event)

	list := decodeData[map[string]any](t, frames[1])
	assert.Equal(t, "Doing", list["title"])
	assert.NotNil(t, list["sender"])
}

func TestRelayTaskMovedPayload(t *testing.T) {
	t.Parallel()

	f := newRelayFixture(t)

	f.relay.Rebroadcast(f.sender, realtime.EventTaskMoved, raw(t, map[string]any{
		"boardId":           "b1",
		"taskId":            "t1",
		"sourceListId":      "l1",
		"destinationListId": "l2",
		"sourceIndex":       float64(0),
		"destinationIndex":  float64(3),
		"ignoredExtra":      "dropped",
	}))

	frames := recvAll(t, f.peer)
	require.Len(t, frames, 1)
	data := decodeData[map[string]any](t, frames[0])

	assert.Equal(t, "t1", data["taskId"])
	assert.Equal(t, "l1", data["sourceListId"])
	assert.Equal(t, "l2", data["destinationListId"])
	assert.Equal(t, float64(0), data["sourceIndex"])
	assert.Equal(t, float64(3), data["destinationIndex"])
	assert.NotNil(t, data["sender"])
	assert.NotContains(t, data, "ignoredExtra")
}

func TestRelayDeleteEvents(t *testing.T) {
	t.Parallel()

	f := newRelayFixture(t)

	f.relay.Rebroadcast(f.sender, realtime.EventTaskDeleted, raw(t, map[string]any{
		"boardId": "b1",
		"taskId":  "t1",
		"listId":  "l1",
	}))
	f.relay.Rebroadcast(f.sender, realtime.EventListDeleted, raw(t, map[string]any{
		"boardId": "b1",
		"listId":  "l1",
	}))

	frames := recvAll(t, f.peer)
	require.Len(t, frames, 2)

	del := decodeData[map[string]any](t, frames[0])
	assert.Equal(t, "t1", del["taskId"])
	assert.Equal(t, "l1", del["listId"])

	listDel := decodeData[map[string]any](t, frames[1])
	assert.Equal(t, "l1", listDel["listId"])
}

func TestRelayBoardUpdatedIsSenderTransparent(t *testing.T) {
	t.Parallel()

	f := newRelayFixture(t)

	f.relay.Rebroadcast(f.sender, realtime.EventBoardUpdated, raw(t, map[string]any{
		"boardId": "b1",
		"board":   map[string]any{"id": "b1", "title": "Renamed"},
	}))

	frames := recvAll(t, f.peer)
	require.Len(t, frames, 1)
	data := decodeData[map[string]any](t, frames[0])
	assert.Equal(t, "Renamed", data["title"])
	assert.NotContains(t, data, "sender", "board updates carry no sender tag")

	assert.Empty(t, recvAll(t, f.sender))
}

func TestRelayTypingIndicators(t *testing.T) {
	t.Parallel()

	f := newRelayFixture(t)

	f.relay.Rebroadcast(f.sender, realtime.EventUserTyping, raw(t, map[string]any{
		"boardId":  "b1",
		"isTyping": true,
	}))

	assert.Empty(t, recvAll(t, f.sender), "typing is never echoed to the typist")

	frames := recvAll(t, f.peer)
	require.Len(t, frames, 1)
	data := decodeData[map[string]any](t, frames[0])
	assert.Equal(t, true, data["isTyping"])
	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada", user["name"])
}

func TestRelayDropsUnroutableEvents(t *testing.T) {
	t.Parallel()

	f := newRelayFixture(t)

	// Missing boardId: no room to target, silently dropped.
	f.relay.Rebroadcast(f.sender, realtime.EventTaskUpdated, raw(t, map[string]any{
		"task": map[string]any{"id": "t1"},
	}))
	// Not an object at all.
	f.relay.Rebroadcast(f.sender, realtime.EventTaskUpdated, json.RawMessage(`"just a string"`))
	// Unknown event name.
	f.relay.Rebroadcast(f.sender, "selfDestruct", raw(t, map[string]any{"boardId": "b1"}))

	assert.Empty(t, recvAll(t, f.peer))
	assert.Empty(t, recvAll(t, f.other))
}

func TestRelayToleratesMissingEntity(t *testing.T) {
	t.Parallel()

	f := newRelayFixture(t)

	// boardId present but the entity is absent: the relay does not validate
	// payloads, so others still get a frame with just the sender attached.
	f.relay.Rebroadcast(f.sender, realtime.EventTaskUpdated, raw(t, map[string]any{
		"boardId": "b1",
	}))

	frames := recvAll(t, f.peer)
	require.Len(t, frames, 1)
	data := decodeData[map[string]any](t, frames[0])
	assert.NotNil(t, data["sender"])
}

func TestRelayAnonymousSenderHasNilIdentity(t *testing.T) {
	t.Parallel()

	broker := realtime.NewRoomBroker()
	rt := realtime.NewRouter(broker, realtime.NewRegistry())
	relay := realtime.NewRelay(broker)

	anon, peer := newTestConn(), newTestConn()
	rt.JoinBoard(anon, "b1", nil)
	rt.JoinBoard(peer, "b1", userRef("bob"))
	recvAll(t, peer)

	relay.Rebroadcast(anon, realtime.EventTaskUpdated, raw(t, map[string]any{
		"boardId": "b1",
		"task":    map[string]any{"id": "t1"},
	}))

	frames := recvAll(t, peer)
	require.Len(t, frames, 1)

	var data struct {
		ID     string          `json:"id"`
		Sender *domain.UserRef `json:"sender"`
	}
	require.NoError(t, json.Unmarshal(frames[0].Data, &data))
	assert.Equal(t, "t1", data.ID)
	assert.Nil(t, data.Sender)
}
