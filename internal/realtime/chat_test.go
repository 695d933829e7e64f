package realtime_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boardpulse/boardpulse/internal/domain"
	"github.com/boardpulse/boardpulse/internal/realtime"
)

type stubMessageRepo struct {
	created   []*domain.Message
	createErr error
}

func (s *stubMessageRepo) Create(_ context.Context, m *domain.Message) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, m)
	return nil
}

func (s *stubMessageRepo) ListByBoard(context.Context, uuid.UUID, int, int) ([]*domain.Message, int, error) {
	return nil, 0, nil
}

type stubUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (s *stubUserRepo) Create(context.Context, *domain.User) error { return nil }
func (s *stubUserRepo) Update(context.Context, *domain.User) error { return nil }
func (s *stubUserRepo) List(context.Context) ([]*domain.User, error) {
	return nil, nil
}

func (s *stubUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

type chatFixture struct {
	bridge       *realtime.ChatBridge
	sender, peer *realtime.Conn
	messages     *stubMessageRepo
	boardID      uuid.UUID
	ada          *domain.User
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	broker := realtime.NewRoomBroker()
	rt := realtime.NewRouter(broker, realtime.NewRegistry())

	ada := &domain.User{ID: uuid.New(), Name: "ada", Email: "ada@example.com"}
	f := &chatFixture{
		sender:   newTestConn(),
		peer:     newTestConn(),
		messages: &stubMessageRepo{},
		boardID:  uuid.New(),
		ada:      ada,
	}
	users := &stubUserRepo{users: map[uuid.UUID]*domain.User{ada.ID: ada}}
	f.bridge = realtime.NewChatBridge(broker, f.messages, users)

	adaRef := ada.Ref()
	rt.JoinBoard(f.sender, f.boardID.String(), &adaRef)
	rt.JoinBoard(f.peer, f.boardID.String(), userRef("bob"))
	recvAll(t, f.sender)
	recvAll(t, f.peer)
	return f
}

func (f *chatFixture) send(t *testing.T, content string) {
	t.Helper()
	f.sendAs(t, f.ada.ID.String(), content, "text")
}

func (f *chatFixture) sendAs(t *testing.T, senderID, content, msgType string) {
	t.Helper()
	payload, err := json.Marshal(map[string]string{
		"boardId":  f.boardID.String(),
		"senderId": senderID,
		"content":  content,
		"type":     msgType,
	})
	require.NoError(t, err)
	f.bridge.HandleMessage(context.Background(), f.sender, payload)
}

func TestChatMessageEchoedToFullRoom(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)
	f.send(t, "hello board")

	// Unlike task/list mutations, chat goes to everyone including the sender.
	for _, c := range []*realtime.Conn{f.sender, f.peer} {
		frames := recvAll(t, c)
		require.Len(t, frames, 1, "each member receives the message exactly once")
		require.Equal(t, realtime.EventNewChatMessage, frames[0].Event)

		msg := decodeData[domain.Message](t, frames[0])
		assert.Equal(t, "hello board", msg.Content)
		assert.Equal(t, domain.MessageTypeText, msg.Type)
		assert.Equal(t, f.boardID, msg.BoardID)
		require.NotNil(t, msg.Sender, "sender identity must be resolved before fan-out")
		assert.Equal(t, "ada", msg.Sender.Name)
		assert.False(t, msg.CreatedAt.IsZero())
	}

	require.Len(t, f.messages.created, 1, "message persisted before broadcast")
	assert.Equal(t, "hello board", f.messages.created[0].Content)
}

func TestChatMessageTrimsWhitespace(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)
	f.send(t, "  spaced out  ")

	frames := recvAll(t, f.peer)
	require.Len(t, frames, 1)
	assert.Equal(t, "spaced out", decodeData[domain.Message](t, frames[0]).Content)
}

func TestChatEmptyContentRejected(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)
	f.send(t, "   ")

	// Error to the sender only; the room never learns a send was attempted.
	frames := recvAll(t, f.sender)
	require.Len(t, frames, 1)
	require.Equal(t, realtime.EventChatError, frames[0].Event)
	errPayload := decodeData[map[string]string](t, frames[0])
	assert.Equal(t, "message content is required", errPayload["message"])

	assert.Empty(t, recvAll(t, f.peer))
	assert.Empty(t, f.messages.created, "nothing persisted")
}

func TestChatOversizedContentRejected(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)
	f.send(t, strings.Repeat("x", domain.MaxMessageLength+1))

	frames := recvAll(t, f.sender)
	require.Len(t, frames, 1)
	require.Equal(t, realtime.EventChatError, frames[0].Event)
	assert.Equal(t, "message content too long", decodeData[map[string]string](t, frames[0])["message"])

	assert.Empty(t, recvAll(t, f.peer))
	assert.Empty(t, f.messages.created)
}

func TestChatMaxLengthContentAccepted(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)
	f.send(t, strings.Repeat("x", domain.MaxMessageLength))

	frames := recvAll(t, f.peer)
	require.Len(t, frames, 1)
	assert.Equal(t, realtime.EventNewChatMessage, frames[0].Event)
}

func TestChatInvalidIDsRejected(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)

	f.sendAs(t, "not-a-uuid", "hi", "text")
	frames := recvAll(t, f.sender)
	require.Len(t, frames, 1)
	assert.Equal(t, realtime.EventChatError, frames[0].Event)
	assert.Equal(t, "invalid sender id", decodeData[map[string]string](t, frames[0])["message"])

	payload, err := json.Marshal(map[string]string{
		"boardId":  "not-a-uuid",
		"senderId": f.ada.ID.String(),
		"content":  "hi",
	})
	require.NoError(t, err)
	f.bridge.HandleMessage(context.Background(), f.sender, payload)

	frames = recvAll(t, f.sender)
	require.Len(t, frames, 1)
	assert.Equal(t, "invalid board id", decodeData[map[string]string](t, frames[0])["message"])

	assert.Empty(t, recvAll(t, f.peer))
}

func TestChatUnknownTypeNormalizedToText(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)
	f.sendAs(t, f.ada.ID.String(), "hi", "emoji-bomb")

	frames := recvAll(t, f.peer)
	require.Len(t, frames, 1)
	assert.Equal(t, domain.MessageTypeText, decodeData[domain.Message](t, frames[0]).Type)
}

func TestChatSystemTypePreserved(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)
	f.sendAs(t, f.ada.ID.String(), "ada joined", "system")

	frames := recvAll(t, f.peer)
	require.Len(t, frames, 1)
	assert.Equal(t, domain.MessageTypeSystem, decodeData[domain.Message](t, frames[0]).Type)
}

func TestChatPersistenceFailure(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)
	f.messages.createErr = errors.New("connection refused")

	f.send(t, "hello")

	frames := recvAll(t, f.sender)
	require.Len(t, frames, 1)
	require.Equal(t, realtime.EventChatError, frames[0].Event)
	assert.Equal(t, "failed to send message", decodeData[map[string]string](t, frames[0])["message"])

	assert.Empty(t, recvAll(t, f.peer), "room must not see a message that was never stored")
}

func TestChatUnknownSenderRejected(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)
	f.sendAs(t, uuid.NewString(), "hello", "text")

	frames := recvAll(t, f.sender)
	require.Len(t, frames, 1)
	require.Equal(t, realtime.EventChatError, frames[0].Event)
	assert.Equal(t, "failed to send message", decodeData[map[string]string](t, frames[0])["message"])
	assert.Empty(t, recvAll(t, f.peer))
}

func TestChatMalformedPayload(t *testing.T) {
	t.Parallel()

	f := newChatFixture(t)
	f.bridge.HandleMessage(context.Background(), f.sender, json.RawMessage(`[1,2,3]`))

	frames := recvAll(t, f.sender)
	require.Len(t, frames, 1)
	assert.Equal(t, "invalid message payload", decodeData[map[string]string](t, frames[0])["message"])
	assert.Empty(t, recvAll(t, f.peer))
}
