package realtime

import "encoding/json"

// Client -> server event names.
const (
	EventJoinBoard    = "joinBoard"
	EventJoinUserRoom = "joinUserRoom"
	EventLeaveBoard   = "leaveBoard"
	EventChatMessage  = "chatMessage"
)

// Relayed mutation event names. The same name is used in both directions:
// a client emits the event after its REST call succeeds, and the relay
// rebroadcasts it under the same name to the rest of the board room.
const (
	EventTaskCreated  = "taskCreated"
	EventTaskUpdated  = "taskUpdated"
	EventTaskMoved    = "taskMoved"
	EventTaskDeleted  = "taskDeleted"
	EventListCreated  = "listCreated"
	EventListUpdated  = "listUpdated"
	EventListDeleted  = "listDeleted"
	EventBoardUpdated = "boardUpdated"
	EventUserTyping   = "userTyping"
	EventChatTyping   = "chatTyping"
)

// Server -> client event names.
const (
	EventOnlineUsers    = "onlineUsers"
	EventUserJoined     = "userJoined"
	EventUserLeft       = "userLeft"
	EventNewChatMessage = "newChatMessage"
	EventChatError      = "chatError"
	EventNotification   = "notification"
)

// Envelope is the wire frame: an event name plus its JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// BoardRoom returns the broadcast group name for a board.
func BoardRoom(boardID string) string { return "board_" + boardID }

// UserRoom returns the broadcast group name for a user. Membership persists
// across board switches and carries out-of-band notifications.
func UserRoom(userID string) string { return "user_" + userID }
