package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/boardpulse/boardpulse/internal/domain"
)

type ListMessagesInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Page    int       `query:"page" minimum:"1" doc:"Page number (1-based, newest page first)"`
	Limit   int       `query:"limit" minimum:"1" maximum:"100" doc:"Page size"`
}

type ListMessagesOutput struct {
	Body struct {
		Messages []*domain.Message `json:"messages"`
		Total    int               `json:"total"`
		Page     int               `json:"page"`
	}
}

type SendMessageInput struct {
	BoardID uuid.UUID `path:"boardID" doc:"Board ID"`
	Body    struct {
		Content string `json:"content" minLength:"1" maxLength:"2000" doc:"Message body"`
		Type    string `json:"type,omitempty" doc:"Message type (text or system; anything else is treated as text)"`
	}
}

type SendMessageOutput struct {
	Body *domain.Message
}

func RegisterChatRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-messages",
		Method:      http.MethodGet,
		Path:        "/boards/{boardID}/messages",
		Summary:     "Get paginated chat history for a board",
		Tags:        []string{"Chat"},
	}, func(ctx context.Context, input *ListMessagesInput) (*ListMessagesOutput, error) {
		if _, _, err := loadBoardForUser(ctx, store, input.BoardID); err != nil {
			return nil, err
		}

		page := input.Page
		if page < 1 {
			page = 1
		}

		messages, total, err := store.Messages().ListByBoard(ctx, input.BoardID, page, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list messages", err)
		}

		// The store pages newest-first; each page is reversed so clients
		// append in render order.
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}

		out := &ListMessagesOutput{}
		out.Body.Messages = messages
		out.Body.Total = total
		out.Body.Page = page
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "send-message",
		Method:      http.MethodPost,
		Path:        "/boards/{boardID}/messages",
		Summary:     "Send a chat message to a board",
		Tags:        []string{"Chat"},
	}, func(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error) {
		_, userID, err := loadBoardForUser(ctx, store, input.BoardID)
		if err != nil {
			return nil, err
		}

		content := strings.TrimSpace(input.Body.Content)
		if content == "" {
			return nil, huma.Error400BadRequest("message content is required")
		}

		msgType := domain.MessageType(input.Body.Type)
		if msgType != domain.MessageTypeSystem {
			msgType = domain.MessageTypeText
		}

		msg := &domain.Message{
			ID:        uuid.New(),
			BoardID:   input.BoardID,
			SenderID:  userID,
			Content:   content,
			Type:      msgType,
			CreatedAt: time.Now(),
		}
		if err := store.Messages().Create(ctx, msg); err != nil {
			return nil, huma.Error500InternalServerError("failed to send message", err)
		}

		// Populate the sender so the caller can render without a second fetch;
		// socket recipients get theirs resolved by the chat bridge.
		if sender, err := store.Users().GetByID(ctx, userID); err == nil {
			ref := sender.Ref()
			msg.Sender = &ref
		}

		return &SendMessageOutput{Body: msg}, nil
	})
}
