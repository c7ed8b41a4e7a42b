package chatclient

import (
	"context"
	"fmt"
	"io"

	"cofounder/pkg/api"
)

// Backend is the persistence side of the server: conversations, messages and blobs of the
// signed in user.
type Backend interface {
	ListConversations(ctx context.Context) ([]api.Conversation, error)
	CreateConversation(ctx context.Context, title string) (api.Conversation, error)
	// UpdateConversation stamps updated_at and, when title is non-nil, retitles.
	UpdateConversation(ctx context.Context, id string, title *string) (api.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	ListMessages(ctx context.Context, conversationID string) ([]api.Message, error)
	InsertMessage(ctx context.Context, conversationID string, msg api.CreateMessageRequest) (api.Message, error)
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (api.UploadResponse, error)
}

// Relay sends a transcript to the chat relay and returns the assistant's reply.
type Relay interface {
	Chat(ctx context.Context, turns []api.Turn, conversationID string) (string, error)
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: server answered %d: %s", e.Op, e.Status, e.Message)
}
