// Package api holds the JSON shapes exchanged between the server and its clients.
package api

import "time"

// Turn is one message of the transcript sent to the relay.
type Turn struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ChatRequest struct {
	Messages       []Turn  `json:"messages"`
	ConversationID *string `json:"conversationId"`
}

type ChatResponse struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversationId"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Websocket frame types.
const (
	FrameChat  = "chat"
	FrameReply = "reply"
	FrameError = "error"
)

// Frame is a single websocket message in either direction.
type Frame struct {
	Type           string  `json:"type"`
	Messages       []Turn  `json:"messages,omitempty"`
	Message        string  `json:"message,omitempty"`
	ConversationID *string `json:"conversationId,omitempty"`
	Error          string  `json:"error,omitempty"`
}

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateConversationRequest struct {
	Title string `json:"title"`
}

// UpdateConversationRequest leaves the title unchanged when Title is nil. The server
// always stamps updated_at.
type UpdateConversationRequest struct {
	Title *string `json:"title,omitempty"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Images         []string  `json:"images,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateMessageRequest struct {
	ID      string   `json:"id"`
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type Profile struct {
	DisplayName  string `json:"display_name"`
	CompanyName  string `json:"company_name"`
	StartupStage string `json:"startup_stage"`
	Industry     string `json:"industry"`
	Goals        string `json:"goals"`
	Bio          string `json:"bio"`
}

type UploadResponse struct {
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        User   `json:"user"`
}

// Upload limits shared by the server and the client.
const (
	MaxUploadBytes  = 20 << 20
	MaxPendingFiles = 10
)

// AllowedMIMETypes lists the attachment types accepted for upload.
var AllowedMIMETypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"text/plain",
	"text/csv",
	"application/json",
}
