package chatclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"cofounder/pkg/api"
)

var errBoom = errors.New("boom")

// fakeBackend keeps conversations and messages in memory. Fail* fields force the matching
// call to fail.
type fakeBackend struct {
	mu            sync.Mutex
	clock         time.Time
	conversations map[string]api.Conversation
	messages      map[string][]api.Message
	uploads       map[string]string
	calls         map[string]int

	failCreate     bool
	failInsertUser bool
	failDelete     bool
	failUpdate     bool
	failUpload     map[string]bool // by content type
	blockMessages  chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		clock:         time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		conversations: map[string]api.Conversation{},
		messages:      map[string][]api.Message{},
		uploads:       map[string]string{},
		calls:         map[string]int{},
		failUpload:    map[string]bool{},
	}
}

func (b *fakeBackend) tick() time.Time {
	b.clock = b.clock.Add(time.Second)
	return b.clock
}

func (b *fakeBackend) count(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

func (b *fakeBackend) seed(title string, messages ...string) api.Conversation {
	b.mu.Lock()
	defer b.mu.Unlock()
	at := b.tick()
	conv := api.Conversation{ID: uuid.NewString(), UserID: "u1", Title: title, CreatedAt: at, UpdatedAt: at}
	b.conversations[conv.ID] = conv
	for i, content := range messages {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		b.messages[conv.ID] = append(b.messages[conv.ID], api.Message{
			ID: uuid.NewString(), ConversationID: conv.ID, UserID: "u1",
			Role: role, Content: content, CreatedAt: b.tick(),
		})
	}
	return conv
}

func (b *fakeBackend) ListConversations(context.Context) ([]api.Conversation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["list"]++
	out := make([]api.Conversation, 0, len(b.conversations))
	for _, c := range b.conversations {
		out = append(out, c)
	}
	return out, nil
}

func (b *fakeBackend) CreateConversation(_ context.Context, title string) (api.Conversation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["create"]++
	if b.failCreate {
		return api.Conversation{}, errBoom
	}
	at := b.tick()
	conv := api.Conversation{ID: uuid.NewString(), UserID: "u1", Title: title, CreatedAt: at, UpdatedAt: at}
	b.conversations[conv.ID] = conv
	return conv, nil
}

func (b *fakeBackend) UpdateConversation(_ context.Context, id string, title *string) (api.Conversation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["update"]++
	if b.failUpdate {
		return api.Conversation{}, errBoom
	}
	conv, ok := b.conversations[id]
	if !ok {
		return api.Conversation{}, fmt.Errorf("conversation %s: not found", id)
	}
	if title != nil {
		conv.Title = *title
	}
	conv.UpdatedAt = b.tick()
	b.conversations[id] = conv
	return conv, nil
}

func (b *fakeBackend) DeleteConversation(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["delete"]++
	if b.failDelete {
		return errBoom
	}
	delete(b.conversations, id)
	delete(b.messages, id)
	return nil
}

func (b *fakeBackend) ListMessages(_ context.Context, id string) ([]api.Message, error) {
	b.mu.Lock()
	block := b.blockMessages
	b.calls["messages"]++
	out := append([]api.Message(nil), b.messages[id]...)
	b.mu.Unlock()
	if block != nil {
		<-block
	}
	return out, nil
}

func (b *fakeBackend) InsertMessage(_ context.Context, id string, req api.CreateMessageRequest) (api.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["insert"]++
	if b.failInsertUser && req.Role == "user" {
		return api.Message{}, errBoom
	}
	msg := api.Message{
		ID: req.ID, ConversationID: id, UserID: "u1",
		Role: req.Role, Content: req.Content, Images: req.Images, CreatedAt: b.tick(),
	}
	b.messages[id] = append(b.messages[id], msg)
	return msg, nil
}

func (b *fakeBackend) Upload(_ context.Context, key string, body io.Reader, contentType string) (api.UploadResponse, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return api.UploadResponse{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["upload"]++
	if b.failUpload[contentType] {
		return api.UploadResponse{}, errBoom
	}
	b.uploads[key] = string(data)
	return api.UploadResponse{Key: key, PublicURL: "https://cdn.test/" + key}, nil
}

// fakeRelay records every transcript it receives.
type fakeRelay struct {
	mu    sync.Mutex
	reply string
	err   error
	seen  [][]api.Turn
	ids   []string
	wait  chan struct{}
}

func (r *fakeRelay) Chat(_ context.Context, turns []api.Turn, conversationID string) (string, error) {
	r.mu.Lock()
	r.seen = append(r.seen, turns)
	r.ids = append(r.ids, conversationID)
	wait := r.wait
	r.mu.Unlock()
	if wait != nil {
		<-wait
	}
	if r.err != nil {
		return "", r.err
	}
	return r.reply, nil
}

func testSession() *Session {
	return NewSession(api.Session{AccessToken: "tok", ExpiresIn: 3600, User: api.User{ID: "u1", Email: "founder@example.com"}})
}
