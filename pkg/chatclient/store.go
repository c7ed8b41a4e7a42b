package chatclient

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"cofounder/pkg/api"
	"cofounder/pkg/logger"
)

// Status tracks whether a transcript entry has reached the server.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Message is one transcript entry as the client sees it.
type Message struct {
	ID             string
	ConversationID string
	Role           string
	Content        string
	Images         []string
	CreatedAt      time.Time
	Status         Status
}

func (m Message) turn() api.Turn {
	return api.Turn{Role: m.Role, Content: m.Content, Images: m.Images}
}

func fromAPIMessage(m api.Message) Message {
	return Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Role:           m.Role,
		Content:        m.Content,
		Images:         m.Images,
		CreatedAt:      m.CreatedAt,
		Status:         StatusConfirmed,
	}
}

// Store mirrors the signed in user's conversation list and the active transcript.
type Store struct {
	session *Session
	backend Backend
	notify  Notifier
	log     *logger.Logger

	mu            sync.Mutex
	conversations []api.Conversation
	activeID      string
	messages      []Message
	loading       bool
	// selectGen increases whenever the active conversation changes. A message fetch
	// started under an older generation is dropped.
	selectGen uint64
}

// NewStore binds a store to session. The store empties itself when the session closes.
func NewStore(session *Session, backend Backend, notify Notifier, log *logger.Logger) *Store {
	s := &Store{
		session: session,
		backend: backend,
		notify:  notify,
		log:     log.With("component", "Store"),
	}
	if session != nil {
		session.OnClose(s.reset)
	}
	return s
}

// LoadConversations replaces the list with the user's conversations, most recently updated
// first. Without a signed in user the list is emptied and no request is made.
func (s *Store) LoadConversations(ctx context.Context) error {
	if !s.session.Active() {
		s.mu.Lock()
		s.conversations = nil
		s.mu.Unlock()
		return nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	list, err := s.backend.ListConversations(ctx)
	if err != nil {
		s.log.Error("Error loading conversations", "error", err)
		s.notify.Notify(errorNotice("Failed to load conversations"))
		return fmt.Errorf("load conversations: %w", err)
	}
	sortByRecency(list)

	s.mu.Lock()
	s.conversations = list
	s.mu.Unlock()
	return nil
}

// SelectConversation makes id active and fetches its transcript in creation order. An empty
// id clears the transcript. If another selection happens while the fetch is in flight, the
// fetched messages are discarded.
func (s *Store) SelectConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	s.selectGen++
	gen := s.selectGen
	s.activeID = id
	if id == "" {
		s.messages = nil
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	list, err := s.backend.ListMessages(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.selectGen {
		return nil
	}
	if err != nil {
		s.log.Error("Error loading messages", "conversation_id", id, "error", err)
		s.notify.Notify(errorNotice("Failed to load messages"))
		return fmt.Errorf("load messages: %w", err)
	}
	msgs := make([]Message, 0, len(list))
	for _, m := range list {
		msgs = append(msgs, fromAPIMessage(m))
	}
	slices.SortStableFunc(msgs, func(a, b Message) int { return a.CreatedAt.Compare(b.CreatedAt) })
	s.messages = msgs
	return nil
}

// DeleteConversation deletes id on the server. Local state changes only once the server
// confirms; on failure the user is notified and nothing is touched.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	if err := s.backend.DeleteConversation(ctx, id); err != nil {
		s.log.Error("Error deleting conversation", "conversation_id", id, "error", err)
		s.notify.Notify(errorNotice("Failed to delete conversation"))
		return fmt.Errorf("delete conversation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = slices.DeleteFunc(s.conversations, func(c api.Conversation) bool { return c.ID == id })
	if s.activeID == id {
		s.selectGen++
		s.activeID = ""
		s.messages = nil
	}
	return nil
}

// AppendMessage adds msg to the in-memory transcript. Nothing is persisted.
func (s *Store) AppendMessage(msg Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}

// NewChat leaves the active conversation so the next send starts a new one.
func (s *Store) NewChat() {
	s.mu.Lock()
	s.selectGen++
	s.activeID = ""
	s.messages = nil
	s.mu.Unlock()
}

func (s *Store) Conversations() []api.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.conversations)
}

func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Loading reports whether a conversation list fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) reset() {
	s.mu.Lock()
	s.selectGen++
	s.conversations = nil
	s.activeID = ""
	s.messages = nil
	s.mu.Unlock()
}

// snapshot returns the active id and its transcript under one lock.
func (s *Store) snapshot() (string, []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, slices.Clone(s.messages)
}

// activate puts a freshly created conversation at the top of the list and makes it active
// with an empty transcript.
func (s *Store) activate(conv api.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectGen++
	s.conversations = append([]api.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	s.messages = nil
}

// appendTo appends msg only while conversationID is still active.
func (s *Store) appendTo(conversationID string, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeID != conversationID {
		return false
	}
	s.messages = append(s.messages, msg)
	return true
}

func (s *Store) setStatus(messageID string, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			s.messages[i].Status = status
			return
		}
	}
}

// touch applies a title and updated_at change to the listed conversation and re-sorts.
func (s *Store) touch(id string, title *string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			if title != nil {
				s.conversations[i].Title = *title
			}
			s.conversations[i].UpdatedAt = at
		}
	}
	sortByRecency(s.conversations)
}

// replace swaps in the server's copy of a conversation and re-sorts.
func (s *Store) replace(conv api.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.conversations {
		if s.conversations[i].ID == conv.ID {
			s.conversations[i] = conv
		}
	}
	sortByRecency(s.conversations)
}

func sortByRecency(list []api.Conversation) {
	slices.SortStableFunc(list, func(a, b api.Conversation) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
}
