package chatclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/utils"
)

// PlaceholderContent stands in for the text of a message that only carries attachments.
const PlaceholderContent = "Analyze this image"

var (
	ErrEmptyMessage     = errors.New("message has neither text nor attachments")
	ErrSendInFlight     = errors.New("a message is already being sent")
	ErrNotAuthenticated = errors.New("not signed in")
)

// State is the step a send is currently at.
type State int32

const (
	StateIdle State = iota
	StateResolvingConversation
	StatePersistingUserTurn
	StateAwaitingReply
	StatePersistingAssistantTurn
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolvingConversation:
		return "resolving_conversation"
	case StatePersistingUserTurn:
		return "persisting_user_turn"
	case StateAwaitingReply:
		return "awaiting_reply"
	case StatePersistingAssistantTurn:
		return "persisting_assistant_turn"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Orchestrator sends one user turn at a time and records the assistant's answer.
type Orchestrator struct {
	session *Session
	store   *Store
	backend Backend
	relay   Relay
	notify  Notifier
	log     *logger.Logger

	sending atomic.Bool
	state   atomic.Int32

	obsMu    sync.Mutex
	observer func(State)

	now   func() time.Time
	newID func() string
}

func NewOrchestrator(session *Session, store *Store, backend Backend, relay Relay, notify Notifier, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		session: session,
		store:   store,
		backend: backend,
		relay:   relay,
		notify:  notify,
		log:     log.With("component", "Orchestrator"),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// OnStateChange registers fn to observe every state transition. Only one observer is kept.
func (o *Orchestrator) OnStateChange(fn func(State)) {
	o.obsMu.Lock()
	o.observer = fn
	o.obsMu.Unlock()
}

func (o *Orchestrator) State() State { return State(o.state.Load()) }

// Sending reports whether a send is in flight.
func (o *Orchestrator) Sending() bool { return o.sending.Load() }

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
	o.obsMu.Lock()
	fn := o.observer
	o.obsMu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// SendMessage appends text as a user turn to the active conversation, creating one first if
// none is active, and appends the assistant's reply. attachments are public URLs of files
// already uploaded.
//
// A failed user turn write is logged and the turn is marked failed; the send continues.
// Failing to create the conversation or to reach the relay aborts the send after one
// notification.
func (o *Orchestrator) SendMessage(ctx context.Context, text string, attachments []string) error {
	content := strings.TrimSpace(text)
	if content == "" && len(attachments) == 0 {
		return ErrEmptyMessage
	}
	if !o.session.Active() {
		return ErrNotAuthenticated
	}
	if !o.sending.CompareAndSwap(false, true) {
		return ErrSendInFlight
	}
	defer func() {
		o.setState(StateIdle)
		o.sending.Store(false)
	}()

	if content == "" {
		content = PlaceholderContent
	}

	o.setState(StateResolvingConversation)
	convID, prior := o.store.snapshot()
	if convID == "" {
		conv, err := o.backend.CreateConversation(ctx, utils.DeriveTitle(content))
		if err != nil {
			o.setState(StateErrored)
			o.log.Error("Error creating conversation", "error", err)
			o.notify.Notify(errorNotice("Failed to create conversation"))
			return fmt.Errorf("create conversation: %w", err)
		}
		o.store.activate(conv)
		convID, prior = conv.ID, nil
	}
	firstExchange := len(prior) == 0

	userMsg := Message{
		ID:             o.newID(),
		ConversationID: convID,
		Role:           "user",
		Content:        content,
		Images:         attachments,
		CreatedAt:      o.now(),
		Status:         StatusPending,
	}
	o.store.appendTo(convID, userMsg)

	o.setState(StatePersistingUserTurn)
	o.persist(ctx, userMsg)

	o.setState(StateAwaitingReply)
	turns := make([]api.Turn, 0, len(prior)+1)
	for _, m := range prior {
		turns = append(turns, m.turn())
	}
	turns = append(turns, userMsg.turn())

	reply, err := o.relay.Chat(ctx, turns, convID)
	if err != nil {
		o.setState(StateErrored)
		o.log.Error("Error getting reply", "conversation_id", convID, "error", err)
		o.notify.Notify(errorNotice("Failed to get a response. Please try again."))
		return fmt.Errorf("relay: %w", err)
	}

	o.setState(StatePersistingAssistantTurn)
	assistant := Message{
		ID:             o.newID(),
		ConversationID: convID,
		Role:           "assistant",
		Content:        reply,
		CreatedAt:      o.now(),
		Status:         StatusPending,
	}
	o.store.appendTo(convID, assistant)
	o.persist(ctx, assistant)

	var title *string
	if firstExchange {
		t := utils.DeriveTitle(content)
		title = &t
	}
	conv, err := o.backend.UpdateConversation(ctx, convID, title)
	if err != nil {
		o.log.Warn("Conversation metadata not updated", "conversation_id", convID, "error", err)
		o.store.touch(convID, title, o.now())
	} else {
		o.store.replace(conv)
	}
	return nil
}

// persist writes msg and records the outcome on the transcript entry.
func (o *Orchestrator) persist(ctx context.Context, msg Message) {
	_, err := o.backend.InsertMessage(ctx, msg.ConversationID, api.CreateMessageRequest{
		ID:      msg.ID,
		Role:    msg.Role,
		Content: msg.Content,
		Images:  msg.Images,
	})
	if err != nil {
		o.log.Error("Error saving message", "message_id", msg.ID, "role", msg.Role, "error", err)
		o.store.setStatus(msg.ID, StatusFailed)
		return
	}
	o.store.setStatus(msg.ID, StatusConfirmed)
}
