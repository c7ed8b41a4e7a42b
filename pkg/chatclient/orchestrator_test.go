package chatclient

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cofounder/pkg/api"
	"cofounder/pkg/logger"
)

type harness struct {
	backend *fakeBackend
	relay   *fakeRelay
	notes   *Recorder
	session *Session
	store   *Store
	orch    *Orchestrator

	mu     sync.Mutex
	states []State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backend: newFakeBackend(),
		relay:   &fakeRelay{reply: "Start with ten customer interviews."},
		notes:   &Recorder{},
		session: testSession(),
	}
	h.store = NewStore(h.session, h.backend, h.notes, logger.Nop())
	h.orch = NewOrchestrator(h.session, h.store, h.backend, h.relay, h.notes, logger.Nop())
	h.orch.OnStateChange(func(s State) {
		h.mu.Lock()
		h.states = append(h.states, s)
		h.mu.Unlock()
	})
	return h
}

func (h *harness) seen() []State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]State(nil), h.states...)
}

func TestSendMessageStartsConversation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.orch.SendMessage(ctx, "Help me plan my launch week for the product", nil))

	convs := h.store.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "Help me plan my launch...", convs[0].Title)
	assert.Equal(t, convs[0].ID, h.store.ActiveID())

	msgs := h.store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "Help me plan my launch week for the product", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "Start with ten customer interviews.", msgs[1].Content)
	assert.Equal(t, StatusConfirmed, msgs[0].Status)
	assert.Equal(t, StatusConfirmed, msgs[1].Status)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)

	require.Len(t, h.relay.seen, 1)
	assert.Equal(t, []api.Turn{{Role: "user", Content: "Help me plan my launch week for the product"}}, h.relay.seen[0])
	assert.Equal(t, convs[0].ID, h.relay.ids[0])

	assert.Equal(t, []State{
		StateResolvingConversation,
		StatePersistingUserTurn,
		StateAwaitingReply,
		StatePersistingAssistantTurn,
		StateIdle,
	}, h.seen())
	assert.False(t, h.orch.Sending())
	assert.Empty(t, h.notes.All())
}

func TestSendMessageKeepsOrderAcrossTurns(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.orch.SendMessage(ctx, "What should I build first?", nil))
	title := h.store.Conversations()[0].Title
	h.relay.reply = "Pick the riskiest assumption."
	require.NoError(t, h.orch.SendMessage(ctx, "And after that?", nil))

	msgs := h.store.Messages()
	require.Len(t, msgs, 4)
	require.Len(t, h.relay.seen, 2)
	second := h.relay.seen[1]
	require.Len(t, second, 3)
	for i, turn := range second {
		assert.Equal(t, msgs[i].Role, turn.Role)
		assert.Equal(t, msgs[i].Content, turn.Content)
	}

	convID := h.store.ActiveID()
	persisted := h.backend.messages[convID]
	require.Len(t, persisted, 4)
	for i := range persisted {
		assert.Equal(t, msgs[i].ID, persisted[i].ID)
		if i > 0 {
			assert.True(t, persisted[i].CreatedAt.After(persisted[i-1].CreatedAt))
		}
	}

	assert.Equal(t, title, h.store.Conversations()[0].Title, "later exchanges only touch updated_at")
	assert.Equal(t, 1, h.backend.count("create"))
	assert.Equal(t, 2, h.backend.count("update"))
}

func TestSendMessageRetitlesOnFirstExchange(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	conv := h.backend.seed("Untitled")
	require.NoError(t, h.store.LoadConversations(ctx))
	require.NoError(t, h.store.SelectConversation(ctx, conv.ID))

	require.NoError(t, h.orch.SendMessage(ctx, "  Should I raise a pre-seed round now?  ", nil))

	assert.Equal(t, "Should I raise a pre-seed...", h.store.Conversations()[0].Title)
	assert.Zero(t, h.backend.count("create"))
}

func TestSendMessageResortsConversations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	older := h.backend.seed("Older...", "first", "reply")
	newer := h.backend.seed("Newer...")
	require.NoError(t, h.store.LoadConversations(ctx))
	require.Equal(t, newer.ID, h.store.Conversations()[0].ID)

	require.NoError(t, h.store.SelectConversation(ctx, older.ID))
	require.NoError(t, h.orch.SendMessage(ctx, "Back to this one", nil))

	convs := h.store.Conversations()
	assert.Equal(t, older.ID, convs[0].ID)
	assert.Equal(t, "Older...", convs[0].Title)
	assert.True(t, convs[0].UpdatedAt.After(convs[1].UpdatedAt))
}

func TestSendMessageAttachmentOnly(t *testing.T) {
	h := newHarness(t)
	urls := []string{"https://cdn.test/u1/deck.png"}

	require.NoError(t, h.orch.SendMessage(context.Background(), "   ", urls))

	msgs := h.store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, PlaceholderContent, msgs[0].Content)
	assert.Equal(t, urls, msgs[0].Images)
	assert.Equal(t, urls, h.relay.seen[0][0].Images)
	assert.Equal(t, "Analyze this image...", h.store.Conversations()[0].Title)
}

func TestSendMessageRejects(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.orch.SendMessage(ctx, "  ", nil), ErrEmptyMessage)

	h.session.Close()
	assert.ErrorIs(t, h.orch.SendMessage(ctx, "hello", nil), ErrNotAuthenticated)
	assert.Zero(t, h.backend.count("create"))
	assert.Empty(t, h.seen())
}

func TestSendMessageSingleFlight(t *testing.T) {
	h := newHarness(t)
	h.relay.wait = make(chan struct{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- h.orch.SendMessage(ctx, "first", nil) }()
	require.Eventually(t, func() bool { return h.orch.State() == StateAwaitingReply }, time.Second, 5*time.Millisecond)
	assert.True(t, h.orch.Sending())

	assert.ErrorIs(t, h.orch.SendMessage(ctx, "second", nil), ErrSendInFlight)

	close(h.relay.wait)
	require.NoError(t, <-done)
	assert.False(t, h.orch.Sending())
	assert.Len(t, h.store.Messages(), 2)
}

func TestSendMessageCreateFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.failCreate = true

	err := h.orch.SendMessage(context.Background(), "hello there", nil)
	require.ErrorIs(t, err, errBoom)

	assert.Empty(t, h.store.Conversations())
	assert.Empty(t, h.store.Messages())
	assert.Empty(t, h.store.ActiveID())
	assert.Empty(t, h.relay.seen)
	assert.Equal(t, []Notification{{Title: "Error", Description: "Failed to create conversation", Variant: VariantDestructive}}, h.notes.All())
	assert.False(t, h.orch.Sending())
	assert.Equal(t, StateIdle, h.orch.State())
}

func TestSendMessageUserPersistFailureContinues(t *testing.T) {
	h := newHarness(t)
	h.backend.failInsertUser = true

	require.NoError(t, h.orch.SendMessage(context.Background(), "hello there", nil))

	msgs := h.store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, StatusFailed, msgs[0].Status)
	assert.Equal(t, StatusConfirmed, msgs[1].Status)
	assert.Empty(t, h.notes.All())
}

func TestSendMessageRelayFailure(t *testing.T) {
	h := newHarness(t)
	h.relay.err = errBoom

	err := h.orch.SendMessage(context.Background(), "hello there", nil)
	require.ErrorIs(t, err, errBoom)

	msgs := h.store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, []Notification{{Title: "Error", Description: "Failed to get a response. Please try again.", Variant: VariantDestructive}}, h.notes.All())
	assert.False(t, h.orch.Sending())

	states := h.seen()
	assert.Contains(t, states, StateErrored)
	assert.Equal(t, StateIdle, states[len(states)-1])

	h.relay.err = nil
	require.NoError(t, h.orch.SendMessage(context.Background(), "try again", nil))
	assert.Len(t, h.store.Messages(), 3)
}

func TestSendMessageMetadataFailureStillTouchesList(t *testing.T) {
	h := newHarness(t)
	h.backend.failUpdate = true

	require.NoError(t, h.orch.SendMessage(context.Background(), "one two three four five six", nil))

	convs := h.store.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "one two three four five...", convs[0].Title)
}
