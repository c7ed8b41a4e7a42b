package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cofounder/models"
	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/store"
)

type fakeCompleter struct {
	reply string
	err   error
	got   []openai.ChatCompletionMessage
}

func (f *fakeCompleter) Complete(_ context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	f.got = messages
	return f.reply, f.err
}

type fakeProfiles struct {
	profile *models.Profile
	err     error
}

func (f *fakeProfiles) Get(context.Context, *gorm.DB, string) (*models.Profile, error) {
	return f.profile, f.err
}

func (f *fakeProfiles) Upsert(context.Context, *gorm.DB, *models.Profile) error { return nil }

func TestRelayForwardsTranscriptInOrder(t *testing.T) {
	comp := &fakeCompleter{reply: "Focus on one channel."}
	relay := NewRelay(&fakeProfiles{profile: &models.Profile{CompanyName: "Acme"}}, comp, logger.Nop())

	turns := []api.Turn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "how do I grow?"},
	}
	reply, err := relay.Reply(context.Background(), "u1", turns)
	require.NoError(t, err)
	assert.Equal(t, "Focus on one channel.", reply)

	require.Len(t, comp.got, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, comp.got[0].Role)
	assert.Contains(t, comp.got[0].Content, "- Company: Acme")
	for i, turn := range turns {
		assert.Equal(t, turn.Role, comp.got[i+1].Role)
		assert.Equal(t, turn.Content, comp.got[i+1].Content)
	}
}

func TestRelayMissingProfileIsNotAnError(t *testing.T) {
	comp := &fakeCompleter{reply: "ok"}
	relay := NewRelay(&fakeProfiles{err: store.ErrNotFound}, comp, logger.Nop())

	_, err := relay.Reply(context.Background(), "u1", []api.Turn{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, SystemPrompt, comp.got[0].Content)
}

func TestRelayEmptyChoiceFallsBack(t *testing.T) {
	relay := NewRelay(&fakeProfiles{err: store.ErrNotFound}, &fakeCompleter{}, logger.Nop())

	reply, err := relay.Reply(context.Background(), "u1", []api.Turn{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, reply)
}

func TestRelayUpstreamFailure(t *testing.T) {
	relay := NewRelay(&fakeProfiles{err: store.ErrNotFound}, &fakeCompleter{err: errors.New("boom")}, logger.Nop())

	_, err := relay.Reply(context.Background(), "u1", []api.Turn{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestUserAttachmentsBecomeParts(t *testing.T) {
	msg := toCompletionMessage(api.Turn{
		Role:    "user",
		Content: "What do you think?",
		Images:  []string{"https://cdn.example.com/u/1.png", "https://cdn.example.com/u/2.pdf"},
	})
	assert.Empty(t, msg.Content)
	require.Len(t, msg.MultiContent, 2)
	assert.Equal(t, openai.ChatMessagePartTypeText, msg.MultiContent[0].Type)
	assert.Equal(t, "What do you think?\nAttached file: https://cdn.example.com/u/2.pdf", msg.MultiContent[0].Text)
	assert.Equal(t, openai.ChatMessagePartTypeImageURL, msg.MultiContent[1].Type)
	assert.Equal(t, "https://cdn.example.com/u/1.png", msg.MultiContent[1].ImageURL.URL)

	// assistant turns are passed through as plain text
	plain := toCompletionMessage(api.Turn{Role: "assistant", Content: "x", Images: []string{"https://a/b.png"}})
	assert.Equal(t, "x", plain.Content)
	assert.Empty(t, plain.MultiContent)
}

func TestLoopbackImagesStayText(t *testing.T) {
	msg := toCompletionMessage(api.Turn{
		Role:    "user",
		Content: "Look at this",
		Images: []string{
			"http://127.0.0.1:5000/storage/v1/object/public/chat-uploads/u/1.png",
			"http://localhost:5000/storage/v1/object/public/chat-uploads/u/2.jpg",
			"http://[::1]/u/3.gif",
		},
	})
	require.Len(t, msg.MultiContent, 1)
	assert.Equal(t, openai.ChatMessagePartTypeText, msg.MultiContent[0].Type)
	assert.Equal(t, "Look at this"+
		"\nAttached file: http://127.0.0.1:5000/storage/v1/object/public/chat-uploads/u/1.png"+
		"\nAttached file: http://localhost:5000/storage/v1/object/public/chat-uploads/u/2.jpg"+
		"\nAttached file: http://[::1]/u/3.gif", msg.MultiContent[0].Text)

	assert.True(t, isImageURL("data:image/png;base64,AAAA"))
	assert.True(t, isImageURL("https://storage.googleapis.com/chat-uploads/u/1.png"))
}
