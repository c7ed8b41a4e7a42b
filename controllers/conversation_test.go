package controllers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cofounder/pkg/api"
)

func TestConversationLifecycle(t *testing.T) {
	h := newHarness(t, "")
	token, uid := h.signUp("conv@example.com")

	w := h.do(http.MethodPost, "/rest/v1/conversations", token, api.CreateConversationRequest{Title: "Help me plan my launch..."})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[api.Conversation](t, w)
	assert.Equal(t, uid, first.UserID)

	time.Sleep(5 * time.Millisecond)
	w = h.do(http.MethodPost, "/rest/v1/conversations", token, api.CreateConversationRequest{Title: "Second"})
	require.Equal(t, http.StatusCreated, w.Code)
	second := decode[api.Conversation](t, w)

	list := decode[[]api.Conversation](t, h.do(http.MethodGet, "/rest/v1/conversations", token, nil))
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "most recently updated first")

	time.Sleep(5 * time.Millisecond)
	title := "Renamed"
	w = h.do(http.MethodPatch, "/rest/v1/conversations/"+first.ID, token, api.UpdateConversationRequest{Title: &title})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[api.Conversation](t, w)
	assert.Equal(t, "Renamed", updated.Title)
	assert.True(t, updated.UpdatedAt.After(first.UpdatedAt))

	list = decode[[]api.Conversation](t, h.do(http.MethodGet, "/rest/v1/conversations", token, nil))
	assert.Equal(t, first.ID, list[0].ID)

	// touch only
	w = h.do(http.MethodPatch, "/rest/v1/conversations/"+second.ID, token, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Second", decode[api.Conversation](t, w).Title)

	w = h.do(http.MethodDelete, "/rest/v1/conversations/"+first.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodDelete, "/rest/v1/conversations/"+first.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversationsAreOwnerScoped(t *testing.T) {
	h := newHarness(t, "")
	owner, _ := h.signUp("owner@example.com")
	intruder, _ := h.signUp("intruder@example.com")

	conv := decode[api.Conversation](t, h.do(http.MethodPost, "/rest/v1/conversations", owner, api.CreateConversationRequest{Title: "Mine"}))

	assert.Empty(t, decode[[]api.Conversation](t, h.do(http.MethodGet, "/rest/v1/conversations", intruder, nil)))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodDelete, "/rest/v1/conversations/"+conv.ID, intruder, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/rest/v1/conversations/"+conv.ID+"/messages", intruder, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodPost, "/rest/v1/conversations/"+conv.ID+"/messages", intruder,
		api.CreateMessageRequest{Role: "user", Content: "hi"}).Code)

	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/rest/v1/conversations", "", nil).Code)
}

func TestMessagesAppendAndCascade(t *testing.T) {
	h := newHarness(t, "")
	token, _ := h.signUp("msgs@example.com")
	conv := decode[api.Conversation](t, h.do(http.MethodPost, "/rest/v1/conversations", token, api.CreateConversationRequest{Title: "T"}))
	base := "/rest/v1/conversations/" + conv.ID + "/messages"

	userID := uuid.NewString()
	w := h.do(http.MethodPost, base, token, api.CreateMessageRequest{ID: userID, Role: "user", Content: "Analyze this image", Images: []string{"http://x/u/a.png"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = h.do(http.MethodPost, base, token, api.CreateMessageRequest{Role: "assistant", Content: "Looks good"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// same client id twice
	w = h.do(http.MethodPost, base, token, api.CreateMessageRequest{ID: userID, Role: "user", Content: "again"})
	assert.Equal(t, http.StatusConflict, w.Code)

	msgs := decode[[]api.Message](t, h.do(http.MethodGet, base, token, nil))
	require.Len(t, msgs, 2)
	assert.Equal(t, userID, msgs[0].ID)
	assert.Equal(t, []string{"http://x/u/a.png"}, msgs[0].Images)
	assert.Equal(t, "assistant", msgs[1].Role)

	require.Equal(t, http.StatusOK, h.do(http.MethodDelete, "/rest/v1/conversations/"+conv.ID, token, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, base, token, nil).Code)
}

func TestMessageValidation(t *testing.T) {
	h := newHarness(t, "")
	token, _ := h.signUp("valid@example.com")
	conv := decode[api.Conversation](t, h.do(http.MethodPost, "/rest/v1/conversations", token, api.CreateConversationRequest{Title: "T"}))
	base := "/rest/v1/conversations/" + conv.ID + "/messages"

	bad := []api.CreateMessageRequest{
		{Role: "user", Content: "  "},
		{Role: "system", Content: "x"},
		{Role: "assistant", Content: "x", Images: []string{"http://x/a.png"}},
		{ID: "not-a-uuid", Role: "user", Content: "x"},
	}
	for _, m := range bad {
		assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, base, token, m).Code, "%+v", m)
	}
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/rest/v1/conversations", token, api.CreateConversationRequest{Title: " "}).Code)
}
