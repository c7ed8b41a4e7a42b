package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"

	"cofounder/middleware"
	"cofounder/pkg/logger"
	"cofounder/pkg/services"
	"cofounder/pkg/store"
	tokenstore "cofounder/pkg/token"
	"cofounder/routes"
)

const testBucket = "chat-uploads"

type fakeCompleter struct {
	reply  string
	err    error
	panics bool
	calls  int
	got    []openai.ChatCompletionMessage
}

func (f *fakeCompleter) Complete(_ context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	f.calls++
	f.got = messages
	if f.panics {
		panic("completion client bug")
	}
	return f.reply, f.err
}

type harness struct {
	t         *testing.T
	r         *gin.Engine
	identity  *services.IdentityService
	completer *fakeCompleter
	profiles  store.ProfileRepo
}

func newHarness(t *testing.T, anonKey string) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Nop()

	db, err := store.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared", log)
	require.NoError(t, err)
	revoked := tokenstore.NewMemoryStore(100)
	t.Cleanup(revoked.Close)
	blobs, err := services.NewDiskStore(t.TempDir(), "http://localhost:5000", testBucket)
	require.NoError(t, err)

	h := &harness{
		t:         t,
		identity:  services.NewIdentityService(store.NewUserRepo(db), revoked, "test-secret", time.Hour, log),
		completer: &fakeCompleter{reply: "Here is a plan."},
		profiles:  store.NewProfileRepo(db),
	}
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.CORS([]string{"http://localhost:3000"}))
	routes.RegisterRoutes(r, routes.Deps{
		AnonKey:       anonKey,
		Bucket:        testBucket,
		Identity:      h.identity,
		Relay:         services.NewRelay(h.profiles, h.completer, log),
		Uploads:       services.NewUploadService(blobs, log),
		Blobs:         blobs,
		Conversations: store.NewConversationRepo(db),
		Messages:      store.NewMessageRepo(db),
		Profiles:      h.profiles,
		Log:           log,
	})
	h.r = r
	return h
}

// signUp registers a fresh user and returns its bearer token and id.
func (h *harness) signUp(email string) (string, string) {
	h.t.Helper()
	user, err := h.identity.SignUp(context.Background(), email, "launch2024")
	require.NoError(h.t, err)
	token, err := h.identity.Issue(user.ID)
	require.NoError(h.t, err)
	return token, user.ID
}

func (h *harness) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	h.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	case []byte:
		rd = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
