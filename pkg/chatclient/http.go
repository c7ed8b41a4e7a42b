package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"resty.dev/v3"

	"cofounder/pkg/api"
)

// ClientConfig describes how to reach the server.
type ClientConfig struct {
	BaseURL string
	AnonKey string
	Bucket  string
	// Timeout bounds every request, the relay round trip included.
	Timeout time.Duration
}

// Client talks to the server over HTTP. It implements Backend and Relay.
type Client struct {
	http   *resty.Client
	bucket string

	mu    sync.RWMutex
	token string
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 150 * time.Second
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "chat-uploads"
	}
	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("User-Agent", "cofounder-cli/1.0").
		SetTimeout(cfg.Timeout)
	if cfg.AnonKey != "" {
		hc.SetHeader("apikey", cfg.AnonKey)
	}
	return &Client{http: hc, bucket: cfg.Bucket}
}

// SetToken sets the bearer token sent with authenticated requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) request(ctx context.Context) *resty.Request {
	r := c.http.R().SetContext(ctx)
	c.mu.RLock()
	if c.token != "" {
		r.SetHeader("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()
	return r
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*api.Session, error) {
	return c.authenticate(ctx, "sign up", "/auth/v1/signup", email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*api.Session, error) {
	return c.authenticate(ctx, "sign in", "/auth/v1/token", email, password)
}

func (c *Client) authenticate(ctx context.Context, op, path, email, password string) (*api.Session, error) {
	var out api.Session
	resp, err := c.request(ctx).
		SetBody(api.Credentials{Email: email, Password: password}).
		SetResult(&out).
		Post(path)
	if err := check(op, resp, err); err != nil {
		return nil, err
	}
	c.SetToken(out.AccessToken)
	return &out, nil
}

// SignOut revokes the current token on the server and forgets it locally.
func (c *Client) SignOut(ctx context.Context) error {
	resp, err := c.request(ctx).Post("/auth/v1/logout")
	c.SetToken("")
	return check("sign out", resp, err)
}

func (c *Client) Profile(ctx context.Context) (*api.Profile, error) {
	var out api.Profile
	resp, err := c.request(ctx).SetResult(&out).Get("/rest/v1/profile")
	if err := check("get profile", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveProfile(ctx context.Context, p api.Profile) (*api.Profile, error) {
	var out api.Profile
	resp, err := c.request(ctx).SetBody(p).SetResult(&out).Put("/rest/v1/profile")
	if err := check("save profile", resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListConversations(ctx context.Context) ([]api.Conversation, error) {
	var out []api.Conversation
	resp, err := c.request(ctx).SetResult(&out).Get("/rest/v1/conversations")
	if err := check("list conversations", resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateConversation(ctx context.Context, title string) (api.Conversation, error) {
	var out api.Conversation
	resp, err := c.request(ctx).
		SetBody(api.CreateConversationRequest{Title: title}).
		SetResult(&out).
		Post("/rest/v1/conversations")
	return out, check("create conversation", resp, err)
}

func (c *Client) UpdateConversation(ctx context.Context, id string, title *string) (api.Conversation, error) {
	var out api.Conversation
	resp, err := c.request(ctx).
		SetBody(api.UpdateConversationRequest{Title: title}).
		SetResult(&out).
		Patch("/rest/v1/conversations/" + id)
	return out, check("update conversation", resp, err)
}

func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	resp, err := c.request(ctx).Delete("/rest/v1/conversations/" + id)
	return check("delete conversation", resp, err)
}

func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]api.Message, error) {
	var out []api.Message
	resp, err := c.request(ctx).SetResult(&out).Get("/rest/v1/conversations/" + conversationID + "/messages")
	if err := check("list messages", resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) InsertMessage(ctx context.Context, conversationID string, msg api.CreateMessageRequest) (api.Message, error) {
	var out api.Message
	resp, err := c.request(ctx).
		SetBody(msg).
		SetResult(&out).
		Post("/rest/v1/conversations/" + conversationID + "/messages")
	return out, check("insert message", resp, err)
}

func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (api.UploadResponse, error) {
	var out api.UploadResponse
	resp, err := c.request(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		SetResult(&out).
		Put(fmt.Sprintf("/storage/v1/object/%s/%s", c.bucket, key))
	return out, check("upload "+key, resp, err)
}

func (c *Client) Chat(ctx context.Context, turns []api.Turn, conversationID string) (string, error) {
	var out api.ChatResponse
	resp, err := c.request(ctx).
		SetBody(api.ChatRequest{Messages: turns, ConversationID: &conversationID}).
		SetResult(&out).
		Post("/functions/v1/chat")
	if err := check("chat", resp, err); err != nil {
		return "", err
	}
	return out.Message, nil
}

func check(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsError() {
		return nil
	}
	body := resp.String()
	var e api.ErrorResponse
	msg := http.StatusText(resp.StatusCode())
	if json.Unmarshal([]byte(body), &e) == nil && e.Error != "" {
		msg = e.Error
	}
	return &APIError{Op: op, Status: resp.StatusCode(), Message: msg}
}
