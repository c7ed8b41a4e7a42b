package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/url"
	"path"
	"strings"

	"github.com/sashabaranov/go-openai"

	"cofounder/models"
	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/store"
)

// FallbackReply is returned when the completion service answers without any text.
const FallbackReply = "I apologize, but I couldn't generate a response. Please try again."

// Relay turns a client transcript into a completion request enriched with the caller's
// profile. It never writes to persistence.
type Relay struct {
	profiles  store.ProfileRepo
	completer Completer
	log       *logger.Logger
}

func NewRelay(profiles store.ProfileRepo, completer Completer, log *logger.Logger) *Relay {
	return &Relay{
		profiles:  profiles,
		completer: completer,
		log:       log.With("service", "Relay"),
	}
}

// Reply returns the assistant's answer to turns on behalf of userID.
func (r *Relay) Reply(ctx context.Context, userID string, turns []api.Turn) (string, error) {
	profile, err := r.profiles.Get(ctx, nil, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.log.Warn("Profile lookup failed, continuing without context", "user_id", userID, "error", err)
		}
		profile = nil
	}

	messages := BuildMessages(profile, turns)
	reply, err := r.completer.Complete(ctx, messages)
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if reply == "" {
		return FallbackReply, nil
	}
	return reply, nil
}

// BuildMessages prepends the system prompt to the transcript, in transcript order.
func BuildMessages(profile *models.Profile, turns []api.Turn) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: BuildSystemPrompt(profile),
	})
	for _, t := range turns {
		out = append(out, toCompletionMessage(t))
	}
	return out
}

// toCompletionMessage forwards image attachments of user turns as image parts and lists
// any other attachment as a text line.
func toCompletionMessage(t api.Turn) openai.ChatCompletionMessage {
	if len(t.Images) == 0 || t.Role != models.RoleUser {
		return openai.ChatCompletionMessage{Role: t.Role, Content: t.Content}
	}

	parts := make([]openai.ChatMessagePart, 0, len(t.Images)+1)
	var text strings.Builder
	text.WriteString(t.Content)
	var images []openai.ChatMessagePart
	for _, u := range t.Images {
		if isImageURL(u) {
			images = append(images, openai.ChatMessagePart{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: u, Detail: openai.ImageURLDetailAuto},
			})
			continue
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString("Attached file: " + u)
	}
	if text.Len() > 0 {
		parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: text.String()})
	}
	parts = append(parts, images...)
	return openai.ChatCompletionMessage{Role: t.Role, MultiContent: parts}
}

// isImageURL reports whether raw names an image the completion service can fetch. Images
// served from a loopback host are listed as text instead, since the provider cannot reach
// them and would fail every later request replaying the turn.
func isImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme == "data" {
		return strings.HasPrefix(u.Opaque, "image/")
	}
	if isLoopbackHost(u.Hostname()) {
		return false
	}
	return strings.HasPrefix(mime.TypeByExtension(strings.ToLower(path.Ext(u.Path))), "image/")
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}
