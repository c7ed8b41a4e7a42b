package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"

	"cofounder/pkg/chatclient"
	"cofounder/pkg/logger"
)

// app wires the client SDK for one command invocation.
type app struct {
	client   *chatclient.Client
	session  *chatclient.Session
	store    *chatclient.Store
	orch     *chatclient.Orchestrator
	uploader *chatclient.Uploader
	log      *logger.Logger
	out      io.Writer
	render   *glamour.TermRenderer
	sessPath string
}

func newLogger() (*logger.Logger, error) {
	if verbose {
		return logger.New("development")
	}
	return logger.Nop(), nil
}

func newClient() *chatclient.Client {
	return chatclient.NewClient(chatclient.ClientConfig{
		BaseURL: serverURL,
		AnonKey: anonKey,
		Timeout: timeout,
	})
}

// newApp loads the saved session and builds the store, orchestrator and uploader on it.
func newApp() (*app, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	path, err := resolveSessionPath(sessionPath)
	if err != nil {
		return nil, err
	}
	sess, err := loadSession(path, time.Now())
	if err != nil {
		return nil, err
	}

	client := newClient()
	client.SetToken(sess.AccessToken)
	notify := terminalNotifier(os.Stderr)

	store := chatclient.NewStore(sess, client, notify, log)
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		log.Warn("Markdown rendering disabled", "error", err)
		renderer = nil
	}
	return &app{
		client:   client,
		session:  sess,
		store:    store,
		orch:     chatclient.NewOrchestrator(sess, store, client, client, notify, log),
		uploader: chatclient.NewUploader(sess, client, notify, filePreview, log),
		log:      log,
		out:      os.Stdout,
		render:   renderer,
		sessPath: path,
	}, nil
}

func (a *app) Close() {
	a.session.Close()
	_ = a.client.Close()
	_ = a.log.Sync()
}

// printReply writes an assistant reply, rendered as markdown when possible.
func (a *app) printReply(text string) {
	if a.render != nil {
		if out, err := a.render.Render(text); err == nil {
			fmt.Fprint(a.out, out)
			return
		}
	}
	fmt.Fprintln(a.out, text)
}

func terminalNotifier(w io.Writer) chatclient.Notifier {
	return chatclient.NotifierFunc(func(n chatclient.Notification) {
		prefix := ""
		if n.Variant == chatclient.VariantDestructive {
			prefix = "! "
		}
		fmt.Fprintf(w, "%s%s: %s\n", prefix, n.Title, n.Description)
	})
}

// filePreview points at the file on disk; there is nothing to free.
func filePreview(f chatclient.File) (string, func(), error) {
	if f.Path == "" {
		return "", nil, fmt.Errorf("%s has no local path", f.Name)
	}
	return "file://" + f.Path, func() {}, nil
}

func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
