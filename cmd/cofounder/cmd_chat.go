package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cofounder/pkg/chatclient"
)

var (
	chatPrompt       string
	chatConversation string
	chatAttach       []string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat. Plain lines are sent as messages; lines starting
with a slash are commands (type /help to list them).`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatPrompt, "prompt", "p", "", "Send this message first, e.g. a quick start prompt")
	chatCmd.Flags().StringVarP(&chatConversation, "conversation", "c", "", "Resume a conversation by list number or id")
	chatCmd.Flags().StringSliceVarP(&chatAttach, "attach", "a", nil, "Files to send with the first message, on their own when --prompt is empty")
}

const chatHelp = `Send an empty line to send staged files without text.

Commands:
  /attach <path>...  stage files for the next message
  /files             list staged files
  /remove <n>        unstage file n
  /new               start a new conversation
  /list              list conversations
  /open <n|id>       switch to a conversation
  /delete <n|id>     delete a conversation
  /history           print the current transcript
  /help              show this help
  /quit              leave`

func runChat(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.withTimeout(ctx, a.store.LoadConversations); err != nil {
		return err
	}
	if chatConversation != "" {
		if err := a.open(ctx, chatConversation); err != nil {
			return err
		}
	}
	if len(chatAttach) > 0 {
		a.attach(chatAttach)
	}
	if chatPrompt != "" || len(a.uploader.Pending()) > 0 {
		a.send(ctx, chatPrompt)
	}

	fmt.Fprintln(a.out, "Type a message, or /help for commands.")
	return a.repl(ctx, cmd.InOrStdin())
}

func (a *app) withTimeout(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := commandContext(ctx)
	defer cancel()
	return fn(ctx)
}

func (a *app) repl(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(a.out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(a.out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch classifyLine(line, len(a.uploader.Pending())) {
		case lineSkip:
		case lineSend:
			a.send(ctx, line)
		case lineCommand:
			if quit := a.command(ctx, line); quit {
				return nil
			}
		}
	}
}

type lineKind int

const (
	lineSkip lineKind = iota
	lineSend
	lineCommand
)

// classifyLine decides what a REPL line does. An empty line sends the staged files on their
// own when there are any.
func classifyLine(line string, pending int) lineKind {
	switch {
	case line == "" && pending == 0:
		return lineSkip
	case strings.HasPrefix(line, "/"):
		return lineCommand
	default:
		return lineSend
	}
}

// command runs a slash command and reports whether the session should end.
func (a *app) command(ctx context.Context, line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(a.out, chatHelp)
	case "/attach":
		if rest == "" {
			fmt.Fprintln(a.out, "usage: /attach <path>...")
			break
		}
		a.attach(strings.Fields(rest))
	case "/files":
		a.printPending()
	case "/remove":
		n, err := strconv.Atoi(rest)
		if err != nil {
			fmt.Fprintln(a.out, "usage: /remove <n>")
			break
		}
		if err := a.uploader.RemoveFile(n - 1); err != nil {
			fmt.Fprintln(a.out, err)
			break
		}
		a.printPending()
	case "/new":
		a.store.NewChat()
		fmt.Fprintln(a.out, "Started a new conversation.")
	case "/list":
		if err := a.withTimeout(ctx, a.store.LoadConversations); err == nil {
			writeConversations(a.out, a.store.Conversations())
		}
	case "/open":
		if err := a.open(ctx, rest); err != nil {
			fmt.Fprintln(a.out, err)
		}
	case "/delete":
		conv, ok := pickConversation(a.store.Conversations(), rest)
		if !ok {
			fmt.Fprintf(a.out, "no conversation %q\n", rest)
			break
		}
		if err := a.withTimeout(ctx, func(ctx context.Context) error { return a.store.DeleteConversation(ctx, conv.ID) }); err == nil {
			fmt.Fprintf(a.out, "Deleted %q.\n", conv.Title)
		}
	case "/history":
		a.printTranscript()
	default:
		fmt.Fprintf(a.out, "unknown command %s, try /help\n", name)
	}
	return false
}

func (a *app) open(ctx context.Context, ref string) error {
	conv, ok := pickConversation(a.store.Conversations(), ref)
	if !ok {
		return fmt.Errorf("no conversation %q", ref)
	}
	if err := a.withTimeout(ctx, func(ctx context.Context) error { return a.store.SelectConversation(ctx, conv.ID) }); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Opened %q.\n", conv.Title)
	a.printTranscript()
	return nil
}

func (a *app) attach(paths []string) {
	files := make([]chatclient.File, 0, len(paths))
	for _, p := range paths {
		f, err := chatclient.FileFromPath(p)
		if err != nil {
			fmt.Fprintln(a.out, err)
			continue
		}
		files = append(files, f)
	}
	a.uploader.SelectFiles(files)
	a.printPending()
}

func (a *app) printPending() {
	pending := a.uploader.Pending()
	if len(pending) == 0 {
		fmt.Fprintln(a.out, "No files staged.")
		return
	}
	for i, f := range pending {
		fmt.Fprintf(a.out, "  %d. %s (%s, %d KB)\n", i+1, f.Name, f.MIMEType, (f.Size+1023)/1024)
	}
}

// send uploads staged files, then sends text with their URLs and prints the reply.
func (a *app) send(ctx context.Context, text string) {
	ctx, cancel := commandContext(ctx)
	defer cancel()

	urls := a.uploader.Send(ctx)
	err := a.orch.SendMessage(ctx, text, urls)
	switch {
	case errors.Is(err, chatclient.ErrEmptyMessage):
		fmt.Fprintln(a.out, "Nothing to send.")
		return
	case err != nil:
		a.log.Debug("Send failed", "error", err)
		return
	}

	msgs := a.store.Messages()
	if n := len(msgs); n > 0 && msgs[n-1].Role == "assistant" {
		a.printReply(msgs[n-1].Content)
	}
}

func (a *app) printTranscript() {
	for _, m := range a.store.Messages() {
		if m.Role == "assistant" {
			a.printReply(m.Content)
			continue
		}
		fmt.Fprintf(a.out, "you: %s\n", m.Content)
		for _, u := range m.Images {
			fmt.Fprintf(a.out, "     [%s]\n", u)
		}
		if m.Status == chatclient.StatusFailed {
			fmt.Fprintln(a.out, "     (not saved)")
		}
	}
}
