package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cofounder/pkg/api"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"convs"},
	Short:   "List or delete your conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listConversations(cmd)
	},
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listConversations(cmd)
	},
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <number|id>",
	Short: "Delete a conversation and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := commandContext(cmd.Context())
		defer cancel()
		if err := a.store.LoadConversations(ctx); err != nil {
			return err
		}
		conv, ok := pickConversation(a.store.Conversations(), args[0])
		if !ok {
			return fmt.Errorf("no conversation %q", args[0])
		}
		if err := a.store.DeleteConversation(ctx, conv.ID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", conv.Title)
		return nil
	},
}

func init() {
	conversationsCmd.AddCommand(conversationsListCmd, conversationsDeleteCmd)
}

func listConversations(cmd *cobra.Command) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()
	if err := a.store.LoadConversations(ctx); err != nil {
		return err
	}
	writeConversations(cmd.OutOrStdout(), a.store.Conversations())
	return nil
}

func writeConversations(w io.Writer, convs []api.Conversation) {
	if len(convs) == 0 {
		fmt.Fprintln(w, "No conversations yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tUPDATED\tID")
	for i, c := range convs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, c.Title, c.UpdatedAt.Local().Format("2006-01-02 15:04"), c.ID)
	}
	_ = tw.Flush()
}

// pickConversation resolves a 1-based list position or a conversation id.
func pickConversation(convs []api.Conversation, ref string) (api.Conversation, bool) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(convs) {
			return convs[n-1], true
		}
		return api.Conversation{}, false
	}
	for _, c := range convs {
		if c.ID == ref {
			return c, true
		}
	}
	return api.Conversation{}, false
}
