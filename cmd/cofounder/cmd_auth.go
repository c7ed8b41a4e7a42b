package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cofounder/pkg/api"
	"cofounder/pkg/chatclient"
)

var (
	authEmail    string
	authPassword string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, (*chatclient.Client).SignUp)
	},
}

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, (*chatclient.Client).SignIn)
	},
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Revoke the saved session and forget it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if errors.Is(err, errNoSession) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := commandContext(cmd.Context())
		defer cancel()
		if err := a.client.SignOut(ctx); err != nil {
			a.log.Warn("Server sign out failed", "error", err)
		}
		if err := removeSession(a.sessPath); err != nil {
			return fmt.Errorf("remove session: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, signinCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", os.Getenv("COFOUNDER_PASSWORD"), "Account password (or set COFOUNDER_PASSWORD, or type it when asked)")
		_ = c.MarkFlagRequired("email")
	}
}

type authFunc func(c *chatclient.Client, ctx context.Context, email, password string) (*api.Session, error)

func authenticate(cmd *cobra.Command, fn authFunc) error {
	password := authPassword
	if password == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	path, err := resolveSessionPath(sessionPath)
	if err != nil {
		return err
	}
	client := newClient()
	defer client.Close()

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()
	sess, err := fn(client, ctx, strings.TrimSpace(authEmail), password)
	if err != nil {
		return err
	}
	if err := saveSession(path, sess, time.Now()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s.\n", sess.User.Email)
	return nil
}
