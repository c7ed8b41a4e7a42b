// Command cofounder is a terminal client for the co-founder chat backend.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	anonKey     string
	sessionPath string
	timeout     time.Duration
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "cofounder",
	Short: "Chat with your AI co-founder from the terminal",
	Long: `cofounder talks to a co-founder chat server: sign in, keep conversations,
attach files and get advice grounded in your founder profile.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("COFOUNDER_SERVER", "http://127.0.0.1:5000"), "Server base URL (or set COFOUNDER_SERVER)")
	rootCmd.PersistentFlags().StringVar(&anonKey, "anon-key", os.Getenv("ANON_KEY"), "Anonymous API key sent as apikey (or set ANON_KEY)")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session-file", "~/.cofounder/session.json", "Where the signed in session is kept")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 150*time.Second, "Per request timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(signupCmd, signinCmd, signoutCmd, chatCmd, conversationsCmd, profileCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
