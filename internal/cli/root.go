// Package cli is the readlog command tree. Every command except
// hash-password talks to a running api-server over HTTP.
package cli

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

var ValidFormats = []string{"text", "json"}

type RootOptions struct {
	API       string
	TokenFile string
	Output    string

	// Client is replaced in tests.
	Client *http.Client
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Client: &http.Client{Timeout: 15 * time.Second}}

	cmd := &cobra.Command{
		Use:           "readlog",
		Short:         "Record and query the books you read",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Output) {
				return fmt.Errorf("invalid output %q: must be one of %v", opts.Output, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.API, "api", defaultBaseURL, "API base URL")
	cmd.PersistentFlags().StringVar(&opts.TokenFile, "token-file", defaultTokenPath(), "token file path")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", "text", "output format (json|text)")

	cmd.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newAddCommand(opts),
		newUndoCommand(opts),
		newLastCommand(opts),
		newTimesReadCommand(opts),
		newLastReadCommand(opts),
		newCountCommand(opts),
		newBooksCommand(opts),
		newHistoryCommand(opts),
		newListenCommand(opts),
		newHashPasswordCommand(),
	)
	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.readlog-token.json"
	}
	return filepath.Join(home, ".readlog", "token.json")
}
