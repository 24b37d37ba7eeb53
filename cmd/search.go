package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// errSearchFailed makes the process exit non-zero after the message is printed.
var errSearchFailed = errors.New("search did not produce listings")

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Runs one search and writes the result files",
		Long: `Runs a single search with the same deadline and error handling as the
HTTP endpoint and prints the message a client would see.`,
		Example: `  vacantes search "desarrollador go"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			outcome := appInstance.Search(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), outcome.UserMessage())
			if !outcome.OK() {
				return errSearchFailed
			}
			return nil
		},
	}
}
