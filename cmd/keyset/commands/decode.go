package commands

import (
	"encoding/json"
	"strings"

	"github.com/ncobase/keyset/token"
	"github.com/spf13/cobra"
)

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <token>",
		Args:  cobra.ExactArgs(1),
		Short: "Print the content of a continuation token",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := token.Decode(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		},
	}
}
