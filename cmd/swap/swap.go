package swap

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/chainswap/internal/util/command"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("swap",
		newVerify(),
		newProcess(),
	)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
