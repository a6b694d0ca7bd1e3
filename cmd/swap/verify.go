package swap

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/util/command"
)

func newVerify() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <chain> <tx_hash>",
		Short: "Verifies an inbound transaction without paying out",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				dep, err := s.Swap.VerifyInbound(ctx, args[0], args[1])
				if err != nil {
					return err
				}

				return printJSON(cmd, map[string]any{
					"network":       dep.Network,
					"tx_hash":       dep.TxHash,
					"sender":        dep.Sender,
					"recipient":     dep.Recipient,
					"token":         dep.Token.Symbol,
					"token_address": dep.TokenAddress,
					"amount":        dep.Amount,
					"token_out":     dep.TokenOut,
					"amount_out":    dep.AmountOut,
				})
			})
		},
	}
}
