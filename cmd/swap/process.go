package swap

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/util/command"
)

const yesFlag = "yes"

func newProcess() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "process <chain> <tx_hash>",
		Short: "Processes an inbound transaction, paying out or returning the deposit",
		Long: `Processes an inbound transaction exactly like POST /api/v1/swaps.

Funds are moved. Pass --yes to confirm.`,
		Args: cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			if !v.GetBool(yesFlag) {
				log.Warn().Msg("Refusing to move funds without --yes")
				return cmd.Help()
			}

			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				rec, err := s.Swap.ProcessInbound(ctx, args[0], args[1])
				if err != nil {
					return err
				}

				return printJSON(cmd, rec)
			})
		},
	}

	cmd.Flags().Bool(yesFlag, false, "Confirm that funds may be moved")
	_ = v.BindPFlag(yesFlag, cmd.Flags().Lookup(yesFlag))

	return cmd
}
