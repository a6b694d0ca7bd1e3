package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/util/command"
)

func newLiveness() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Runs liveness probes",
		Long: `This command runs liveness probes against the swap history backend.
It exits with 1 if any probe fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				ctx, cancel := context.WithTimeout(ctx, cfg.Management.ProbeReadinessTimeout)
				defer cancel()

				start := time.Now()
				_, total, err := s.History.Paginate(ctx, 0, 1)
				if err != nil {
					log.Error().Err(err).Str("backend", cfg.History.Backend).Msg("History probe failed")
					return errors.Wrap(err, "history probe failed")
				}

				if v.GetBool(verboseFlag) {
					fmt.Fprintf(cmd.OutOrStdout(), "history (%s): %d records, %s\n", cfg.History.Backend, total, time.Since(start))
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")
	_ = v.BindPFlag(verboseFlag, cmd.Flags().Lookup(verboseFlag))

	return cmd
}
