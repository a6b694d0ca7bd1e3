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
	"github/chapool/chainswap/internal/wallet/txbuilder"
	"golang.org/x/sync/errgroup"
)

func newReadiness() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Runs readiness probes",
		Long: `This command queries the pool balance on every enabled network to check
that its RPC endpoints answer. It exits with 1 if any probe fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				return probeNetworks(ctx, cmd, s, cfg, v.GetBool(verboseFlag))
			})
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")
	_ = v.BindPFlag(verboseFlag, cmd.Flags().Lookup(verboseFlag))

	return cmd
}

func probeNetworks(ctx context.Context, cmd *cobra.Command, s *api.Server, cfg config.Server, verbose bool) error {
	adapters := s.Adapters.List()
	if len(adapters) == 0 {
		return errors.New("no network enabled, set RPC_<NETWORK>_URLS")
	}

	lines := make([]string, len(adapters))

	g, ctx := errgroup.WithContext(ctx)
	for i, a := range adapters {
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, cfg.Management.ProbeReadinessTimeout)
			defer cancel()

			network := a.Network()
			start := time.Now()

			balance, err := a.NativeBalance(probeCtx, cfg.Swap.Owner, cfg.Swap.Purpose)
			if err != nil {
				log.Error().Err(err).Str("network", network.Name).Msg("Readiness probe failed")
				return errors.Wrapf(err, "%s probe failed", network.Name)
			}

			amount := txbuilder.FromBaseUnits(balance, network.NativeDecimals)
			lines[i] = fmt.Sprintf("%s: %s %s, %s", network.Name, amount, network.NativeSymbol, time.Since(start).Round(time.Millisecond))

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if verbose {
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}

	return nil
}
