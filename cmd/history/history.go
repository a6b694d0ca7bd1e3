package history

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/util/command"
)

const (
	pageFlag    = "page"
	sizeFlag    = "size"
	networkFlag = "network"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("history",
		newList(),
		newShow(),
		newRelease(),
	)
}

func newList() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists recorded swaps, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				records, total, err := s.Swap.History(ctx, v.GetInt(pageFlag), v.GetInt(sizeFlag))
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd
				fmt.Fprintln(w, "TIME\tNETWORK\tSTATUS\tIN\tOUT\tTX IN\tTX OUT")
				for _, r := range records {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s %s\t%s\t%s\n",
						r.Timestamp.Format("2006-01-02 15:04:05"), r.Network, r.Status,
						r.AmountIn, r.TokenIn, r.AmountOut, r.TokenOut, r.TxHashIn, r.TxHashOut)
				}
				if err := w.Flush(); err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d of %d records\n", len(records), total)
				return err
			})
		},
	}

	cmd.Flags().Int(pageFlag, 1, "Page, starting at 1")
	cmd.Flags().Int(sizeFlag, history.DefaultPageSize, "Records per page")

	_ = v.BindPFlag(pageFlag, cmd.Flags().Lookup(pageFlag))
	_ = v.BindPFlag(sizeFlag, cmd.Flags().Lookup(sizeFlag))

	return cmd
}

func newShow() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "show <tx_hash>",
		Short: "Prints the swap holding a transaction hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				rec, err := s.Swap.FindByHash(ctx, v.GetString(networkFlag), args[0])
				if err != nil {
					return err
				}

				out, err := json.MarshalIndent(rec, "", "  ")
				if err != nil {
					return err
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return err
			})
		},
	}

	cmd.Flags().String(networkFlag, "", "Network the hash belongs to, used to normalize it")
	_ = v.BindPFlag(networkFlag, cmd.Flags().Lookup(networkFlag))

	return cmd
}

func newRelease() *cobra.Command {
	return &cobra.Command{
		Use:   "release <tx_hash>",
		Short: "Lifts the hold on an inbound transaction after manual review",
		Long: `Lifts the hold on an inbound transaction after manual review.
The hash must be given as logged, lowercase and 0x-prefixed for EVM networks.
Once released the deposit can be processed again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.WithServer(cmd.Context(), config.DefaultServiceConfigFromEnv(), func(ctx context.Context, s *api.Server) error {
				if err := s.History.Unhold(ctx, args[0]); err != nil {
					return err
				}

				_, err := fmt.Fprintf(cmd.OutOrStdout(), "released %s\n", args[0])
				return err
			})
		},
	}
}
