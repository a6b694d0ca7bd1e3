package address

import (
	"context"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/chainswap/internal/api"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/util/command"
	"github/chapool/chainswap/internal/wallet/adapter"
	walletaddress "github/chapool/chainswap/internal/wallet/address"
	"github/chapool/chainswap/internal/wallet/chain"
)

const (
	ownerFlag   = "owner"
	purposeFlag = "purpose"
	networkFlag = "network"
)

func New() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "address",
		Short: "Prints derived addresses",
		Long: `Prints the address derived for owner and purpose on every known network.

Defaults to the pool owner and purpose of the swap config. Networks without
configured RPC endpoints are included, no node is contacted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				owner := v.GetString(ownerFlag)
				if owner == "" {
					owner = cfg.Swap.Owner
				}
				purpose := v.GetString(purposeFlag)
				if purpose == "" {
					purpose = cfg.Swap.Purpose
				}

				return printAddresses(ctx, cmd, s, owner, purpose, v.GetStringSlice(networkFlag))
			})
		},
	}

	cmd.Flags().String(ownerFlag, "", "Key owner, defaults to SWAP_OWNER")
	cmd.Flags().String(purposeFlag, "", "Key purpose, defaults to SWAP_PURPOSE")
	cmd.Flags().StringSlice(networkFlag, nil, "Limit output to these networks")

	_ = v.BindPFlag(ownerFlag, cmd.Flags().Lookup(ownerFlag))
	_ = v.BindPFlag(purposeFlag, cmd.Flags().Lookup(purposeFlag))
	_ = v.BindPFlag(networkFlag, cmd.Flags().Lookup(networkFlag))

	return cmd
}

func printAddresses(ctx context.Context, cmd *cobra.Command, s *api.Server, owner string, purpose string, only []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd
	fmt.Fprintln(w, "NETWORK\tKIND\tADDRESS")

	for _, n := range s.Chains.ListNetworks() {
		if len(only) > 0 && !slices.Contains(only, n.Name) {
			continue
		}

		addr, err := derive(ctx, s, n, owner, purpose)
		if err != nil {
			return fmt.Errorf("failed to derive %s address: %w", n.Name, err)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\n", n.Name, n.Kind, addr)
	}

	return w.Flush()
}

func derive(ctx context.Context, s *api.Server, n *chain.Network, owner string, purpose string) (string, error) {
	key, err := s.Keys.GetOrDeriveKey(ctx, owner, purpose, adapter.SchemeFor(n.Kind))
	if err != nil {
		return "", err
	}

	var opts []walletaddress.Option
	if n.Kind == chain.KindBitcoin && n.Testnet {
		opts = append(opts, walletaddress.WithBitcoinParams(&chaincfg.TestNet3Params))
	}

	return walletaddress.ToAddress(key.PublicKey, n.Kind, opts...)
}
