package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/chainswap/cmd/address"
	"github/chapool/chainswap/cmd/env"
	"github/chapool/chainswap/cmd/history"
	"github/chapool/chainswap/cmd/keystore"
	"github/chapool/chainswap/cmd/probe"
	"github/chapool/chainswap/cmd/server"
	"github/chapool/chainswap/cmd/swap"
	"github/chapool/chainswap/internal/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Version: config.GetFormattedBuildArgs(),
	Use:     "app",
	Short:   config.ModuleName,
	Long: fmt.Sprintf(`%v

A token swap pool across EVM, Solana and Tron networks.
Requires configuration through ENV.`, config.ModuleName),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// attach the subcommands
	rootCmd.AddCommand(
		address.New(),
		env.New(),
		history.New(),
		keystore.New(),
		probe.New(),
		server.New(),
		swap.New(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}
