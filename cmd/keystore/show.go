package keystore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/wallet/keystore"
)

func newShow() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Prints keystore metadata and checks the password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()

			path := v.GetString(fileFlag)
			if path == "" {
				path = cfg.Keys.KeystoreFile
			}
			if path == "" {
				return errNoKeystoreFile
			}

			raw, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrap(err, "failed to read keystore file")
			}

			var ks keystore.KeystoreJSON
			if err := json.Unmarshal(raw, &ks); err != nil {
				return errors.Wrap(err, "failed to parse keystore file")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "id:      %s\nversion: %d\ncipher:  %s\nkdf:     %s (n=%d r=%d p=%d)\n",
				ks.ID, ks.Version, ks.Crypto.Cipher, ks.Crypto.KDF,
				ks.Crypto.KDFParams.N, ks.Crypto.KDFParams.R, ks.Crypto.KDFParams.P)

			password := cfg.Keys.KeystorePassword
			if password == "" {
				if password, err = prompt(cmd, "Password", true); err != nil {
					return err
				}
			}

			mnemonic, err := keystore.NewService(path, keystore.DefaultScryptParams()).Load(cmd.Context(), password)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "password: ok")
			if v.GetBool(revealFlag) {
				fmt.Fprintln(cmd.OutOrStdout(), mnemonic)
			}

			return nil
		},
	}

	cmd.Flags().String(fileFlag, "", "Keystore file, defaults to KEYS_KEYSTORE_FILE")
	cmd.Flags().Bool(revealFlag, false, "Print the decrypted mnemonic")

	_ = v.BindPFlag(fileFlag, cmd.Flags().Lookup(fileFlag))
	_ = v.BindPFlag(revealFlag, cmd.Flags().Lookup(revealFlag))

	return cmd
}
