package keystore

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github/chapool/chainswap/internal/config"
	"github/chapool/chainswap/internal/wallet/keystore"
	"github/chapool/chainswap/internal/wallet/seed"
)

func newCreate() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Encrypts a mnemonic into a new keystore file",
		Long: `Encrypts a BIP39 mnemonic with a password into a keystore v3 file.

The mnemonic is read from stdin unless --generate is given. An existing file is never overwritten.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultServiceConfigFromEnv()

			path := v.GetString(fileFlag)
			if path == "" {
				path = cfg.Keys.KeystoreFile
			}
			if path == "" {
				return errNoKeystoreFile
			}

			mnemonic, err := readMnemonic(cmd, v.GetBool(generateFlag))
			if err != nil {
				return err
			}

			password, err := prompt(cmd, "Password", true)
			if err != nil {
				return err
			}
			confirm, err := prompt(cmd, "Repeat password", true)
			if err != nil {
				return err
			}
			if password == "" || password != confirm {
				return errors.New("passwords are empty or do not match")
			}

			ks, err := keystore.NewService(path, keystore.DefaultScryptParams()).Create(cmd.Context(), mnemonic, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Keystore %s written to %s\n", ks.ID, path)

			if v.GetBool(generateFlag) {
				fmt.Fprintln(cmd.OutOrStdout(), "Write down the generated mnemonic, it is not shown again:")
				fmt.Fprintln(cmd.OutOrStdout(), mnemonic)
			}

			return nil
		},
	}

	cmd.Flags().String(fileFlag, "", "Keystore file, defaults to KEYS_KEYSTORE_FILE")
	cmd.Flags().Bool(generateFlag, false, "Generate a new mnemonic instead of reading one")

	_ = v.BindPFlag(fileFlag, cmd.Flags().Lookup(fileFlag))
	_ = v.BindPFlag(generateFlag, cmd.Flags().Lookup(generateFlag))

	return cmd
}

func readMnemonic(cmd *cobra.Command, generate bool) (string, error) {
	if generate {
		return seed.GenerateMnemonic()
	}

	mnemonic, err := prompt(cmd, "Mnemonic", true)
	if err != nil {
		return "", err
	}

	// Initialize validates the checksum of the word list
	m := seed.NewManager()
	if err := m.Initialize(mnemonic, ""); err != nil {
		return "", errors.Wrap(err, "invalid mnemonic")
	}
	m.Clear()

	return mnemonic, nil
}
