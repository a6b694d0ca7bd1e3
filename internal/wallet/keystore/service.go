package keystore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/util"
)

const keystoreFileMode = 0o600

type service struct {
	path   string
	params ScryptParams
}

// NewService creates a keystore service backed by the file at path
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(path string, params ScryptParams) Service {
	return &service{
		path:   path,
		params: params,
	}
}

// Create encrypts the mnemonic and writes the keystore file, refusing to overwrite an existing one
func (s *service) Create(ctx context.Context, mnemonic string, password string) (*KeystoreJSON, error) {
	log := util.LogFromContext(ctx)

	exists, err := s.Exists()
	if err != nil {
		return nil, errors.Wrap(err, "failed to check keystore existence")
	}
	if exists {
		return nil, ErrKeystoreExists
	}

	ks, err := encryptMnemonic(mnemonic, password, s.params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt mnemonic")
		return nil, errors.Wrap(err, "failed to encrypt mnemonic")
	}

	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal keystore JSON")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create keystore directory")
	}

	if err := os.WriteFile(s.path, data, keystoreFileMode); err != nil {
		return nil, errors.Wrap(err, "failed to write keystore file")
	}

	log.Info().Str("keystore_id", ks.ID).Str("path", s.path).Msg("Keystore created")

	return ks, nil
}

// Load decrypts the mnemonic from the keystore file
func (s *service) Load(ctx context.Context, password string) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrKeystoreNotFound
		}
		return "", errors.Wrap(err, "failed to read keystore file")
	}

	var ks KeystoreJSON
	if err := json.Unmarshal(data, &ks); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal keystore JSON")
	}

	mnemonic, err := decryptMnemonic(&ks, password)
	if err != nil {
		util.LogFromContext(ctx).Error().Err(err).Str("keystore_id", ks.ID).Msg("Failed to decrypt mnemonic")
		return "", err
	}

	return mnemonic, nil
}

// Exists checks if the keystore file exists
func (s *service) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}

	return false, errors.Wrap(err, "failed to stat keystore file")
}
