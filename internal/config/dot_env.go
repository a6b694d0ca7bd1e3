package config

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/subosito/gotenv"
)

type envSetter func(key string, value string) error

// DotEnvTryLoad forcefully overrides ENV variables through **a maybe available** .env file.
//
// This function always silently ignores errors while loading the file.
func DotEnvTryLoad(absolutePathToEnvFile string, setEnvFn envSetter) {
	err := DotEnvLoad(absolutePathToEnvFile, setEnvFn)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", absolutePathToEnvFile).Msg("Failed to parse .env file")
		}
	}
}

// DotEnvLoad forcefully overrides ENV variables through the supplied .env file.
func DotEnvLoad(absolutePathToEnvFile string, setEnvFn envSetter) error {
	file, err := os.Open(absolutePathToEnvFile)
	if err != nil {
		return err
	}
	defer file.Close()

	envs, err := gotenv.StrictParse(file)
	if err != nil {
		return err
	}

	for key, value := range envs {
		if err := setEnvFn(key, value); err != nil {
			return err
		}
	}

	return nil
}
