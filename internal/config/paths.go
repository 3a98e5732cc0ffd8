package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/forge/internal/constants"
	"github.com/mrz1836/forge/internal/errors"
)

// HomeDir returns the FORGE home directory: $FORGE_HOME when set,
// otherwise ~/.forge.
func HomeDir() (string, error) {
	if dir := os.Getenv(constants.EnvForgeHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.ForgeHome), nil
}

// GlobalConfigPath returns the full path to the global configuration file.
func GlobalConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", errors.Wrap(err, "get global config path")
	}
	return filepath.Join(dir, constants.GlobalConfigName), nil
}

// ProjectConfigPath returns the path of the project configuration file,
// relative to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.ProjectConfigDir, constants.GlobalConfigName)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
