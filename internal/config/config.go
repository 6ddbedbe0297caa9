// Package config loads the application configuration. Values come from
// defaults, an optional config.yaml, a .env file and the environment, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads the first .env file found in dir or its parent. Variables
// already set in the environment are not overridden. It returns the loaded
// path, or "" when no file exists.
func LoadEnv(dir string) (string, error) {
	for _, candidate := range []string{
		filepath.Join(dir, ".env"),
		filepath.Join(dir, "..", ".env"),
	} {
		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", err
		}
		if err := godotenv.Load(candidate); err != nil {
			return "", fmt.Errorf("load %s: %w", candidate, err)
		}
		return candidate, nil
	}
	return "", nil
}
