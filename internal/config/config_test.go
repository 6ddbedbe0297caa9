package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGER_TEST_ENV_VALUE=from-file\n"), 0o600))
	t.Setenv("LEDGER_TEST_ENV_VALUE", "")
	require.NoError(t, os.Unsetenv("LEDGER_TEST_ENV_VALUE"))

	loaded, err := LoadEnv(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".env"), loaded)
	assert.Equal(t, "from-file", os.Getenv("LEDGER_TEST_ENV_VALUE"))
}

func TestLoadEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LEDGER_TEST_ENV_VALUE=from-file\n"), 0o600))
	t.Setenv("LEDGER_TEST_ENV_VALUE", "from-env")

	_, err := LoadEnv(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", os.Getenv("LEDGER_TEST_ENV_VALUE"))
}

func TestLoadEnv_NoFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	require.NoError(t, os.Mkdir(dir, 0o750))

	loaded, err := LoadEnv(dir)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
