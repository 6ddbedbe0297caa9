package rules_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/statement-ledger/cmd/rules"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLedger(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"LEDGER_AI_ENABLED", "LEDGER_AI_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY", "LEDGER_RULES_SEED_FILE", "LEDGER_STORE_DRIVER"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("LEDGER_STORE_PATH", filepath.Join(dir, "ledger.db"))
	t.Setenv("LEDGER_DATA_DIRECTORY", filepath.Join(dir, "data"))
	return dir
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRulesCommand_Run(t *testing.T) {
	dir := setupLedger(t)
	seed := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("rules:\n  - keyword: UBER\n    category: Transport\n  - keyword: IGA\n    category: Food\n"), 0o600))
	t.Setenv("LEDGER_RULES_SEED_FILE", seed)

	out, err := run(t, rules.Cmd)
	require.NoError(t, err)
	assert.Equal(t, "1\tUBER\tTransport\n2\tIGA\tFood\n", out)
}
