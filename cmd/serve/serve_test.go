package serve_test

import (
	"testing"

	"fjacquet/statement-ledger/cmd/serve"

	"github.com/stretchr/testify/assert"
)

func TestServeCommand_Metadata(t *testing.T) {
	assert.Equal(t, "serve", serve.Cmd.Use)
	assert.NotNil(t, serve.Cmd.RunE)

	flag := serve.Cmd.Flags().Lookup("addr")
	if assert.NotNil(t, flag) {
		assert.Empty(t, flag.DefValue)
	}
}
