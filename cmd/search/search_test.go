package search_test

import (
	"testing"

	"fjacquet/spendwise/cmd/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCommand_Metadata(t *testing.T) {
	assert.Equal(t, "search <query>", search.Cmd.Use)
	assert.Contains(t, search.Cmd.Long, "At most 5 transactions")
	assert.NotNil(t, search.Cmd.RunE)
	assert.Error(t, search.Cmd.Args(search.Cmd, nil))
	assert.NoError(t, search.Cmd.Args(search.Cmd, []string{"coffee"}))
}

func TestSearchCommand_Flags(t *testing.T) {
	flag := search.Cmd.Flags().Lookup("json")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
