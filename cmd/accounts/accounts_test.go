package accounts_test

import (
	"testing"

	"fjacquet/spendwise/cmd/accounts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountsCommand_Metadata(t *testing.T) {
	assert.Equal(t, "accounts", accounts.Cmd.Use)
	assert.Contains(t, accounts.Cmd.Short, "bank accounts")
	assert.Contains(t, accounts.Cmd.Long, "Balances move automatically")
	assert.NotNil(t, accounts.Cmd.PersistentFlags().Lookup("json"))
}

func TestAccountsCommand_SubCommands(t *testing.T) {
	for _, name := range []string{"add", "list", "update", "delete"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := accounts.Cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
			assert.NotNil(t, sub.RunE)
		})
	}

	add, _, err := accounts.Cmd.Find([]string{"add"})
	require.NoError(t, err)
	for _, flag := range []string{"name", "type", "currency", "balance", "description"} {
		assert.NotNil(t, add.Flags().Lookup(flag), flag)
	}
}
