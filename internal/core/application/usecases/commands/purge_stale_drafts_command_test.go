package commands_test

import (
	"testing"
	"time"

	"expedition/internal/core/application/usecases/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPurgeStaleDraftsCommand_ValidInput(t *testing.T) {
	cmd, err := commands.NewPurgeStaleDraftsCommand(48 * time.Hour)
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Equal(t, 48*time.Hour, cmd.Retention())
}

func TestNewPurgeStaleDraftsCommand_InvalidRetention(t *testing.T) {
	for _, retention := range []time.Duration{0, -time.Minute} {
		_, err := commands.NewPurgeStaleDraftsCommand(retention)
		require.ErrorIs(t, err, commands.ErrRetentionIsInvalid)
	}
}

func TestPurgeStaleDraftsCommand_NotConstructedViaConstructor(t *testing.T) {
	err := commands.PurgeStaleDraftsCommand{}.Validate()
	require.ErrorIs(t, err, commands.ErrPurgeStaleDraftsCommandIsNotConstructed)
}

func TestEvictIdleSessionsCommand(t *testing.T) {
	require.NoError(t, commands.NewEvictIdleSessionsCommand().Validate())

	err := commands.EvictIdleSessionsCommand{}.Validate()
	require.ErrorIs(t, err, commands.ErrEvictIdleSessionsCommandIsNotConstructed)
}
