package action

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/circles/internal/cli"
	"github.com/thenoetrevino/circles/internal/testutil"
	clitest "github.com/thenoetrevino/circles/internal/testutil/cli"
)

func TestAddAndToggle(t *testing.T) {
	ctx := context.Background()
	_, app := clitest.SetupCLITest(t)

	_, err := app.Sync.Resume(ctx)
	require.NoError(t, err)
	noteID, err := app.Sync.AddNote(ctx, "ownership rules")
	require.NoError(t, err)

	output, err := clitest.ExecuteCLICommand(t, app, AddCmd(), []string{noteID, "read", "chapter", "4", "--quiet"})
	require.NoError(t, err)
	actionID := strings.TrimSpace(output)
	assert.True(t, strings.HasPrefix(actionID, "action-"))

	output, err = clitest.ExecuteCLICommand(t, app, ToggleCmd(), []string{noteID, actionID, "--json"})
	require.NoError(t, err)
	data := testutil.ParseJSON(t, output)["data"].(map[string]any)
	action := data["action"].(map[string]any)
	assert.Equal(t, "read chapter 4", action["text"])
	assert.Equal(t, true, action["completed"])

	output, err = clitest.ExecuteCLICommand(t, app, ToggleCmd(), []string{noteID, actionID})
	require.NoError(t, err)
	assert.Contains(t, output, "Marked not done")

	board, err := app.Sync.Current(ctx)
	require.NoError(t, err)
	require.Len(t, board.Notes[0].NextActions, 1)
	assert.False(t, board.Notes[0].NextActions[0].Completed)
}

func TestToggle_NotFound(t *testing.T) {
	ctx := context.Background()
	_, app := clitest.SetupCLITest(t)

	_, err := app.Sync.Resume(ctx)
	require.NoError(t, err)
	noteID, err := app.Sync.AddNote(ctx, "lifetimes")
	require.NoError(t, err)

	_, err = clitest.ExecuteCLICommand(t, app, ToggleCmd(), []string{noteID, "action-nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cli.ErrActionNotFound)

	_, err = clitest.ExecuteCLICommand(t, app, AddCmd(), []string{"note-nope", "do", "it"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cli.ErrNoteNotFound)
}
