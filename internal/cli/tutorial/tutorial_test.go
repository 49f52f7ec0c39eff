package tutorial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/circles/internal/testutil"
)

func TestTutorial_Raw(t *testing.T) {
	output, err := testutil.ExecuteCommand(t, TutorialCmd(), "--raw")
	require.NoError(t, err)
	assert.Equal(t, tutorialContent, output)
	assert.Contains(t, output, "circles note add")
}

func TestTutorial_Rendered(t *testing.T) {
	output, err := testutil.ExecuteCommand(t, TutorialCmd())
	require.NoError(t, err)
	assert.Contains(t, output, "circles workflow")
	assert.Contains(t, output, "circles auth signup")
}
