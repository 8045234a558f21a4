package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchCmd_Use(t *testing.T) {
	assert.Equal(t, "watch [directory]", watchCmd.Use)
}

func TestWatchCmd_RequiresDirectoryArg(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand("watch")
	assert.Error(t, err)
}

func TestWatchCmd_RejectsMissingDirectory(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()

	_, err := executeCommand("watch", "/nonexistent/dir")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch directory")
}

func TestWatchCmd_RejectsFileTarget(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	path := writeTestPDF(t, "file.pdf")

	_, err := executeCommand("watch", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
