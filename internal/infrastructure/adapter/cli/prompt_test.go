package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipedInput(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestTerminalPrompter_PipedInput(t *testing.T) {
	var prompts bytes.Buffer
	p := NewTerminalPrompter(pipedInput(t, "123456\r\n654321"), &prompts)

	first, err := p.ReadSecret("PIN: ")
	require.NoError(t, err)
	assert.Equal(t, "123456", first)

	second, err := p.ReadSecret("Confirm PIN: ")
	require.NoError(t, err)
	assert.Equal(t, "654321", second, "last line without a newline is still read")

	_, err = p.ReadSecret("PIN: ")
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, "PIN: Confirm PIN: PIN: ", prompts.String())
}

func TestTerminalPrompter_KeepsSurroundingSpaces(t *testing.T) {
	p := NewTerminalPrompter(pipedInput(t, " 12345\n"), io.Discard)

	pin, err := p.ReadSecret("PIN: ")
	require.NoError(t, err)
	assert.Equal(t, " 12345", pin)
}
