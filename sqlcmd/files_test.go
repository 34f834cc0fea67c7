package sqlcmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	s, err := DecodeText([]byte("select 'ø'"))
	require.NoError(t, err)
	assert.Equal(t, "select 'ø'", s)

	s, err = DecodeText([]byte("\xef\xbb\xbfselect 'ø'"))
	require.NoError(t, err)
	assert.Equal(t, "select 'ø'", s)

	// "go" in UTF-16, both byte orders
	s, err = DecodeText([]byte{0xFF, 0xFE, 'g', 0, 'o', 0})
	require.NoError(t, err)
	assert.Equal(t, "go", s)

	s, err = DecodeText([]byte{0xFE, 0xFF, 0, 'g', 0, 'o'})
	require.NoError(t, err)
	assert.Equal(t, "go", s)
}

func TestOSFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.sql")
	require.NoError(t, os.WriteFile(path, []byte("select 1"), 0o600))

	s, err := OSFiles{}.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "select 1", s)

	_, err = OSFiles{}.ReadFile(filepath.Join(dir, "missing.sql"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
