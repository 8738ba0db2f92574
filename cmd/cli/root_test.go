package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInputLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.txt")
	content := `# office ranges
10.0.0.0/24

  10.0.1.0/24
# trailing comment
8.8.8.8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	lines, err := readInputLines([]string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/24", "10.0.1.0/24", "8.8.8.8"}, lines)
}

func TestReadInputLinesMissingFile(t *testing.T) {
	_, err := readInputLines([]string{filepath.Join(t.TempDir(), "nope.txt")})
	require.Error(t, err)
}

func TestGetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2026-08-01")
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2026-08-01)", getVersion())
}
