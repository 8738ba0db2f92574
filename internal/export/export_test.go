package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	var buf strings.Builder
	err := WriteCSV(&buf, []string{"10.0.0.0/24", "8.8.8.8/32"})
	require.NoError(t, err)

	want := "id,label\n" +
		"0,\"10.0.0.0/24\"\n" +
		"1,\"8.8.8.8/32\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf strings.Builder
	err := WriteCSV(&buf, nil)
	require.NoError(t, err)

	assert.Equal(t, "id,label\n", buf.String())
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	err := WriteCSVFile(path, []string{"192.168.0.0/16"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,label\n0,\"192.168.0.0/16\"\n", string(data))
}

func TestWriteCSVFileTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 4096)), 0644))

	err := WriteCSVFile(path, []string{"10.0.0.0/8"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,label\n0,\"10.0.0.0/8\"\n", string(data))
}

func TestRenderTable(t *testing.T) {
	var buf strings.Builder
	err := RenderTable(&buf, []string{"10.0.0.0/24", "8.8.8.8/32"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "10.0.0.0/24")
	assert.Contains(t, out, "8.8.8.8/32")
	assert.Contains(t, out, "NETWORK")
}
