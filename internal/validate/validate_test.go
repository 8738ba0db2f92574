package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netfold/netfold/internal/errors"
)

func TestIsAddr(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"192.168.0.23", true},
		{"192.168.0.23/32", true},
		{"8.8.8.8", true},
		{"0.0.0.0", true},
		{"300.1.1.1", false},
		{"192.168.0.0/24", false},
		{"192.168.0", false},
		{"::1", false},
		{"not-an-address", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAddr(tt.input), "IsAddr(%q)", tt.input)
	}
}

func TestIsNetwork(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"192.168.0.0/24", true},
		{"10.0.0.5/24", true},
		{"0.0.0.0/0", true},
		{"8.8.8.8/32", true},
		{"10.0.0.0/33", false},
		{"10.0.0.0", false},
		{"300.0.0.0/8", false},
		{"2001:db8::/32", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsNetwork(tt.input), "IsNetwork(%q)", tt.input)
	}
}

func TestNormalize(t *testing.T) {
	t.Run("host address becomes /32", func(t *testing.T) {
		got, err := Normalize("192.168.0.1")
		require.NoError(t, err)
		assert.Equal(t, "192.168.0.1/32", got)
	})

	t.Run("explicit /32 host is unchanged", func(t *testing.T) {
		got, err := Normalize("192.168.0.1/32")
		require.NoError(t, err)
		assert.Equal(t, "192.168.0.1/32", got)
	})

	t.Run("network host bits are zeroed", func(t *testing.T) {
		got, err := Normalize("10.0.0.5/24")
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.0/24", got)
	})

	t.Run("canonical network is unchanged", func(t *testing.T) {
		got, err := Normalize("10.0.0.0/8")
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.0/8", got)
	})

	t.Run("invalid descriptor fails", func(t *testing.T) {
		_, err := Normalize("not-a-network")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeAddressParse))
	})
}

func TestIsSupernet(t *testing.T) {
	assert.True(t, IsSupernet("10.0.1.0/24", "10.0.0.0/8"))
	assert.True(t, IsSupernet("10.0.0.0/8", "10.0.0.0/8"))
	assert.False(t, IsSupernet("192.168.0.0/24", "10.0.0.0/8"))
	assert.False(t, IsSupernet("bogus", "10.0.0.0/8"))
	assert.False(t, IsSupernet("10.0.1.0/24", "bogus"))
}

func TestNormalizeAll(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		got, err := NormalizeAll([]string{"8.8.8.8", "10.0.0.5/24"})
		require.NoError(t, err)
		assert.Equal(t, []string{"8.8.8.8/32", "10.0.0.0/24"}, got)
	})

	t.Run("reports the failing position", func(t *testing.T) {
		_, err := NormalizeAll([]string{"8.8.8.8", "nope", "10.0.0.0/24"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "descriptor 2")
		assert.True(t, errors.IsCode(err, errors.CodeAddressParse))
	})

	t.Run("empty input", func(t *testing.T) {
		got, err := NormalizeAll(nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
