package aggregate

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netfold/netfold/internal/errors"
)

func TestParseNetwork(t *testing.T) {
	t.Run("canonicalizes host bits", func(t *testing.T) {
		p, err := ParseNetwork("10.0.0.5/24")
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.0/24", p.String())
	})

	t.Run("accepts host routes", func(t *testing.T) {
		p, err := ParseNetwork("8.8.8.8/32")
		require.NoError(t, err)
		assert.Equal(t, "8.8.8.8/32", p.String())
	})

	t.Run("rejects bare addresses", func(t *testing.T) {
		_, err := ParseNetwork("8.8.8.8")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeAddressParse))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := ParseNetwork("not-a-cidr")
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.CodeAddressParse))
	})
}

func TestSupernetAt(t *testing.T) {
	p := netip.MustParsePrefix("10.0.0.64/26")

	assert.Equal(t, netip.MustParsePrefix("10.0.0.0/24"), supernetAt(p, 24))
	assert.Equal(t, netip.MustParsePrefix("10.0.0.64/26"), supernetAt(p, 26))
	assert.Equal(t, netip.MustParsePrefix("0.0.0.0/0"), supernetAt(p, 0))
}

func TestComparePrefix(t *testing.T) {
	a := netip.MustParsePrefix("10.0.0.0/8")
	b := netip.MustParsePrefix("10.0.0.0/24")
	c := netip.MustParsePrefix("192.168.0.0/16")

	assert.Negative(t, comparePrefix(a, b), "broader network sorts first at same base")
	assert.Negative(t, comparePrefix(a, c))
	assert.Positive(t, comparePrefix(c, b))
	assert.Zero(t, comparePrefix(a, a))
}

func TestNetworkStrings(t *testing.T) {
	nets := []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("8.8.8.8/32"),
	}
	assert.Equal(t, []string{"10.0.0.0/8", "8.8.8.8/32"}, networkStrings(nets))
}
