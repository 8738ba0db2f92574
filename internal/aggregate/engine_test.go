package aggregate

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netfold/netfold/internal/errors"
)

func TestAggregateExactCover(t *testing.T) {
	engine := New()

	out, err := engine.Aggregate([]string{
		"182.167.12.0/25",
		"182.167.12.128/25",
		"8.8.8.8/32",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"182.167.12.0/24", "8.8.8.8/32"}, out)
}

func TestAggregateSubsumptionDrop(t *testing.T) {
	engine := New()

	out, err := engine.Aggregate([]string{
		"192.168.0.0/24",
		"192.168.0.128/25",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"192.168.0.0/24"}, out)
}

func TestAggregateDeduplicatesInput(t *testing.T) {
	engine := New()

	// The two /24 spellings canonicalize to the same network.
	out, err := engine.Aggregate([]string{
		"10.0.0.0/24",
		"10.0.0.0/24",
		"10.0.0.5/24",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/24"}, out)
}

func TestAggregateProgressiveCollapse(t *testing.T) {
	engine := New()

	// The /25 siblings fold into their /24, which then folds with the
	// adjacent /24 into a /23 in the same run.
	out, err := engine.Aggregate([]string{
		"8.8.8.8/32",
		"182.167.12.0/25",
		"182.167.12.128/25",
		"182.167.13.0/24",
		"10.0.0.0/8",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"8.8.8.8/32",
		"182.167.12.0/23",
		"10.0.0.0/8",
	}, out)
}

func TestAggregateIdempotentOnMinimalInput(t *testing.T) {
	engine := New()

	first, err := engine.Aggregate([]string{
		"182.167.12.0/25",
		"182.167.12.128/25",
		"8.8.8.8/32",
	})
	require.NoError(t, err)

	second, err := engine.Aggregate(first)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
}

func TestAggregateNoDuplicateOutputs(t *testing.T) {
	engine := New()

	out, err := engine.Aggregate([]string{
		"10.0.0.0/26",
		"10.0.0.64/26",
		"10.0.0.0/25",
		"10.0.0.128/25",
	})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, network := range out {
		assert.False(t, seen[network], "duplicate output network %s", network)
		seen[network] = true
	}
}

func TestAggregateWindowSensitivity(t *testing.T) {
	t.Run("window reaches merge length", func(t *testing.T) {
		engine := New()
		require.NoError(t, engine.SetPermissivePrefix(24))

		out, err := engine.Aggregate([]string{"182.167.12.0/25", "182.167.12.128/25"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"182.167.12.0/24"}, out)
	})

	t.Run("window cannot reach merge length", func(t *testing.T) {
		engine := New()
		require.NoError(t, engine.SetPermissivePrefix(25))

		out, err := engine.Aggregate([]string{"182.167.12.0/25", "182.167.12.128/25"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"182.167.12.0/25", "182.167.12.128/25"}, out)
	})

	t.Run("window bound outside supported range skips the pass", func(t *testing.T) {
		engine := New()
		require.NoError(t, engine.SetPermissivePrefix(31))

		out, err := engine.Aggregate([]string{"10.90.17.52/31", "10.90.17.54/31"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"10.90.17.52/31", "10.90.17.54/31"}, out)
	})
}

func TestAggregateMalformedInputAborts(t *testing.T) {
	engine := New()

	out, err := engine.Aggregate([]string{"10.0.0.0/24", "not-a-cidr"})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.IsCode(err, errors.CodeAddressParse))

	// Bare host addresses are not CIDR; normalization happens upstream.
	out, err = engine.Aggregate([]string{"8.8.8.8"})
	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.IsCode(err, errors.CodeAddressParse))
}

func TestAggregateFixedOffsetStrategy(t *testing.T) {
	engine := New()
	require.NoError(t, engine.SetMode(ModeHorizontal))

	t.Run("merges at the two-bit-shorter supernet", func(t *testing.T) {
		out, err := engine.Aggregate([]string{"10.0.0.0/26", "10.0.0.64/26"})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"10.0.0.0/24"}, out)
	})

	t.Run("keeps the comparison anchor on mismatch", func(t *testing.T) {
		// After 10.0.0.0/26 fails to pair with 10.1.0.0/26 it stays the
		// anchor, so 10.1.0.0/26 and 10.1.0.64/26 are never compared with
		// each other and all three survive.
		out, err := engine.Aggregate([]string{
			"10.0.0.0/26",
			"10.1.0.0/26",
			"10.1.0.64/26",
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"10.0.0.0/26",
			"10.1.0.0/26",
			"10.1.0.64/26",
		}, out)
	})
}

func TestAggregateVerticalMax(t *testing.T) {
	engine := New()
	require.NoError(t, engine.SetMode(ModeVertical|ModeMax))

	out, err := engine.Aggregate([]string{"10.0.0.0/25", "10.0.0.128/26"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"10.0.0.0/24"}, out)
}

func TestAggregateVerticalOverlap(t *testing.T) {
	engine := New()
	require.NoError(t, engine.SetMode(ModeVertical))

	// Without the window strategy the broader survivor absorbs the
	// narrow network; no supernet is synthesized.
	out, err := engine.Aggregate([]string{"192.168.0.0/24", "192.168.0.128/25"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"192.168.0.0/24"}, out)
}

func TestAggregateEmptyMode(t *testing.T) {
	engine := New()
	require.NoError(t, engine.SetMode(0))

	// No passes run; the call parses and deduplicates only.
	out, err := engine.Aggregate([]string{"10.0.0.0/25", "10.0.0.128/25", "10.0.0.0/25"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"10.0.0.0/25", "10.0.0.128/25"}, out)
}

func TestAggregateEmptyInput(t *testing.T) {
	engine := New()

	out, err := engine.Aggregate(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFindCoveringSupernet(t *testing.T) {
	idx := NewPrefixIndex()
	idx.Add(netip.MustParsePrefix("10.0.0.0/8"))
	idx.Add(netip.MustParsePrefix("10.1.0.0/16"))

	// The nearest present ancestor wins.
	covering, ok := findCoveringSupernet(idx, netip.MustParsePrefix("10.1.2.0/24"))
	require.True(t, ok)
	assert.Equal(t, netip.MustParsePrefix("10.1.0.0/16"), covering)

	covering, ok = findCoveringSupernet(idx, netip.MustParsePrefix("10.2.0.0/16"))
	require.True(t, ok)
	assert.Equal(t, netip.MustParsePrefix("10.0.0.0/8"), covering)

	_, ok = findCoveringSupernet(idx, netip.MustParsePrefix("192.168.0.0/24"))
	assert.False(t, ok)

	// A network does not cover itself.
	_, ok = findCoveringSupernet(idx, netip.MustParsePrefix("10.0.0.0/8"))
	assert.False(t, ok)
}

type recordingObserver struct {
	considered int
	subsumed   int
	merged     int
	absorbed   int
}

func (o *recordingObserver) Considering(netip.Prefix)                        { o.considered++ }
func (o *recordingObserver) Subsumed(netip.Prefix, netip.Prefix)             { o.subsumed++ }
func (o *recordingObserver) Merged(netip.Prefix, netip.Prefix, netip.Prefix) { o.merged++ }
func (o *recordingObserver) Absorbed(netip.Prefix, netip.Prefix)             { o.absorbed++ }

func TestObserverTracePoints(t *testing.T) {
	engine := New()
	obs := &recordingObserver{}
	engine.SetObserver(obs)

	_, err := engine.Aggregate([]string{
		"182.167.12.0/25",
		"182.167.12.128/25",
		"182.167.12.0/24",
	})
	require.NoError(t, err)

	// Both /25 networks are subsumed by the /24 already present.
	assert.Equal(t, 2, obs.subsumed)
	assert.Equal(t, 0, obs.merged)
	assert.Equal(t, 3, obs.considered)
}

func TestSetObserverNilRestoresNoop(t *testing.T) {
	engine := New()
	engine.SetObserver(&recordingObserver{})
	engine.SetObserver(nil)

	_, err := engine.Aggregate([]string{"10.0.0.0/24"})
	require.NoError(t, err)
}
