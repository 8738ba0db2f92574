package aggregate

import (
	"net/netip"
	"time"

	"github.com/netfold/netfold/internal/logging"
	"github.com/netfold/netfold/internal/metrics"
)

// Engine runs the aggregation passes over an input set of CIDR networks.
//
// An Engine is cheap to construct and carries only configuration; every
// Aggregate call builds its own PrefixIndex and discards it, so separate
// engines may aggregate concurrently. A single Engine must not be driven
// from multiple goroutines while a call is in flight, since the passes
// mutate the call's index without locking.
type Engine struct {
	opts Options
	obs  Observer
}

// New returns an engine with the default configuration.
func New() *Engine {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions returns an engine with the given configuration.
func NewWithOptions(opts Options) *Engine {
	return &Engine{
		opts: opts,
		obs:  nopObserver{},
	}
}

// Options returns a copy of the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// SetObserver installs a trace observer. A nil observer restores the
// default no-op.
func (e *Engine) SetObserver(obs Observer) {
	if obs == nil {
		obs = nopObserver{}
	}
	e.obs = obs
}

// SetPermissivePrefix sets the horizontal search-window bound, see
// Options.SetPermissivePrefix.
func (e *Engine) SetPermissivePrefix(v int) error {
	return e.opts.SetPermissivePrefix(v)
}

// SetSwapPrefix sets the vertical search-window bound, see
// Options.SetSwapPrefix.
func (e *Engine) SetSwapPrefix(v int) error {
	return e.opts.SetSwapPrefix(v)
}

// SetMode selects aggregation passes and merge strategy, see
// Options.SetMode.
func (e *Engine) SetMode(m Mode) error {
	return e.opts.SetMode(m)
}

// Aggregate parses the input CIDR strings, deduplicates them and runs the
// configured passes from the longest prefix length down to the shortest,
// returning the surviving networks as canonical CIDR strings in ascending
// address order.
//
// A malformed input aborts the whole call with a parse error and no
// partial output.
//
// Each pass sweeps a prefix length exactly once. Two networks whose merge
// only becomes possible after an earlier merge in the same sweep may need
// a second Aggregate call over the output to fully collapse.
func (e *Engine) Aggregate(inputs []string) ([]string, error) {
	runStart := time.Now()

	idx := NewPrefixIndex()
	for _, raw := range inputs {
		network, err := ParseNetwork(raw)
		if err != nil {
			metrics.Global().IncrementAggregationErrors("parse")
			logging.ErrorAggregation("Failed to parse input network", raw, err)
			return nil, err
		}
		idx.Add(network)
	}
	inputCount := idx.Len()

	logging.Debug("Starting aggregation run",
		"input_count", inputCount,
		"mode", e.opts.Mode().String(),
		"permissive_prefix", e.opts.PermissivePrefix(),
		"swap_prefix", e.opts.SwapPrefix())

	if e.opts.Mode().Horizontal() {
		for bits := maxPrefixBits; bits > 0; bits-- {
			if idx.HasLength(bits) {
				e.horizontalPass(idx, bits)
			}
		}
	}

	if e.opts.Mode().Vertical() {
		for bits := maxPrefixBits; bits > 0; bits-- {
			if idx.HasLength(bits) {
				e.verticalPass(idx, bits)
			}
		}
	}

	out := networkStrings(idx.Networks())

	metrics.Global().RecordAggregationRun(inputCount, len(out), time.Since(runStart))
	logging.Info("Aggregation run completed",
		"input_count", inputCount,
		"output_count", len(out),
		"duration", time.Since(runStart))

	return out, nil
}

// findCoveringSupernet scans prefix lengths from just above the network's
// own length down to 1 and returns the nearest strictly broader network
// already present in the index that covers it.
func findCoveringSupernet(idx *PrefixIndex, network netip.Prefix) (netip.Prefix, bool) {
	for bits := network.Bits() - 1; bits > 0; bits-- {
		super := supernetAt(network, bits)
		if idx.Contains(super) {
			return super, true
		}
	}
	return netip.Prefix{}, false
}

// horizontalPass merges same-length sibling networks at the given prefix
// length into their nearest common supernet.
//
// Networks are taken in ascending address order. A network already covered
// by a broader survivor is dropped up front. The remaining networks are
// compared pairwise through a pending slot: under the Max strategy the
// pass scans supernet candidates from one bit shorter down to the
// permissive prefix, nearest first, and slides the pending slot forward
// when no candidate matches. Under the fixed-offset strategy only the
// two-bit-shorter supernet is tested, and on mismatch the pending network
// keeps its slot so the next network compares against the same anchor.
func (e *Engine) horizontalPass(idx *PrefixIndex, bits int) {
	var pending netip.Prefix
	havePending := false

	for _, current := range idx.OfLength(bits) {
		e.obs.Considering(current)

		if covering, ok := findCoveringSupernet(idx, current); ok {
			e.obs.Subsumed(current, covering)
			idx.Remove(current)
			metrics.Global().IncrementNetworksDropped("subsumed")
			continue
		}

		if !havePending {
			pending = current
			havePending = true
			continue
		}

		if e.opts.Mode().Max() {
			start, stop := bits-1, e.opts.PermissivePrefix()
			if start < 1 || start > 31 || stop < 1 || stop > 30 {
				// Window out of supported range, no merging at this length.
				continue
			}
			merged := false
			for prefixLen := start; prefixLen >= stop; prefixLen-- {
				super := supernetAt(pending, prefixLen)
				if super != supernetAt(current, prefixLen) {
					continue
				}
				e.obs.Merged(pending, current, super)
				idx.Add(super)
				idx.Remove(pending, current)
				havePending = false
				merged = true
				metrics.Global().IncrementMerges("horizontal")
				break
			}
			if !merged {
				pending = current
			}
		} else {
			if bits-2 < 0 {
				continue
			}
			super := supernetAt(pending, bits-2)
			if super == supernetAt(current, bits-2) {
				e.obs.Merged(pending, current, super)
				idx.Add(super)
				idx.Remove(pending, current)
				havePending = false
				metrics.Global().IncrementMerges("horizontal")
			}
			// On mismatch the pending network keeps the slot.
		}
	}
}

// verticalPass absorbs networks at the given prefix length into broader
// survivors, walking coarser lengths from one bit shorter down to the swap
// prefix.
func (e *Engine) verticalPass(idx *PrefixIndex, bits int) {
	for _, network := range idx.OfLength(bits) {
		// An earlier step in this run may already have taken it out.
		if !idx.Contains(network) {
			continue
		}
		e.obs.Considering(network)

		start, stop := bits-1, e.opts.SwapPrefix()
		if start < 1 || start > 31 || stop < 1 || stop > 30 {
			continue
		}
		e.absorbNetwork(idx, network, start, stop)
	}
}

// absorbNetwork scans coarser lengths for a survivor the network can be
// united with (Max strategy) or covered by (overlap strategy). It returns
// as soon as the network leaves the live set.
func (e *Engine) absorbNetwork(idx *PrefixIndex, network netip.Prefix, start, stop int) {
	for coarse := start; coarse >= stop; coarse-- {
		if !idx.HasLength(coarse) {
			continue
		}
		for _, large := range idx.OfLength(coarse) {
			if !idx.Contains(network) {
				return
			}

			if e.opts.Mode().Max() {
				limit := min(large.Bits(), network.Bits()) - 1
				for prefixLen := limit; prefixLen >= stop; prefixLen-- {
					super := supernetAt(network, prefixLen)
					if super != supernetAt(large, prefixLen) {
						continue
					}
					e.obs.Merged(network, large, super)
					idx.Add(super)
					idx.Remove(network, large)
					metrics.Global().IncrementMerges("vertical")
					return
				}
				continue
			}

			if idx.Contains(large) && large.Overlaps(network) {
				// The broader network survives as the covering
				// representative; nothing new is synthesized.
				e.obs.Absorbed(network, large)
				idx.Remove(network)
				metrics.Global().IncrementNetworksDropped("overlap")
				return
			}
		}
	}
}
