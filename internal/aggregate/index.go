package aggregate

import (
	"net/netip"
	"slices"
)

// PrefixIndex tracks the set of surviving networks during an aggregation
// run. It keeps two views in step: the live set, used for membership and
// subsumption checks, and per-length buckets ordered by base address, used
// to drive the merge passes deterministically.
//
// An index belongs to a single Aggregate call and is never shared.
type PrefixIndex struct {
	live    map[netip.Prefix]int
	buckets map[int][]netip.Prefix
}

// NewPrefixIndex returns an empty index.
func NewPrefixIndex() *PrefixIndex {
	return &PrefixIndex{
		live:    make(map[netip.Prefix]int),
		buckets: make(map[int][]netip.Prefix),
	}
}

// Add inserts a network into the live set and its length bucket.
// Adding a network that is already present is a no-op, so duplicate
// inputs are inherently removed.
func (x *PrefixIndex) Add(p netip.Prefix) {
	if _, ok := x.live[p]; ok {
		return
	}
	x.live[p] = p.Bits()

	bucket := x.buckets[p.Bits()]
	i, _ := slices.BinarySearchFunc(bucket, p, comparePrefix)
	x.buckets[p.Bits()] = slices.Insert(bucket, i, p)
}

// Remove deletes one or more networks from both views. Removing a network
// that is not present is a no-op: merge steps routinely attempt removal of
// networks an earlier step in the same pass already took out.
func (x *PrefixIndex) Remove(nets ...netip.Prefix) {
	for _, p := range nets {
		if _, ok := x.live[p]; !ok {
			continue
		}
		delete(x.live, p)

		bucket := x.buckets[p.Bits()]
		if i, found := slices.BinarySearchFunc(bucket, p, comparePrefix); found {
			bucket = slices.Delete(bucket, i, i+1)
			if len(bucket) == 0 {
				delete(x.buckets, p.Bits())
			} else {
				x.buckets[p.Bits()] = bucket
			}
		}
	}
}

// Contains reports whether a network is currently in the live set.
func (x *PrefixIndex) Contains(p netip.Prefix) bool {
	_, ok := x.live[p]
	return ok
}

// Len returns the number of surviving networks.
func (x *PrefixIndex) Len() int {
	return len(x.live)
}

// HasLength reports whether any surviving network has the given prefix
// length.
func (x *PrefixIndex) HasLength(bits int) bool {
	return len(x.buckets[bits]) > 0
}

// OfLength returns the surviving networks at exactly the given prefix
// length, ascending by base address. The returned slice is a snapshot:
// callers may mutate the index while iterating it.
func (x *PrefixIndex) OfLength(bits int) []netip.Prefix {
	bucket := x.buckets[bits]
	if len(bucket) == 0 {
		return nil
	}
	return slices.Clone(bucket)
}

// Networks returns all surviving networks in canonical order.
func (x *PrefixIndex) Networks() []netip.Prefix {
	nets := make([]netip.Prefix, 0, len(x.live))
	for p := range x.live {
		nets = append(nets, p)
	}
	sortNetworks(nets)
	return nets
}
