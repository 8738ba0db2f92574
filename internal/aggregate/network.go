// Package aggregate implements IPv4 network aggregation (route
// summarization). It collapses a list of CIDR networks into a minimal,
// non-redundant covering set by dropping subsumed networks and uniting
// sibling networks into their common supernet, under configurable search
// windows and merge strategies.
package aggregate

import (
	"net/netip"
	"slices"

	"github.com/netfold/netfold/internal/errors"
)

const (
	// maxPrefixBits is the widest prefix length the length-ordered passes
	// walk. Processing runs from this down to 1 so the structure holds for
	// IPv6 prefixes, even though only IPv4 is validated upstream.
	maxPrefixBits = 128
)

// ParseNetwork parses a CIDR string into its canonical network value.
// Host bits are zeroed, so "10.0.0.5/24" parses to 10.0.0.0/24. Bare
// addresses without a prefix length are rejected; callers that accept them
// normalize to /32 first (see the validate package).
func ParseNetwork(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, errors.WrapParseError(s, err)
	}
	return p.Masked(), nil
}

// supernetAt returns the canonical supernet of p at the given prefix
// length. bits must be in [0, p.Addr().BitLen()].
func supernetAt(p netip.Prefix, bits int) netip.Prefix {
	s, err := p.Addr().Prefix(bits)
	if err != nil {
		return netip.Prefix{}
	}
	return s
}

// comparePrefix orders networks by base address, then by prefix length so
// a network sorts before its more specific subnets at the same base.
func comparePrefix(a, b netip.Prefix) int {
	if c := a.Addr().Compare(b.Addr()); c != 0 {
		return c
	}
	return a.Bits() - b.Bits()
}

// sortNetworks sorts a slice of networks in place into canonical order.
func sortNetworks(nets []netip.Prefix) {
	slices.SortFunc(nets, comparePrefix)
}

// networkStrings renders networks in canonical CIDR string form.
func networkStrings(nets []netip.Prefix) []string {
	out := make([]string, 0, len(nets))
	for _, n := range nets {
		out = append(out, n.String())
	}
	return out
}
