// Package validate provides IPv4 address and network format checking and
// normalization for aggregation input. It is the gate that keeps IPv6 out
// of the pipeline: the aggregation core is structurally generic over
// prefix length, but only descriptors accepted here reach it.
package validate

import (
	"fmt"
	"net/netip"
	"regexp"

	"github.com/netfold/netfold/internal/errors"
)

var (
	// Dotted-quad host address, optionally with an explicit /32.
	addrPattern = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})(/32)?$`)

	// Dotted-quad network in CIDR form with prefix length 0..32.
	networkPattern = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})/([0-9]|[12][0-9]|3[0-2])$`)
)

// IsAddr reports whether s is a valid IPv4 host address, either bare
// ("192.168.0.23") or in /32 CIDR form ("192.168.0.23/32").
func IsAddr(s string) bool {
	if !addrPattern.MatchString(s) {
		return false
	}
	addr, err := netip.ParseAddr(hostPart(s))
	return err == nil && addr.Is4()
}

// IsNetwork reports whether s is a valid IPv4 network in CIDR form.
// Host bits need not be zero; they are cleared by Normalize.
func IsNetwork(s string) bool {
	if !networkPattern.MatchString(s) {
		return false
	}
	p, err := netip.ParsePrefix(s)
	return err == nil && p.Addr().Is4()
}

// Normalize converts a valid descriptor into canonical CIDR form: host
// addresses become /32 networks and network host bits are zeroed, so
// "192.168.0.1" normalizes to "192.168.0.1/32" and "10.0.0.5/24" to
// "10.0.0.0/24". A string that is neither a valid host nor a valid
// network fails with a parse error.
func Normalize(s string) (string, error) {
	switch {
	case IsNetwork(s):
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return "", errors.WrapParseError(s, err)
		}
		return p.Masked().String(), nil
	case IsAddr(s):
		addr, err := netip.ParseAddr(hostPart(s))
		if err != nil {
			return "", errors.WrapParseError(s, err)
		}
		return netip.PrefixFrom(addr, addr.BitLen()).String(), nil
	default:
		return "", errors.NewParseError("not a valid IPv4 address or network", s)
	}
}

// IsSupernet reports whether net is contained in (overlapped by) super.
// Both must be valid IPv4 networks in CIDR form.
func IsSupernet(net, super string) bool {
	if !IsNetwork(net) || !IsNetwork(super) {
		return false
	}
	a, errA := netip.ParsePrefix(net)
	b, errB := netip.ParsePrefix(super)
	if errA != nil || errB != nil {
		return false
	}
	return b.Masked().Overlaps(a.Masked())
}

// hostPart strips the optional /32 suffix from a host descriptor.
func hostPart(s string) string {
	if m := addrPattern.FindStringSubmatch(s); m != nil && m[5] != "" {
		return s[:len(s)-len(m[5])]
	}
	return s
}

// NormalizeAll normalizes every descriptor in order, failing on the first
// invalid one with its line position.
func NormalizeAll(descriptors []string) ([]string, error) {
	out := make([]string, 0, len(descriptors))
	for i, d := range descriptors {
		n, err := Normalize(d)
		if err != nil {
			return nil, fmt.Errorf("descriptor %d: %w", i+1, err)
		}
		out = append(out, n)
	}
	return out, nil
}
