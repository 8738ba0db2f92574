package aggregate

import (
	"strings"

	"github.com/netfold/netfold/internal/errors"
)

// Mode is a bitset selecting which aggregation passes run and which merge
// strategy they use. ModeHorizontal and ModeVertical enable the same-length
// and cross-length passes; ModeMax selects the exhaustive search-window
// strategy over the fixed-offset one.
type Mode uint8

const (
	ModeHorizontal Mode = 1 << iota
	ModeVertical
	ModeMax

	modeAll = ModeHorizontal | ModeVertical | ModeMax
)

// Prefix length bounds for the configurable search windows.
const (
	minPermissivePrefix = 1
	maxPermissivePrefix = 32
	minSwapPrefix       = 1
	maxSwapPrefix       = 31
)

// Horizontal reports whether the same-length pass is enabled.
func (m Mode) Horizontal() bool { return m&ModeHorizontal != 0 }

// Vertical reports whether the cross-length pass is enabled.
func (m Mode) Vertical() bool { return m&ModeVertical != 0 }

// Max reports whether the search-window merge strategy is selected.
func (m Mode) Max() bool { return m&ModeMax != 0 }

// String renders the mode as a comma-separated flag list.
func (m Mode) String() string {
	var parts []string
	if m.Horizontal() {
		parts = append(parts, "horizontal")
	}
	if m.Vertical() {
		parts = append(parts, "vertical")
	}
	if m.Max() {
		parts = append(parts, "max")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

// ParseMode parses a comma-separated flag list ("horizontal,vertical,max")
// into a Mode. An empty string yields the empty mode.
func ParseMode(s string) (Mode, error) {
	var m Mode
	if strings.TrimSpace(s) == "" {
		return m, nil
	}
	for _, part := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "horizontal":
			m |= ModeHorizontal
		case "vertical":
			m |= ModeVertical
		case "max":
			m |= ModeMax
		default:
			return 0, errors.ErrConfigRange("mode", part,
				"valid mode flags are horizontal, vertical, max")
		}
	}
	return m, nil
}

// Options holds the validated configuration of an aggregation engine.
//
// PermissivePrefix bounds how far the horizontal pass may widen its search
// for a common supernet; SwapPrefix bounds the vertical pass the same way.
// Both default to 1, the widest window.
type Options struct {
	permissivePrefix int
	swapPrefix       int
	mode             Mode
}

// DefaultOptions returns the default engine configuration: horizontal pass
// with the search-window strategy, both windows fully open.
func DefaultOptions() Options {
	return Options{
		permissivePrefix: minPermissivePrefix,
		swapPrefix:       minSwapPrefix,
		mode:             ModeHorizontal | ModeMax,
	}
}

// PermissivePrefix returns the horizontal search-window bound.
func (o *Options) PermissivePrefix() int { return o.permissivePrefix }

// SwapPrefix returns the vertical search-window bound.
func (o *Options) SwapPrefix() int { return o.swapPrefix }

// Mode returns the configured pass/strategy selection.
func (o *Options) Mode() Mode { return o.mode }

// SetPermissivePrefix sets the horizontal search-window bound. Values
// outside [1,32] fail immediately and leave the previous value in place;
// out-of-range values are never clamped.
func (o *Options) SetPermissivePrefix(v int) error {
	if v < minPermissivePrefix || v > maxPermissivePrefix {
		return errors.ErrConfigRange("permissive_prefix", v,
			"permissive prefix must be in range 1..32")
	}
	o.permissivePrefix = v
	return nil
}

// SetSwapPrefix sets the vertical search-window bound. Values outside
// [1,31] fail immediately and leave the previous value in place.
func (o *Options) SetSwapPrefix(v int) error {
	if v < minSwapPrefix || v > maxSwapPrefix {
		return errors.ErrConfigRange("swap_prefix", v,
			"swap prefix must be in range 1..31")
	}
	o.swapPrefix = v
	return nil
}

// SetMode selects the aggregation passes and merge strategy. Bits outside
// the known flag set fail immediately; the empty mode is accepted and
// makes Aggregate a parse-and-dedup pass.
func (o *Options) SetMode(m Mode) error {
	if m&^modeAll != 0 {
		return errors.ErrConfigRange("mode", m,
			"mode must combine horizontal, vertical, max")
	}
	o.mode = m
	return nil
}
