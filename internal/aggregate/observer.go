package aggregate

import (
	"net/netip"

	"github.com/netfold/netfold/internal/logging"
)

// Observer receives trace callbacks from the engine at each merge
// decision. The default is a no-op; wire a LogObserver to get the decision
// trail in the structured log.
type Observer interface {
	// Considering is called when a pass picks up a surviving network.
	Considering(net netip.Prefix)
	// Subsumed is called when a network is dropped because a broader
	// network already in the live set covers it.
	Subsumed(net, by netip.Prefix)
	// Merged is called when two networks are united into a supernet.
	Merged(a, b, into netip.Prefix)
	// Absorbed is called when the vertical pass drops a narrow network in
	// favor of an overlapping broader one, without synthesizing a supernet.
	Absorbed(net, by netip.Prefix)
}

// nopObserver is the default Observer.
type nopObserver struct{}

func (nopObserver) Considering(netip.Prefix)                        {}
func (nopObserver) Subsumed(netip.Prefix, netip.Prefix)             {}
func (nopObserver) Merged(netip.Prefix, netip.Prefix, netip.Prefix) {}
func (nopObserver) Absorbed(netip.Prefix, netip.Prefix)             {}

// LogObserver traces merge decisions through the structured logger at
// debug level.
type LogObserver struct {
	log *logging.Logger
}

// NewLogObserver returns an observer that writes the decision trail to the
// given logger. A nil logger falls back to the package default.
func NewLogObserver(log *logging.Logger) *LogObserver {
	if log == nil {
		log = logging.Default()
	}
	return &LogObserver{log: log.WithComponent("aggregate")}
}

func (o *LogObserver) Considering(net netip.Prefix) {
	o.log.Debug("considering network", "network", net.String())
}

func (o *LogObserver) Subsumed(net, by netip.Prefix) {
	o.log.Debug("network subsumed",
		"network", net.String(),
		"covered_by", by.String())
}

func (o *LogObserver) Merged(a, b, into netip.Prefix) {
	o.log.Debug("networks merged",
		"first", a.String(),
		"second", b.String(),
		"supernet", into.String())
}

func (o *LogObserver) Absorbed(net, by netip.Prefix) {
	o.log.Debug("network absorbed",
		"network", net.String(),
		"absorbed_by", by.String())
}
