package scanning

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Scan types, mapped onto the corresponding nmap techniques.
const (
	ScanTypeConnect = "connect" // TCP connect scan (-sT)
	ScanTypeUDP     = "udp"     // UDP scan (-sU)
	ScanTypeVersion = "version" // service version detection (-sV)
)

const (
	// DefaultPortRange is scanned when no port specification is given.
	DefaultPortRange = "1-99"

	// DefaultWorkers is the number of targets scanned concurrently.
	DefaultWorkers = 2

	maxPort = 65535

	portRangeParts = 2
)

// Config represents the configuration for a network scan.
type Config struct {
	// Targets is a list of CIDR targets to scan, one scan job each.
	Targets []string
	// Ports specifies which ports to scan (e.g. "80,443" or "1-1000").
	Ports string
	// ScanType is one of ScanTypeConnect, ScanTypeUDP, ScanTypeVersion.
	ScanType string
	// TimeoutSec bounds the whole scan in seconds (0 = no bound).
	TimeoutSec int
	// Workers is the number of concurrent target scans (0 = default).
	Workers int
}

// Validate checks if the scan configuration is valid.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("validate config: no targets specified")
	}
	switch c.ScanType {
	case ScanTypeConnect, ScanTypeUDP, ScanTypeVersion:
	default:
		return fmt.Errorf("validate config: invalid scan type: %s", c.ScanType)
	}
	if c.Ports == "" {
		return fmt.Errorf("validate config: no ports specified")
	}
	return c.validatePorts()
}

// validatePorts validates the comma-separated port specification.
func (c *Config) validatePorts() error {
	for _, part := range strings.Split(c.Ports, ",") {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "-") {
			if err := validatePortRange(part); err != nil {
				return err
			}
			continue
		}
		if err := validateSinglePort(part); err != nil {
			return err
		}
	}
	return nil
}

// validatePortRange validates a port range such as "1-1000". The lower
// bound must be strictly less than the upper one.
func validatePortRange(part string) error {
	bounds := strings.Split(part, "-")
	if len(bounds) != portRangeParts {
		return fmt.Errorf("validate config: invalid port range format: %s", part)
	}
	low, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return fmt.Errorf("validate config: invalid start port: %s", bounds[0])
	}
	high, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return fmt.Errorf("validate config: invalid end port: %s", bounds[1])
	}
	if low < 1 || high > maxPort {
		return fmt.Errorf("validate config: port range %s out of 1-%d", part, maxPort)
	}
	if low >= high {
		return fmt.Errorf("validate config: start port must be strictly less than end port: %s", part)
	}
	return nil
}

// validateSinglePort validates a lone port number.
func validateSinglePort(part string) error {
	port, err := strconv.Atoi(part)
	if err != nil {
		return fmt.Errorf("validate config: invalid port: %s", part)
	}
	if port < 1 || port > maxPort {
		return fmt.Errorf("validate config: port %d out of 1-%d", port, maxPort)
	}
	return nil
}

// Port describes one scanned port on a host.
type Port struct {
	Number   uint16
	Protocol string
	State    string
	Service  string
	Version  string
}

// Host describes one scanned host.
type Host struct {
	Address string
	Status  string
	Ports   []Port
}

// HostStats summarizes host counts for a scan.
type HostStats struct {
	Up    int
	Down  int
	Total int
}

// Result represents the combined outcome of a scan over all targets.
type Result struct {
	Hosts     []Host
	Stats     HostStats
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	// TargetErrors maps targets that failed to their error.
	TargetErrors map[string]error
}

// NewResult creates an empty result with the start time set.
func NewResult() *Result {
	return &Result{
		StartTime:    time.Now(),
		TargetErrors: make(map[string]error),
	}
}

// Complete records the end time and duration.
func (r *Result) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
}

// OpenPorts returns the hosts' open ports flattened into (host, port)
// pairs, in scan order.
func (r *Result) OpenPorts() []struct {
	Host string
	Port Port
} {
	var out []struct {
		Host string
		Port Port
	}
	for _, h := range r.Hosts {
		for _, p := range h.Ports {
			if p.State == "open" {
				out = append(out, struct {
					Host string
					Port Port
				}{Host: h.Address, Port: p})
			}
		}
	}
	return out
}
