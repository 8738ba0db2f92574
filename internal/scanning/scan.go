// Package scanning provides nmap-based port scanning over aggregated
// CIDR targets. Each target becomes one job on a worker pool; results are
// merged into a single Result once all targets are done.
package scanning

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ullaakut/nmap/v3"
	"github.com/google/uuid"

	"github.com/netfold/netfold/internal/errors"
	"github.com/netfold/netfold/internal/logging"
	"github.com/netfold/netfold/internal/metrics"
	"github.com/netfold/netfold/internal/workers"
)

// Run scans all configured targets and returns the merged result. Target
// failures do not abort the whole run; they are collected in
// Result.TargetErrors. Run fails outright only on invalid configuration
// or when every target fails.
func Run(ctx context.Context, config *Config) (*Result, error) {
	scanStart := time.Now()
	defer func() {
		metrics.Global().RecordScanDuration(config.ScanType, time.Since(scanStart))
	}()

	if err := config.Validate(); err != nil {
		metrics.Global().IncrementScanErrors(config.ScanType, "config_invalid")
		return nil, errors.WrapScanError(errors.CodeValidation, "invalid scan configuration", err)
	}

	if config.TimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(config.TimeoutSec)*time.Second)
		defer cancel()
	}

	logging.Info("Starting scan operation",
		"scan_type", config.ScanType,
		"target_count", len(config.Targets),
		"ports", config.Ports)

	result := NewResult()
	defer func() {
		result.Complete()
		status := "success"
		if len(result.TargetErrors) > 0 {
			status = "partial"
		}
		if len(result.TargetErrors) == len(config.Targets) {
			status = "error"
		}
		metrics.Global().IncrementScansTotal(config.ScanType, status)
		logging.Info("Scan operation completed",
			"scan_type", config.ScanType,
			"duration", result.Duration,
			"hosts_scanned", len(result.Hosts),
			"status", status)
	}()

	workerCount := config.Workers
	if workerCount <= 0 {
		workerCount = DefaultWorkers
	}

	pool := workers.New(workers.Config{
		Size:      workerCount,
		QueueSize: len(config.Targets),
	})
	pool.Start()

	var mu sync.Mutex
	for _, target := range config.Targets {
		job := &scanJob{
			id:     uuid.NewString(),
			target: target,
			config: config,
			merge: func(hosts []Host, stats HostStats) {
				mu.Lock()
				defer mu.Unlock()
				result.Hosts = append(result.Hosts, hosts...)
				result.Stats.Up += stats.Up
				result.Stats.Down += stats.Down
				result.Stats.Total += stats.Total
			},
		}
		if err := pool.Submit(job); err != nil {
			mu.Lock()
			result.TargetErrors[target] = err
			mu.Unlock()
		}
	}
	pool.Close()
	go pool.Wait()

	jobErrs := 0
	for res := range pool.Results() {
		if res.Error == nil {
			continue
		}
		jobErrs++
		metrics.Global().IncrementScanErrors(config.ScanType, "execution_failed")
		var target string
		if se, ok := res.Error.(*errors.ScanError); ok {
			target = se.Target
		}
		mu.Lock()
		result.TargetErrors[target] = res.Error
		mu.Unlock()
	}

	if jobErrs > 0 && jobErrs == len(config.Targets) {
		return nil, errors.WrapScanError(errors.CodeScanFailed,
			"all scan targets failed", fmt.Errorf("%d targets failed", jobErrs))
	}
	return result, nil
}

// scanJob scans a single target; it implements workers.Job.
type scanJob struct {
	id     string
	target string
	config *Config
	merge  func(hosts []Host, stats HostStats)
}

func (j *scanJob) ID() string   { return j.id }
func (j *scanJob) Type() string { return "scan" }

// Execute runs nmap for the job's target and merges the converted result.
func (j *scanJob) Execute(ctx context.Context) error {
	logging.InfoScan("Scanning target", j.target, "job_id", j.id)

	hosts, stats, err := scanTarget(ctx, j.target, j.config)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.ErrScanTimeout(j.target)
		}
		return errors.WrapScanErrorWithTarget(errors.CodeScanFailed,
			"scanner execution failed", j.target, err)
	}

	j.merge(hosts, stats)
	return nil
}

// scanTarget creates an nmap scanner for one target, runs it, and
// converts the output.
func scanTarget(ctx context.Context, target string, config *Config) ([]Host, HostStats, error) {
	scanner, err := nmap.NewScanner(ctx, buildScanOptions(target, config)...)
	if err != nil {
		return nil, HostStats{}, fmt.Errorf("create scanner: %w", err)
	}

	run, warnings, err := scanner.Run()
	if err != nil {
		return nil, HostStats{}, fmt.Errorf("run scan: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		logging.Warn("Scan completed with warnings", "target", target, "warnings", *warnings)
	}

	return convertRun(run)
}

// buildScanOptions creates nmap options based on the scan configuration.
func buildScanOptions(target string, config *Config) []nmap.Option {
	options := []nmap.Option{
		nmap.WithTargets(target),
		nmap.WithPorts(config.Ports),
	}

	switch config.ScanType {
	case ScanTypeConnect:
		options = append(options, nmap.WithConnectScan())
	case ScanTypeUDP:
		options = append(options, nmap.WithUDPScan())
	case ScanTypeVersion:
		options = append(options,
			nmap.WithServiceInfo(),
			nmap.WithVersionAll(),
		)
	}

	options = append(options,
		nmap.WithSkipHostDiscovery(),
		nmap.WithVerbosity(1),
	)
	return options
}

// convertRun converts an nmap run into the package's host/stats format.
func convertRun(run *nmap.Run) ([]Host, HostStats, error) {
	stats := HostStats{
		Up:    run.Stats.Hosts.Up,
		Down:  run.Stats.Hosts.Down,
		Total: run.Stats.Hosts.Total,
	}

	hosts := make([]Host, 0, len(run.Hosts))
	for i := range run.Hosts {
		h := &run.Hosts[i]
		if len(h.Addresses) == 0 {
			continue
		}
		host := Host{
			Address: h.Addresses[0].Addr,
			Status:  h.Status.State,
			Ports:   make([]Port, 0, len(h.Ports)),
		}
		for j := range h.Ports {
			p := &h.Ports[j]
			host.Ports = append(host.Ports, Port{
				Number:   p.ID,
				Protocol: p.Protocol,
				State:    p.State.State,
				Service:  p.Service.Name,
				Version:  p.Service.Version,
			})
		}
		hosts = append(hosts, host)
	}
	return hosts, stats, nil
}
