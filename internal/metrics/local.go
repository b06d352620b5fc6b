package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sync/errgroup"

	"vpswatch/internal/config"
	"vpswatch/internal/model"
)

// Host readers are package variables so tests can substitute them.
var (
	cpuPercent    = cpu.PercentWithContext
	virtualMemory = mem.VirtualMemoryWithContext
	diskUsage     = disk.UsageWithContext
	loadAverage   = load.AvgWithContext
)

// containerLister is the slice of the Docker API the collector needs.
type containerLister interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
}

// LocalSource collects metrics from the host it runs on: cpu, memory, disk
// and load via procfs readers, container counts via the Docker daemon.
type LocalSource struct {
	diskPath string
	docker   containerLister
	logger   zerolog.Logger
}

// NewLocalSource creates a host metrics collector. When Docker collection is
// enabled the client talks to the daemon configured in the environment;
// daemon unavailability surfaces per cycle as a missing docker section, not
// as a construction failure.
func NewLocalSource(cfg config.MonitorConfig, logger zerolog.Logger) (*LocalSource, error) {
	s := &LocalSource{
		diskPath: cfg.DiskPath,
		logger:   logger.With().Str("component", "metrics").Logger(),
	}
	if cfg.DockerEnabled {
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return nil, fmt.Errorf("failed to create docker client: %w", err)
		}
		s.docker = cli
	}
	return s, nil
}

// Collect gathers all sections concurrently. A failed section is logged and
// left out of the snapshot; the call fails only when no section could be
// collected at all.
func (s *LocalSource) Collect(ctx context.Context) (model.MetricsSnapshot, error) {
	snapshot := model.MetricsSnapshot{Timestamp: time.Now().UTC()}

	// Each goroutine writes a distinct snapshot field.
	var g errgroup.Group

	g.Go(func() error {
		section, err := s.collectCPU(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to collect cpu metrics")
			return fmt.Errorf("cpu: %w", err)
		}
		snapshot.CPU = section
		return nil
	})

	g.Go(func() error {
		section, err := s.collectMemory(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to collect memory metrics")
			return fmt.Errorf("memory: %w", err)
		}
		snapshot.Memory = section
		return nil
	})

	g.Go(func() error {
		section, err := s.collectDisk(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to collect disk metrics")
			return fmt.Errorf("disk: %w", err)
		}
		snapshot.Disk = section
		return nil
	})

	g.Go(func() error {
		section, err := s.collectLoad(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to collect load metrics")
			return fmt.Errorf("load: %w", err)
		}
		snapshot.Load = section
		return nil
	})

	if s.docker != nil {
		g.Go(func() error {
			section, err := s.collectDocker(ctx)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Failed to collect docker metrics")
				return fmt.Errorf("docker: %w", err)
			}
			snapshot.Docker = section
			return nil
		})
	}

	firstErr := g.Wait()
	if snapshot.CPU == nil && snapshot.Memory == nil && snapshot.Disk == nil &&
		snapshot.Load == nil && snapshot.Docker == nil {
		return snapshot, fmt.Errorf("no metrics collected: %w", firstErr)
	}
	return snapshot, nil
}

func (s *LocalSource) collectCPU(ctx context.Context) (*model.CPUMetrics, error) {
	// A one second sampling window smooths out instantaneous spikes.
	percents, err := cpuPercent(ctx, time.Second, false)
	if err != nil {
		return nil, err
	}
	if len(percents) == 0 {
		return nil, fmt.Errorf("no cpu usage reported")
	}
	return &model.CPUMetrics{UsagePercent: percents[0]}, nil
}

func (s *LocalSource) collectMemory(ctx context.Context) (*model.MemoryMetrics, error) {
	vm, err := virtualMemory(ctx)
	if err != nil {
		return nil, err
	}
	return &model.MemoryMetrics{
		UsagePercent: vm.UsedPercent,
		UsedMB:       float64(vm.Used) / 1024 / 1024,
		TotalMB:      float64(vm.Total) / 1024 / 1024,
	}, nil
}

func (s *LocalSource) collectDisk(ctx context.Context) (*model.DiskMetrics, error) {
	usage, err := diskUsage(ctx, s.diskPath)
	if err != nil {
		return nil, err
	}
	return &model.DiskMetrics{
		UsagePercent: usage.UsedPercent,
		UsedGB:       float64(usage.Used) / 1024 / 1024 / 1024,
		TotalGB:      float64(usage.Total) / 1024 / 1024 / 1024,
	}, nil
}

func (s *LocalSource) collectLoad(ctx context.Context) (*model.LoadMetrics, error) {
	avg, err := loadAverage(ctx)
	if err != nil {
		return nil, err
	}
	return &model.LoadMetrics{
		Load1:  avg.Load1,
		Load5:  avg.Load5,
		Load15: avg.Load15,
	}, nil
}

func (s *LocalSource) collectDocker(ctx context.Context) (*model.DockerMetrics, error) {
	containers, err := s.docker.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return nil, err
	}

	running := 0
	for _, c := range containers {
		if c.State == "running" {
			running++
		}
	}
	return &model.DockerMetrics{
		Running: running,
		Stopped: len(containers) - running,
		Total:   len(containers),
	}, nil
}
