// Package model provides data models for the vpswatch monitoring core.
package model

import "time"

// MetricType identifies a single numeric reading that alert rules can target.
type MetricType string

const (
	MetricCPU               MetricType = "cpu"                // CPU usage percent
	MetricMemory            MetricType = "memory"             // memory usage percent
	MetricDisk              MetricType = "disk"               // disk usage percent
	MetricLoad              MetricType = "load"               // 1-minute load average
	MetricContainersRunning MetricType = "containers-running" // running container count
	MetricContainersStopped MetricType = "containers-stopped" // stopped container count
)

// MetricTypes lists every known metric type in stable order.
var MetricTypes = []MetricType{
	MetricCPU,
	MetricMemory,
	MetricDisk,
	MetricLoad,
	MetricContainersRunning,
	MetricContainersStopped,
}

// Valid returns true if t is a known metric type.
func (t MetricType) Valid() bool {
	switch t {
	case MetricCPU, MetricMemory, MetricDisk, MetricLoad,
		MetricContainersRunning, MetricContainersStopped:
		return true
	default:
		return false
	}
}

// Unit returns the display unit for the metric type.
// Usage ratios report "%"; load averages and container counts are unitless.
func (t MetricType) Unit() string {
	switch t {
	case MetricCPU, MetricMemory, MetricDisk:
		return "%"
	default:
		return ""
	}
}

// CPUMetrics holds processor readings from one collection cycle.
type CPUMetrics struct {
	UsagePercent float64 `json:"usage_percent"` // aggregate usage across all cores
}

// MemoryMetrics holds memory readings from one collection cycle.
type MemoryMetrics struct {
	UsagePercent float64 `json:"usage_percent"`
	UsedMB       float64 `json:"used_mb"`
	TotalMB      float64 `json:"total_mb"`
}

// DiskMetrics holds filesystem readings for the monitored mount point.
type DiskMetrics struct {
	UsagePercent float64 `json:"usage_percent"`
	UsedGB       float64 `json:"used_gb"`
	TotalGB      float64 `json:"total_gb"`
}

// LoadMetrics holds system load averages.
type LoadMetrics struct {
	Load1  float64 `json:"load_1m"`
	Load5  float64 `json:"load_5m"`
	Load15 float64 `json:"load_15m"`
}

// DockerMetrics holds container counts from the local Docker daemon.
type DockerMetrics struct {
	Running int `json:"running_containers"`
	Stopped int `json:"stopped_containers"`
	Total   int `json:"total_containers"`
}

// MetricsSnapshot is a point-in-time set of resource readings produced by a
// metrics source. A nil section means the reading could not be collected this
// cycle; consumers must treat it as absent, never as an implicit zero.
type MetricsSnapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	CPU       *CPUMetrics    `json:"cpu,omitempty"`
	Memory    *MemoryMetrics `json:"memory,omitempty"`
	Disk      *DiskMetrics   `json:"disk,omitempty"`
	Load      *LoadMetrics   `json:"load,omitempty"`
	Docker    *DockerMetrics `json:"docker,omitempty"`
}

// Clone returns a deep copy of the snapshot, so holders of the copy never
// observe later mutation of the original sections.
func (s *MetricsSnapshot) Clone() *MetricsSnapshot {
	if s == nil {
		return nil
	}
	clone := &MetricsSnapshot{Timestamp: s.Timestamp}
	if s.CPU != nil {
		cpu := *s.CPU
		clone.CPU = &cpu
	}
	if s.Memory != nil {
		memory := *s.Memory
		clone.Memory = &memory
	}
	if s.Disk != nil {
		disk := *s.Disk
		clone.Disk = &disk
	}
	if s.Load != nil {
		load := *s.Load
		clone.Load = &load
	}
	if s.Docker != nil {
		docker := *s.Docker
		clone.Docker = &docker
	}
	return clone
}

// Extract returns the snapshot value backing the given metric type. The
// second return value is false when the backing section was not collected,
// which callers must treat as "not evaluable for this cycle".
func (s *MetricsSnapshot) Extract(t MetricType) (float64, bool) {
	if s == nil {
		return 0, false
	}
	switch t {
	case MetricCPU:
		if s.CPU == nil {
			return 0, false
		}
		return s.CPU.UsagePercent, true
	case MetricMemory:
		if s.Memory == nil {
			return 0, false
		}
		return s.Memory.UsagePercent, true
	case MetricDisk:
		if s.Disk == nil {
			return 0, false
		}
		return s.Disk.UsagePercent, true
	case MetricLoad:
		if s.Load == nil {
			return 0, false
		}
		return s.Load.Load1, true
	case MetricContainersRunning:
		if s.Docker == nil {
			return 0, false
		}
		return float64(s.Docker.Running), true
	case MetricContainersStopped:
		if s.Docker == nil {
			return 0, false
		}
		return float64(s.Docker.Stopped), true
	default:
		return 0, false
	}
}
