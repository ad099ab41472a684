// Package sysinfo is the boundary to the host's hardware and operating system
// information. It exposes processor topology, memory and swap statistics, and
// mounted file stores as point-in-time snapshots behind a small Provider
// interface so that report formatting can be exercised without a real host.
package sysinfo

import (
	"context"
	"fmt"
	"time"
)

// ProcessorTopology describes the CPU layout of the host.
type ProcessorTopology struct {
	// PhysicalCores is the number of physical CPU cores.
	PhysicalCores int `json:"physical_cores" yaml:"physical_cores"`

	// LogicalCores is the number of schedulable logical processors.
	// It exceeds PhysicalCores when SMT/hyperthreading is enabled.
	LogicalCores int `json:"logical_cores" yaml:"logical_cores"`
}

// MemoryStats holds physical memory and swap usage in bytes.
type MemoryStats struct {
	AvailableBytes uint64 `json:"available_bytes" yaml:"available_bytes"`
	TotalBytes     uint64 `json:"total_bytes" yaml:"total_bytes"`
	SwapUsedBytes  uint64 `json:"swap_used_bytes" yaml:"swap_used_bytes"`
	SwapTotalBytes uint64 `json:"swap_total_bytes" yaml:"swap_total_bytes"`
}

// FileStore describes one mounted file system.
type FileStore struct {
	// Name is the display name, usually the backing device.
	Name string `json:"name" yaml:"name"`

	// Description classifies the store, e.g. "Local Disk" or "Network Disk".
	Description string `json:"description" yaml:"description"`

	// Type is the file system type, e.g. "ext4".
	Type string `json:"type" yaml:"type"`

	// UsableBytes is the space available to unprivileged users.
	UsableBytes uint64 `json:"usable_bytes" yaml:"usable_bytes"`

	// TotalBytes is the total size of the file system.
	TotalBytes uint64 `json:"total_bytes" yaml:"total_bytes"`

	// Volume is the backing device path.
	Volume string `json:"volume" yaml:"volume"`

	// LogicalVolume is the device-mapper path when the store sits on
	// LVM or similar. Empty otherwise.
	LogicalVolume string `json:"logical_volume,omitempty" yaml:"logical_volume,omitempty"`

	// Mount is the mount point.
	Mount string `json:"mount" yaml:"mount"`
}

// Provider supplies host information. Each call returns a fresh snapshot;
// nothing is cached between calls.
type Provider interface {
	Topology(ctx context.Context) (ProcessorTopology, error)
	Memory(ctx context.Context) (MemoryStats, error)
	FileStores(ctx context.Context) ([]FileStore, error)
}

// Snapshot is the result of querying every Provider capability once.
type Snapshot struct {
	Processor   ProcessorTopology `json:"processor" yaml:"processor"`
	Memory      MemoryStats       `json:"memory" yaml:"memory"`
	FileStores  []FileStore       `json:"file_stores" yaml:"file_stores"`
	CollectedAt time.Time         `json:"collected_at" yaml:"collected_at"`
}

// Collect queries p for topology, memory and file stores, in that order.
// The first failure aborts the collection.
func Collect(ctx context.Context, p Provider) (*Snapshot, error) {
	topology, err := p.Topology(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying processor topology: %w", err)
	}

	memory, err := p.Memory(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying memory: %w", err)
	}

	stores, err := p.FileStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying file stores: %w", err)
	}

	return &Snapshot{
		Processor:   topology,
		Memory:      memory,
		FileStores:  stores,
		CollectedAt: time.Now(),
	}, nil
}

// StaticProvider serves a fixed snapshot. It is used for deterministic
// fixtures and for replaying a previously captured inventory.
type StaticProvider struct {
	Snapshot Snapshot

	// Err, when set, is returned by every method.
	Err error
}

// Topology returns the fixed processor topology.
func (s *StaticProvider) Topology(context.Context) (ProcessorTopology, error) {
	return s.Snapshot.Processor, s.Err
}

// Memory returns the fixed memory statistics.
func (s *StaticProvider) Memory(context.Context) (MemoryStats, error) {
	return s.Snapshot.Memory, s.Err
}

// FileStores returns a copy of the fixed file stores.
func (s *StaticProvider) FileStores(context.Context) ([]FileStore, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]FileStore(nil), s.Snapshot.FileStores...), nil
}

var (
	_ Provider = (*StaticProvider)(nil)
	_ Provider = (*HostProvider)(nil)
)
