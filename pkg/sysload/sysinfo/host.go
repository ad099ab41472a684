package sysinfo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/juniverse/sysload/pkg/sysload/logging"
)

var logger = logging.Get("sysinfo")

// Descriptions assigned to file stores.
const (
	DescLocalDisk   = "Local Disk"
	DescNetworkDisk = "Network Disk"
	DescRAMDisk     = "Ram Disk"
	DescMountPoint  = "Mount Point"
)

var networkFSTypes = map[string]bool{
	"nfs": true, "nfs4": true, "cifs": true, "smbfs": true, "smb3": true,
	"sshfs": true, "fuse.sshfs": true, "9p": true, "ceph": true,
	"glusterfs": true, "fuse.glusterfs": true, "afs": true, "webdav": true,
}

var ramFSTypes = map[string]bool{
	"tmpfs": true, "ramfs": true, "devtmpfs": true,
}

// HostProvider reads live host information through gopsutil.
type HostProvider struct {
	// AllPartitions includes pseudo and virtual file systems.
	AllPartitions bool
}

// NewHostProvider returns a provider for the local host.
func NewHostProvider() *HostProvider {
	return &HostProvider{}
}

// Topology returns physical and logical core counts. When the physical count
// is unavailable (common in containers) the logical count is reported for both.
func (h *HostProvider) Topology(ctx context.Context) (ProcessorTopology, error) {
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return ProcessorTopology{}, fmt.Errorf("counting logical CPUs: %w", err)
	}

	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil || physical <= 0 {
		logger.Debug("physical core count unavailable, using logical count", "err", err)
		physical = logical
	}

	return ProcessorTopology{PhysicalCores: physical, LogicalCores: logical}, nil
}

// Memory returns available/total memory and used/total swap.
func (h *HostProvider) Memory(ctx context.Context) (MemoryStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryStats{}, fmt.Errorf("reading virtual memory: %w", err)
	}

	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return MemoryStats{}, fmt.Errorf("reading swap: %w", err)
	}

	return MemoryStats{
		AvailableBytes: vm.Available,
		TotalBytes:     vm.Total,
		SwapUsedBytes:  swap.Used,
		SwapTotalBytes: swap.Total,
	}, nil
}

// FileStores lists mounted file systems with their capacity. Mounts whose
// usage cannot be read (stale NFS, permission) are skipped.
func (h *HostProvider) FileStores(ctx context.Context) ([]FileStore, error) {
	partitions, err := disk.PartitionsWithContext(ctx, h.AllPartitions)
	if err != nil {
		return nil, fmt.Errorf("listing partitions: %w", err)
	}

	stores := make([]FileStore, 0, len(partitions))
	for _, p := range partitions {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			logger.Debug("skipping mount", "mount", p.Mountpoint, "err", err)
			continue
		}

		stores = append(stores, FileStore{
			Name:          storeName(p.Device, p.Mountpoint),
			Description:   describe(p.Mountpoint, p.Fstype),
			Type:          p.Fstype,
			UsableBytes:   usage.Free,
			TotalBytes:    usage.Total,
			Volume:        p.Device,
			LogicalVolume: logicalVolume(ctx, p.Device),
			Mount:         p.Mountpoint,
		})
	}

	return stores, nil
}

func storeName(device, mount string) string {
	if mount == "/" {
		return "/"
	}
	if device == "" || device == "none" {
		return filepath.Base(mount)
	}
	return device
}

func describe(mount, fstype string) string {
	switch {
	case mount == "/":
		return DescLocalDisk
	case ramFSTypes[fstype]:
		return DescRAMDisk
	case networkFSTypes[fstype]:
		return DescNetworkDisk
	default:
		return DescMountPoint
	}
}

// logicalVolume resolves a device-mapper name for the device, if any.
func logicalVolume(ctx context.Context, device string) string {
	if strings.HasPrefix(device, "/dev/mapper/") {
		return device
	}
	if !strings.HasPrefix(device, "/dev/dm-") {
		return ""
	}

	label, err := disk.LabelWithContext(ctx, filepath.Base(device))
	if err != nil || label == "" {
		return ""
	}
	return "/dev/mapper/" + label
}
