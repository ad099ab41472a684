package output

import (
	"bytes"
	"fmt"

	"github.com/juniverse/sysload/pkg/sysload/sysinfo"
	"github.com/juniverse/sysload/pkg/sysload/types"
)

// defaultDescription replaces an empty file store description.
const defaultDescription = "file system"

// TextFormatter renders the plain line-oriented inventory report:
//
//	Checking Processor...
//	 4 physical CPU core(s)
//	 8 logical CPU(s)
//	Checking Memory...
//	 Memory: 6.0 GiB/16 GiB
//	 Swap used: 512 MiB/2.0 GiB
//	Checking File System...
//	 / (Local Disk) [ext4] 50 GiB of 100 GiB free (50.0%) is /dev/sda1 and is mounted at /
type TextFormatter struct{}

// Format writes the report to the buffer.
func (f *TextFormatter) Format(w *bytes.Buffer, s *sysinfo.Snapshot) error {
	w.WriteString("Checking Processor...\n")
	fmt.Fprintf(w, " %d physical CPU core(s)\n", s.Processor.PhysicalCores)
	fmt.Fprintf(w, " %d logical CPU(s)\n", s.Processor.LogicalCores)

	w.WriteString("Checking Memory...\n")
	fmt.Fprintf(w, " Memory: %s/%s\n",
		types.FormatBytes(s.Memory.AvailableBytes), types.FormatBytes(s.Memory.TotalBytes))
	fmt.Fprintf(w, " Swap used: %s/%s\n",
		types.FormatBytes(s.Memory.SwapUsedBytes), types.FormatBytes(s.Memory.SwapTotalBytes))

	w.WriteString("Checking File System...\n")
	for _, fs := range s.FileStores {
		w.WriteString(FileStoreLine(fs))
		w.WriteByte('\n')
	}

	return nil
}

// FileStoreLine renders one file store without the trailing newline.
// The logical volume is appended in brackets only when present.
func FileStoreLine(fs sysinfo.FileStore) string {
	desc := fs.Description
	if desc == "" {
		desc = defaultDescription
	}

	volume := fs.Volume
	if fs.LogicalVolume != "" {
		volume = fmt.Sprintf("%s [%s]", fs.Volume, fs.LogicalVolume)
	}

	return fmt.Sprintf(" %s (%s) [%s] %s of %s free (%.1f%%) is %s and is mounted at %s",
		fs.Name,
		desc,
		fs.Type,
		types.FormatBytes(fs.UsableBytes),
		types.FormatBytes(fs.TotalBytes),
		types.FreePercent(fs.UsableBytes, fs.TotalBytes),
		volume,
		fs.Mount,
	)
}

func init() {
	Register("text", func() Formatter {
		return &TextFormatter{}
	})
}

var _ Formatter = (*TextFormatter)(nil)
