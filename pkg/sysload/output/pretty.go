package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/juniverse/sysload/pkg/sysload/sysinfo"
	"github.com/juniverse/sysload/pkg/sysload/types"
)

// PrettyFormatter renders the inventory with lipgloss boxes and colors for
// terminal display.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, s *sysinfo.Snapshot) error {
	top := lipgloss.JoinHorizontal(lipgloss.Top,
		SectionBox.Render(f.processor(s.Processor)),
		" ",
		SectionBox.Render(f.memory(s.Memory)),
	)
	w.WriteString(top)
	w.WriteString("\n")
	w.WriteString(SectionBox.Render(f.fileStores(s.FileStores)))
	w.WriteString("\n")
	return nil
}

func (f *PrettyFormatter) processor(p sysinfo.ProcessorTopology) string {
	return strings.Join([]string{
		TitleStyle.Render("Processor"),
		field("Physical cores:", fmt.Sprintf("%d", p.PhysicalCores)),
		field("Logical CPUs:", fmt.Sprintf("%d", p.LogicalCores)),
	}, "\n")
}

func (f *PrettyFormatter) memory(m sysinfo.MemoryStats) string {
	return strings.Join([]string{
		TitleStyle.Render("Memory"),
		field("Available:", SizeStyle.Render(types.FormatBytes(m.AvailableBytes))+" / "+types.FormatBytes(m.TotalBytes)),
		field("Swap used:", SizeStyle.Render(types.FormatBytes(m.SwapUsedBytes))+" / "+types.FormatBytes(m.SwapTotalBytes)),
	}, "\n")
}

func (f *PrettyFormatter) fileStores(stores []sysinfo.FileStore) string {
	lines := []string{TitleStyle.Render("File Systems")}
	if len(stores) == 0 {
		lines = append(lines, MutedStyle.Render("no file systems found"))
		return strings.Join(lines, "\n")
	}

	mountWidth := 0
	for _, fs := range stores {
		mountWidth = max(mountWidth, len(fs.Mount))
	}

	for _, fs := range stores {
		pct := types.FreePercent(fs.UsableBytes, fs.TotalBytes)
		lines = append(lines, fmt.Sprintf("%s  %s of %s free %s  %s",
			ValueStyle.Render(fmt.Sprintf("%-*s", mountWidth, fs.Mount)),
			SizeStyle.Render(types.FormatBytes(fs.UsableBytes)),
			types.FormatBytes(fs.TotalBytes),
			usageStyle(pct).Render(fmt.Sprintf("(%.1f%%)", pct)),
			MutedStyle.Render(fmt.Sprintf("[%s] %s", fs.Type, fs.Volume)),
		))
	}
	return strings.Join(lines, "\n")
}

func field(label, value string) string {
	return LabelStyle.Render(label) + " " + ValueStyle.Render(value)
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

var _ Formatter = (*PrettyFormatter)(nil)
