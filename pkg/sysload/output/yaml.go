package output

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/juniverse/sysload/pkg/sysload/sysinfo"
)

// YAMLFormatter renders the snapshot as YAML with the same field names as
// the JSON output.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, s *sysinfo.Snapshot) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(s); err != nil {
		return err
	}
	return encoder.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

var _ Formatter = (*YAMLFormatter)(nil)
