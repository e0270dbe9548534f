package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLWriter writes buffered items as one YAML document.
type YAMLWriter struct {
	buffer
	w      *bufio.Writer
	indent int
}

// NewYAMLWriter creates a YAML writer. An indent below 2 uses 2.
func NewYAMLWriter(w io.Writer, indent int) *YAMLWriter {
	if indent < 2 {
		indent = 2
	}
	return &YAMLWriter{
		w:      bufio.NewWriter(w),
		indent: indent,
	}
}

// Flush writes the buffered items.
func (w *YAMLWriter) Flush() error {
	data, ok := w.payload()
	if !ok {
		return w.w.Flush()
	}

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(w.indent)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	w.items = nil
	return w.w.Flush()
}

// Close flushes and closes the writer.
func (w *YAMLWriter) Close() error {
	return w.Flush()
}
