package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextWriter writes human-readable output. Values implementing
// fmt.Stringer use their String method; anything else is printed with %v.
type TextWriter struct {
	w *bufio.Writer
}

// NewTextWriter creates a text writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: bufio.NewWriter(w)}
}

// Write prints one item, ending it with a newline.
func (w *TextWriter) Write(data any) error {
	var s string
	switch v := data.(type) {
	case fmt.Stringer:
		s = v.String()
	case string:
		s = v
	default:
		s = fmt.Sprintf("%v", v)
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, err := w.w.WriteString(s)
	return err
}

// WriteAll prints each item in turn.
func (w *TextWriter) WriteAll(data []any) error {
	for _, item := range data {
		if err := w.Write(item); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *TextWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *TextWriter) Close() error {
	return w.Flush()
}
