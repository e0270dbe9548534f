package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// Test data structure
type testItem struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

type stringerItem struct{}

func (stringerItem) String() string { return "stringer output" }

func TestNewWriter(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "*output.TextWriter"},
		{FormatJSON, "*output.JSONWriter"},
		{FormatJSONL, "*output.JSONLWriter"},
		{FormatYAML, "*output.YAMLWriter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if got := typeName(w); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func typeName(w Writer) string {
	switch w.(type) {
	case *TextWriter:
		return "*output.TextWriter"
	case *JSONWriter:
		return "*output.JSONWriter"
	case *JSONLWriter:
		return "*output.JSONLWriter"
	case *YAMLWriter:
		return "*output.YAMLWriter"
	default:
		return "unknown"
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("xml"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{" YAML ", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"text", FormatText, false},
		{"jsonl", FormatJSONL, false},
		{"toml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestJSONWriter_SingleItem(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")

	if err := w.Write(testItem{Name: "a", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var got testItem
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("single item should be a JSON object: %v\n%s", err, buf.String())
	}
	if got.Name != "a" || got.Value != 1 {
		t.Errorf("unexpected item %+v", got)
	}
	if !strings.Contains(buf.String(), "\n  \"name\"") {
		t.Errorf("expected pretty output, got %s", buf.String())
	}
}

func TestJSONWriter_MultipleItems(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	if err := w.WriteAll([]any{testItem{Name: "a"}, testItem{Name: "b"}}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var got []testItem
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("multiple items should be a JSON array: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 items, got %d", len(got))
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Errorf("expected compact output, got %q", buf.String())
	}
}

func TestJSONWriter_HTMLNotEscaped(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteOne(buf, FormatJSON, map[string]string{"content": "<p>x</p>"}); err != nil {
		t.Fatalf("WriteOne() error = %v", err)
	}
	if !strings.Contains(buf.String(), "<p>x</p>") {
		t.Errorf("expected markup to be written as is, got %s", buf.String())
	}
}

func TestJSONWriter_FlushTwiceWritesOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")
	_ = w.Write(testItem{Name: "a"})
	_ = w.Flush()
	_ = w.Close()

	if strings.Count(buf.String(), `"name"`) != 1 {
		t.Errorf("expected a single document, got %q", buf.String())
	}
}

func TestJSONLWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.WriteAll([]any{testItem{Name: "a", Value: 1}, testItem{Name: "b", Value: 2}}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	for i, line := range lines {
		var item testItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestYAMLWriter(t *testing.T) {
	t.Run("single item", func(t *testing.T) {
		buf := &bytes.Buffer{}
		if err := WriteOne(buf, FormatYAML, testItem{Name: "a", Value: 1}); err != nil {
			t.Fatalf("WriteOne() error = %v", err)
		}

		var got testItem
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid YAML: %v", err)
		}
		if got.Name != "a" || got.Value != 1 {
			t.Errorf("unexpected item %+v", got)
		}
	})

	t.Run("multiple items", func(t *testing.T) {
		buf := &bytes.Buffer{}
		w := NewYAMLWriter(buf, 2)
		_ = w.Write(testItem{Name: "a"})
		_ = w.Write(testItem{Name: "b"})
		if err := w.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}

		var got []testItem
		if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid YAML: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 items, got %d", len(got))
		}
	})

	t.Run("nothing written", func(t *testing.T) {
		buf := &bytes.Buffer{}
		if err := NewYAMLWriter(buf, 2).Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

func TestTextWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewTextWriter(buf)

	if err := w.WriteAll([]any{stringerItem{}, "plain\n", 42}); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := "stringer output\nplain\n42\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
