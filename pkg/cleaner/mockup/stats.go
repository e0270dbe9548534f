package mockup

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats captures metrics about what the cleaner did.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// Source shape and the scope that was serialized
	Shape Shape `json:"shape" yaml:"shape"`
	Scope Scope `json:"scope" yaml:"scope"`

	// Element counts
	TargetsMatched  int            `json:"targets_matched" yaml:"targets_matched"`
	ElementsRemoved map[string]int `json:"elements_removed" yaml:"elements_removed"` // tag -> count

	// Selector matches
	SelectorMatches map[string]int `json:"selector_matches" yaml:"selector_matches"` // selector -> count

	// Attribute and node rewrites
	AttributesRemoved int `json:"attributes_removed" yaml:"attributes_removed"`
	URLsRewritten     int `json:"urls_rewritten" yaml:"urls_rewritten"`
	XlinksConverted   int `json:"xlinks_converted" yaml:"xlinks_converted"`
	MetaRemoved       int `json:"meta_removed" yaml:"meta_removed"`
	QueriesStripped   int `json:"queries_stripped" yaml:"queries_stripped"`
	CommentsRemoved   int `json:"comments_removed" yaml:"comments_removed"`

	// Timing
	ParseDuration     time.Duration `json:"parse_duration_ms" yaml:"parse_duration_ms"`
	TransformDuration time.Duration `json:"transform_duration_ms" yaml:"transform_duration_ms"`
	FormatDuration    time.Duration `json:"format_duration_ms" yaml:"format_duration_ms"`
	TotalDuration     time.Duration `json:"total_duration_ms" yaml:"total_duration_ms"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsRemoved: make(map[string]int),
		SelectorMatches: make(map[string]int),
	}
}

// ReductionPercent returns the percentage reduction in size.
// Formatting can grow the output, so the value may be negative.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// TotalElementsRemoved returns the sum of all removed elements.
func (s *Stats) TotalElementsRemoved() int {
	total := 0
	for _, count := range s.ElementsRemoved {
		total += count
	}
	return total
}

// RecordRemoval records that an element was removed.
func (s *Stats) RecordRemoval(tag string) {
	s.ElementsRemoved[strings.ToLower(tag)]++
}

// RecordSelectorMatch records that a selector matched elements.
func (s *Stats) RecordSelectorMatch(selector string, count int) {
	s.SelectorMatches[selector] += count
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %s -> %s (%.1f%% reduction)\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes)), s.ReductionPercent()))

	sb.WriteString(fmt.Sprintf("Scope: %s\n", s.Scope))

	if s.TargetsMatched > 0 {
		sb.WriteString(fmt.Sprintf("Targets matched: %d\n", s.TargetsMatched))
	}

	sb.WriteString(fmt.Sprintf("Elements removed: %d\n", s.TotalElementsRemoved()))
	if len(s.ElementsRemoved) > 0 {
		sb.WriteString("Removed by tag: ")
		parts := make([]string, 0, len(s.ElementsRemoved))
		for tag, count := range s.ElementsRemoved {
			parts = append(parts, fmt.Sprintf("%s=%d", tag, count))
		}
		sort.Strings(parts)
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	counters := []struct {
		label string
		value int
	}{
		{"Attributes removed", s.AttributesRemoved},
		{"URLs rewritten", s.URLsRewritten},
		{"xlink:href converted", s.XlinksConverted},
		{"Meta tags removed", s.MetaRemoved},
		{"Query strings stripped", s.QueriesStripped},
		{"Comments removed", s.CommentsRemoved},
	}
	for _, c := range counters {
		if c.value > 0 {
			sb.WriteString(fmt.Sprintf("%s: %d\n", c.label, c.value))
		}
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, transform=%v, format=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.TransformDuration.Round(time.Microsecond),
		s.FormatDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

// Warning represents a non-fatal issue encountered during cleaning.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`     // "parse", "scope", "format"
	Message string `json:"message" yaml:"message"` // Human-readable description
	Context string `json:"context" yaml:"context"` // Selector or error that caused the issue
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a cleaning operation.
type Result struct {
	// Content is the cleaned output. On parse errors, this contains the original input.
	Content string `json:"content" yaml:"content"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats" yaml:"stats"`

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}
