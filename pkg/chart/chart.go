package chart

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// SSC note block framing
const (
	SSCBanner    = "//-----------gddm-new - DTXtoSSC------------"
	SSCStepsType = "gddm-new"
)

// trailingMeasurePadding is the number of extra empty measures EnsureMeasures
// keeps after the requested index.
const trailingMeasurePadding = 1

// Chart is an ordered, growable list of measures
type Chart struct {
	measures []*Measure
}

// New creates an empty chart
func New() *Chart {
	return &Chart{}
}

// Len returns the number of measures
func (c *Chart) Len() int {
	return len(c.measures)
}

// EnsureMeasures grows the chart so that index is addressable, plus the
// trailing padding measure. It never removes measures.
func (c *Chart) EnsureMeasures(index int) error {
	if index < 0 {
		return fmt.Errorf("measure %d: %w", index, ErrIndexOutOfRange)
	}
	want := index + 1 + trailingMeasurePadding
	for len(c.measures) < want {
		c.measures = append(c.measures, NewMeasure())
	}
	return nil
}

// Measure returns the measure at index
func (c *Chart) Measure(index int) (*Measure, error) {
	if index < 0 || index >= len(c.measures) {
		return nil, fmt.Errorf("measure %d of %d: %w", index, len(c.measures), ErrIndexOutOfRange)
	}
	return c.measures[index], nil
}

// Measures iterates over the measures in order
func (c *Chart) Measures() iter.Seq2[int, *Measure] {
	return func(yield func(int, *Measure) bool) {
		for i, m := range c.measures {
			if !yield(i, m) {
				return
			}
		}
	}
}

// Lines yields the SSC note block line by line, each newline-terminated
func (c *Chart) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		header := []string{
			SSCBanner,
			"#NOTEDATA:;",
			"#STEPSTYPE:" + SSCStepsType + ";",
			"#NOTES:",
		}
		for _, h := range header {
			if !yield(h + "\n") {
				return
			}
		}

		for i, m := range c.measures {
			sep := fmt.Sprintf(",  // measure %d\n", i)
			if i == 0 {
				sep = fmt.Sprintf("  // measure %d\n", i)
			}
			if !yield(sep) {
				return
			}
			for line := range m.Lines() {
				if !yield(line) {
					return
				}
			}
		}

		yield(";\n")
	}
}

// String returns the complete SSC note block
func (c *Chart) String() string {
	var s strings.Builder
	for line := range c.Lines() {
		s.WriteString(line)
	}
	return s.String()
}

// WriteTo writes the SSC note block to w
func (c *Chart) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for line := range c.Lines() {
		n, err := io.WriteString(w, line)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("failed to write ssc: %w", err)
		}
	}
	return total, nil
}
