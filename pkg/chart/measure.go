package chart

import (
	"fmt"
	"iter"
	"strings"
)

// InitialResolution is the row count of a freshly created measure
const InitialResolution = 4

// MaxResolution caps the row count of a single measure. Lanes with coprime
// lengths multiply the merged resolution, so it is checked before any rows
// are allocated.
const MaxResolution = 1 << 14

// Measure is the note grid of one bar. Its resolution is always the number
// of rows and never decreases.
type Measure struct {
	rows []Row
}

// NewMeasure creates an empty measure at the initial resolution
func NewMeasure() *Measure {
	rows := make([]Row, InitialResolution)
	for i := range rows {
		rows[i] = EmptyRow()
	}
	return &Measure{rows: rows}
}

// Resolution returns the number of rows in the measure
func (m *Measure) Resolution() int {
	return len(m.rows)
}

// Refine raises the resolution to LCM(current, requested) so that a lane
// subdivided into requested parts can be placed. Existing notes keep their
// position within the bar.
func (m *Measure) Refine(requested int) error {
	if requested <= 0 {
		return fmt.Errorf("refine to %d: %w", requested, ErrInvalidResolution)
	}
	current := m.Resolution()
	if requested == current {
		return nil
	}
	if requested > MaxResolution {
		return fmt.Errorf("refine to %d (limit %d): %w", requested, MaxResolution, ErrResolutionTooHigh)
	}
	target := LCM(current, requested)
	if target > MaxResolution {
		return fmt.Errorf("merging %d with %d needs %d rows (limit %d): %w",
			current, requested, target, MaxResolution, ErrResolutionTooHigh)
	}
	m.rows = refineRows(m.rows, target/current)
	return nil
}

// refineRows returns a new row slice where every row is followed by
// factor-1 empty rows. Row i of the input ends up at index i*factor.
func refineRows(rows []Row, factor int) []Row {
	if factor <= 1 {
		return rows
	}
	out := make([]Row, 0, len(rows)*factor)
	for _, r := range rows {
		out = append(out, r)
		for j := 1; j < factor; j++ {
			out = append(out, EmptyRow())
		}
	}
	return out
}

// SetNote writes value into lane at the given 1-based beat of a lane
// subdivided into noteResolution parts. The measure must already have been
// refined so that noteResolution divides its resolution.
func (m *Measure) SetNote(lane Lane, value Cell, beat, noteResolution int) error {
	if !lane.Valid() {
		return fmt.Errorf("lane %d: %w", int(lane), ErrIndexOutOfRange)
	}
	resolution := m.Resolution()
	if noteResolution <= 0 || resolution%noteResolution != 0 {
		return fmt.Errorf("note resolution %d does not divide measure resolution %d: %w",
			noteResolution, resolution, ErrResolutionMismatch)
	}
	if beat < 1 || beat > noteResolution {
		return fmt.Errorf("beat %d of %d: %w", beat, noteResolution, ErrIndexOutOfRange)
	}

	step := resolution / noteResolution
	m.rows[(beat-1)*step][lane] = value
	return nil
}

// Note returns the cell of lane at row index
func (m *Measure) Note(lane Lane, row int) (Cell, error) {
	r, err := m.Row(row)
	if err != nil {
		return NoHit, err
	}
	if !lane.Valid() {
		return NoHit, fmt.Errorf("lane %d: %w", int(lane), ErrIndexOutOfRange)
	}
	return r[lane], nil
}

// Row returns a copy of the row at index
func (m *Measure) Row(index int) (Row, error) {
	if index < 0 || index >= len(m.rows) {
		return Row{}, fmt.Errorf("row %d of %d: %w", index, len(m.rows), ErrIndexOutOfRange)
	}
	return m.rows[index], nil
}

// Rows returns a copy of all rows
func (m *Measure) Rows() []Row {
	out := make([]Row, len(m.rows))
	copy(out, m.rows)
	return out
}

// HitCount returns the number of Hit cells in the measure
func (m *Measure) HitCount() int {
	n := 0
	for _, r := range m.rows {
		for _, c := range r {
			if c == Hit {
				n++
			}
		}
	}
	return n
}

// Lines yields one newline-terminated line per row. The sequence can be
// ranged over any number of times.
func (m *Measure) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, r := range m.rows {
			if !yield(r.String() + "\n") {
				return
			}
		}
	}
}

// String returns the rendered rows
func (m *Measure) String() string {
	var s strings.Builder
	for line := range m.Lines() {
		s.WriteString(line)
	}
	return s.String()
}
