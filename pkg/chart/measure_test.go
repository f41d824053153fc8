package chart

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeasure(t *testing.T) {
	m := NewMeasure()

	assert.Equal(t, 4, m.Resolution())
	for _, r := range m.Rows() {
		assert.True(t, r.IsEmpty())
	}
	assert.Equal(t, 0, m.HitCount())
}

func TestRefine(t *testing.T) {
	tests := []struct {
		name      string
		requested []int
		want      int
	}{
		{"same resolution", []int{4}, 4},
		{"divisor", []int{2}, 4},
		{"multiple", []int{16}, 16},
		{"coprime", []int{3}, 12},
		{"sequence", []int{8, 3, 32}, 96},
		{"shrink request ignored", []int{32, 8}, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMeasure()
			for _, r := range tt.requested {
				require.NoError(t, m.Refine(r))
			}
			assert.Equal(t, tt.want, m.Resolution())
			assert.Len(t, m.Rows(), tt.want)
		})
	}
}

func TestRefineMonotonic(t *testing.T) {
	requests := []int{6, 4, 9, 2, 24, 5, 1, 12}
	m := NewMeasure()
	expected := InitialResolution
	prev := m.Resolution()

	for _, r := range requests {
		require.NoError(t, m.Refine(r))
		expected = LCM(expected, r)
		assert.GreaterOrEqual(t, m.Resolution(), prev)
		assert.Equal(t, expected, m.Resolution())
		prev = m.Resolution()
	}
}

func TestRefineIdempotent(t *testing.T) {
	m := NewMeasure()
	require.NoError(t, m.Refine(3))
	require.NoError(t, m.SetNote(Snare, Hit, 2, 3))
	before := m.String()

	require.NoError(t, m.Refine(3))
	assert.Equal(t, before, m.String())
	assert.Equal(t, 12, m.Resolution())
}

func TestRefineInvalid(t *testing.T) {
	m := NewMeasure()
	assert.ErrorIs(t, m.Refine(0), ErrInvalidResolution)
	assert.ErrorIs(t, m.Refine(-8), ErrInvalidResolution)
	assert.Equal(t, 4, m.Resolution())
}

func TestRefineLimit(t *testing.T) {
	m := NewMeasure()
	require.NoError(t, m.SetNote(Snare, Hit, 2, 4))

	assert.ErrorIs(t, m.Refine(MaxResolution+1), ErrResolutionTooHigh)

	// coprime lane lengths multiply the merged resolution
	var err error
	for _, n := range []int{7, 11, 13, 17, 19, 23} {
		if err = m.Refine(n); err != nil {
			break
		}
	}
	assert.ErrorIs(t, err, ErrResolutionTooHigh)
	assert.Equal(t, 4*7*11*13, m.Resolution())
	assert.LessOrEqual(t, m.Resolution(), MaxResolution)

	cell, err := m.Note(Snare, 7*11*13)
	require.NoError(t, err)
	assert.Equal(t, Hit, cell)

	// a divisor of the current resolution still merges
	require.NoError(t, m.Refine(28))
	assert.Equal(t, 4*7*11*13, m.Resolution())
}

func TestRefinePreservesPositions(t *testing.T) {
	m := NewMeasure()
	require.NoError(t, m.Refine(8))
	for _, beat := range []int{1, 4, 7} {
		require.NoError(t, m.SetNote(Hihat, Hit, beat, 8))
	}

	require.NoError(t, m.Refine(12))
	require.Equal(t, 24, m.Resolution())

	for _, beat := range []int{1, 4, 7} {
		row := (beat - 1) * (24 / 8)
		cell, err := m.Note(Hihat, row)
		require.NoError(t, err)
		assert.Equal(t, Hit, cell, "beat %d expected at row %d", beat, row)
	}
	assert.Equal(t, 3, m.HitCount())
}

func TestRefineRowsInsertsEmptyGaps(t *testing.T) {
	rows := []Row{EmptyRow(), EmptyRow()}
	rows[0][BassDrum] = Hit
	rows[1][Snare] = Hit

	out := refineRows(rows, 3)

	require.Len(t, out, 6)
	assert.Equal(t, Hit, out[0][BassDrum])
	assert.Equal(t, Hit, out[3][Snare])
	for _, i := range []int{1, 2, 4, 5} {
		assert.True(t, out[i].IsEmpty(), "row %d should be empty", i)
	}
	// input untouched
	assert.Len(t, rows, 2)
}

func TestSetNote(t *testing.T) {
	m := NewMeasure()
	require.NoError(t, m.Refine(2))
	require.NoError(t, m.SetNote(Snare, Hit, 1, 2))
	require.NoError(t, m.SetNote(Snare, NoHit, 2, 2))

	assert.Equal(t, 4, m.Resolution())
	want := []string{"000100000", "000000000", "000000000", "000000000"}
	for i, w := range want {
		r, err := m.Row(i)
		require.NoError(t, err)
		assert.Equal(t, w, r.String(), "row %d", i)
	}
}

func TestSetNoteErrors(t *testing.T) {
	m := NewMeasure()

	assert.ErrorIs(t, m.SetNote(Snare, Hit, 1, 3), ErrResolutionMismatch)
	assert.ErrorIs(t, m.SetNote(Snare, Hit, 1, 8), ErrResolutionMismatch)
	assert.ErrorIs(t, m.SetNote(Snare, Hit, 1, 0), ErrResolutionMismatch)
	assert.ErrorIs(t, m.SetNote(Snare, Hit, 0, 4), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.SetNote(Snare, Hit, 5, 4), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.SetNote(Lane(9), Hit, 1, 4), ErrIndexOutOfRange)
	assert.ErrorIs(t, m.SetNote(Lane(-1), Hit, 1, 4), ErrIndexOutOfRange)
	assert.Equal(t, 0, m.HitCount())
}

func TestMergedLanes(t *testing.T) {
	m := NewMeasure()

	// Hihat at 1/32 with hits on subdivisions 1, 9, 17, 25
	require.NoError(t, m.Refine(32))
	for beat := 1; beat <= 32; beat++ {
		require.NoError(t, m.SetNote(Hihat, CellOf((beat-1)%8 == 0), beat, 32))
	}

	// Left cymbal at 1/8 with hits on 1, 3, 5, 7
	require.NoError(t, m.Refine(8))
	for beat := 1; beat <= 8; beat++ {
		require.NoError(t, m.SetNote(LeftCymbal, CellOf(beat%2 == 1), beat, 8))
	}

	assert.Equal(t, 32, m.Resolution())
	for i, r := range m.Rows() {
		want := EmptyRow()
		if i%8 == 0 {
			want[Hihat] = Hit
			want[LeftCymbal] = Hit
		}
		assert.Equal(t, want, r, "row %d", i)
	}
}

func TestMeasureLinesRepeatable(t *testing.T) {
	m := NewMeasure()
	require.NoError(t, m.SetNote(BassDrum, Hit, 1, 4))
	require.NoError(t, m.SetNote(RightCymbal, Hit, 3, 4))

	want := "000001000\n000000000\n000000001\n000000000\n"
	assert.Equal(t, want, m.String())
	assert.Equal(t, want, m.String())

	var lines []string
	for line := range m.Lines() {
		lines = append(lines, line)
		if len(lines) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"000001000\n", "000000000\n"}, lines)
	assert.Equal(t, 4, strings.Count(m.String(), "\n"))
}

func TestNoteAndRowBounds(t *testing.T) {
	m := NewMeasure()

	_, err := m.Row(4)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = m.Row(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = m.Note(Lane(12), 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRowsIsCopy(t *testing.T) {
	m := NewMeasure()
	rows := m.Rows()
	rows[0][Snare] = Hit
	assert.Equal(t, 0, m.HitCount())
}

func ExampleMeasure_Refine() {
	m := NewMeasure()
	_ = m.SetNote(Snare, Hit, 2, 4)
	_ = m.Refine(8)
	fmt.Print(m)
	// Output:
	// 000000000
	// 000000000
	// 000100000
	// 000000000
	// 000000000
	// 000000000
	// 000000000
	// 000000000
}
