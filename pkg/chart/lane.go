// Package chart provides the measure grid model for SSC drum charts
package chart

// Lane is one of the nine gddm-new note columns.
// The numeric order is the column order of every serialized row.
type Lane int

const (
	LeftCymbal Lane = iota
	Hihat
	LeftPedal
	Snare
	HighTom
	BassDrum
	LowTom
	FloorTom
	RightCymbal
)

// NumLanes is the number of columns in a row
const NumLanes = 9

var laneCodes = [NumLanes]string{"LC", "HH", "LP", "SN", "HT", "BD", "LT", "FT", "RC"}

var laneNames = [NumLanes]string{
	"Left Cymbal",
	"Hihat",
	"Left Pedal",
	"Snare",
	"High Tom",
	"Bass Drum",
	"Low Tom",
	"Floor Tom",
	"Right Cymbal",
}

// Lanes returns all lanes in canonical column order
func Lanes() []Lane {
	lanes := make([]Lane, NumLanes)
	for i := range lanes {
		lanes[i] = Lane(i)
	}
	return lanes
}

// Valid reports whether l is one of the nine lanes
func (l Lane) Valid() bool {
	return l >= LeftCymbal && l <= RightCymbal
}

// String returns the two-letter lane code (e.g. "SN")
func (l Lane) String() string {
	if !l.Valid() {
		return "??"
	}
	return laneCodes[l]
}

// Name returns the human readable lane name
func (l Lane) Name() string {
	if !l.Valid() {
		return "Unknown"
	}
	return laneNames[l]
}

// Cell is a single lane value within a row
type Cell byte

const (
	NoHit Cell = '0'
	Hit   Cell = '1'
)

// CellOf maps a boolean hit flag to a Cell
func CellOf(hit bool) Cell {
	if hit {
		return Hit
	}
	return NoHit
}

// Row holds one Cell per lane in canonical order
type Row [NumLanes]Cell

// EmptyRow returns a row with every lane set to NoHit
func EmptyRow() Row {
	var r Row
	for i := range r {
		r[i] = NoHit
	}
	return r
}

// IsEmpty reports whether the row has no hits
func (r Row) IsEmpty() bool {
	for _, c := range r {
		if c == Hit {
			return false
		}
	}
	return true
}

// String renders the row as its 9 character form
func (r Row) String() string {
	b := make([]byte, NumLanes)
	for i, c := range r {
		b[i] = byte(c)
	}
	return string(b)
}
