// Package converter provides conversion from DTXMania drum charts to SSC
package converter

import (
	"github.com/james-see/dtx2ssc/pkg/chart"
)

// ChipKind classifies a DTX channel
type ChipKind int

const (
	ChipNone  ChipKind = iota // not a chip the converter cares about
	ChipLane                  // playable drum lane
	ChipTempo                 // BPM change, observed but not converted
)

// String returns a short name for the kind
func (k ChipKind) String() string {
	switch k {
	case ChipLane:
		return "lane"
	case ChipTempo:
		return "tempo"
	default:
		return "none"
	}
}

// Chip is one parsed DTX chip line: the hits of one channel in one measure
type Chip struct {
	Line    int    // 1-based source line
	Measure int    // measure index
	Channel string // upper-cased two character channel code
	Kind    ChipKind
	Lane    chart.Lane   // valid only for ChipLane
	Cells   []chart.Cell // one cell per subdivision, ChipLane only
}

// Resolution returns the number of subdivisions the chip declares
func (c Chip) Resolution() int {
	return len(c.Cells)
}

// Stats summarizes a conversion run
type Stats struct {
	Lines      int `json:"lines"`
	LaneChips  int `json:"lane_chips"`
	TempoChips int `json:"tempo_chips"`
	Skipped    int `json:"skipped"`
	Measures   int `json:"measures"`
	Hits       int `json:"hits"`
}

// MeasureSummary describes one converted measure
type MeasureSummary struct {
	Index      int `json:"index"`
	Resolution int `json:"resolution"`
	Hits       int `json:"hits"`
}

// Result holds a converted chart and its statistics
type Result struct {
	Chart *chart.Chart
	Stats Stats
}

// Summarize returns one summary per measure of the result's chart
func (r *Result) Summarize() []MeasureSummary {
	out := make([]MeasureSummary, 0, r.Chart.Len())
	for i, m := range r.Chart.Measures() {
		out = append(out, MeasureSummary{
			Index:      i,
			Resolution: m.Resolution(),
			Hits:       m.HitCount(),
		})
	}
	return out
}
