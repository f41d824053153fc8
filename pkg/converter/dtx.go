package converter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/james-see/dtx2ssc/pkg/chart"
)

// ErrParse is returned for a recognized lane line that cannot be decoded
var ErrParse = errors.New("dtx parse error")

// TempoChannel is the DTX channel carrying BPM changes
const TempoChannel = "08"

// emptyToken marks a subdivision without a chip
const emptyToken = "00"

// maxLineSize bounds a single DTX line
const maxLineSize = 1 << 20

// #MMMCC: payload, where the first measure character may be base-36 in
// extended charts. Only decimal measure indexes are accepted.
var chipHeader = regexp.MustCompile(`^#([0-9A-Z][0-9]{2})([0-9A-Z]{2})\s*:\s*(.*)$`)

var tokenPayload = regexp.MustCompile(`^([0-9A-Z]{2})+$`)

var laneChannels = map[string]chart.Lane{
	"1A": chart.LeftCymbal,
	"11": chart.Hihat,
	"18": chart.Hihat, // open hihat
	"1B": chart.LeftPedal,
	"1C": chart.LeftPedal, // left bass drum
	"12": chart.Snare,
	"14": chart.HighTom,
	"13": chart.BassDrum,
	"15": chart.LowTom,
	"17": chart.FloorTom,
	"16": chart.RightCymbal,
	"19": chart.RightCymbal, // ride
}

// ClassifyChannel maps a two character DTX channel code to its kind and,
// for lane channels, the SSC lane. Matching is case-insensitive.
func ClassifyChannel(code string) (ChipKind, chart.Lane) {
	code = strings.ToUpper(code)
	if code == TempoChannel {
		return ChipTempo, 0
	}
	if lane, ok := laneChannels[code]; ok {
		return ChipLane, lane
	}
	return ChipNone, 0
}

// UnknownMeasure marks a tempo chip whose measure index is not decimal
const UnknownMeasure = -1

// LaneChannels returns the DTX channel codes that feed each lane
func LaneChannels() map[chart.Lane][]string {
	out := make(map[chart.Lane][]string, chart.NumLanes)
	for code, lane := range laneChannels {
		out[lane] = append(out[lane], code)
	}
	for _, codes := range out {
		slices.Sort(codes)
	}
	return out
}

// ParseLine decodes a single DTX line. ok is false when the line is not a
// lane or tempo chip. An error is returned only for lane lines whose
// measure index or payload is malformed.
func ParseLine(line string) (chip Chip, ok bool, err error) {
	line = strings.ToUpper(strings.TrimSpace(line))
	match := chipHeader.FindStringSubmatch(line)
	if match == nil {
		return Chip{}, false, nil
	}

	measureText, channel, payload := match[1], match[2], match[3]
	kind, lane := ClassifyChannel(channel)
	switch kind {
	case ChipNone:
		return Chip{}, false, nil
	case ChipTempo:
		// tempo changes are only counted; an odd measure index is harmless
		measure, err := strconv.Atoi(measureText)
		if err != nil {
			measure = UnknownMeasure
		}
		return Chip{Measure: measure, Channel: channel, Kind: ChipTempo}, true, nil
	}

	measure, err := strconv.Atoi(measureText)
	if err != nil {
		return Chip{}, false, fmt.Errorf("invalid measure index %q: %w", measureText, ErrParse)
	}

	cells, err := parseTokens(payload)
	if err != nil {
		return Chip{}, false, fmt.Errorf("measure %03d channel %s: %w", measure, channel, err)
	}

	return Chip{
		Measure: measure,
		Channel: channel,
		Kind:    ChipLane,
		Lane:    lane,
		Cells:   cells,
	}, true, nil
}

func parseTokens(payload string) ([]chart.Cell, error) {
	if i := strings.IndexByte(payload, ';'); i >= 0 {
		payload = payload[:i]
	}
	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return nil, fmt.Errorf("empty chip data: %w", ErrParse)
	}
	if !tokenPayload.MatchString(payload) {
		return nil, fmt.Errorf("malformed chip data %q: %w", payload, ErrParse)
	}

	cells := make([]chart.Cell, len(payload)/2)
	for i := range cells {
		cells[i] = chart.CellOf(payload[i*2:i*2+2] != emptyToken)
	}
	return cells, nil
}

// ChipReader yields the chips of a DTX stream in input order
type ChipReader struct {
	scanner *bufio.Scanner
	line    int
	skipped int
}

// NewChipReader creates a reader over DTX text
func NewChipReader(r io.Reader) *ChipReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &ChipReader{scanner: s}
}

// Next returns the next chip, or io.EOF when the input is exhausted
func (cr *ChipReader) Next() (Chip, error) {
	for cr.scanner.Scan() {
		cr.line++
		text := cr.scanner.Text()
		if cr.line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}

		chip, ok, err := ParseLine(text)
		if err != nil {
			return Chip{}, fmt.Errorf("line %d: %w", cr.line, err)
		}
		if !ok {
			cr.skipped++
			continue
		}
		chip.Line = cr.line
		return chip, nil
	}
	if err := cr.scanner.Err(); err != nil {
		return Chip{}, fmt.Errorf("failed to read dtx: %w", err)
	}
	return Chip{}, io.EOF
}

// Lines returns the number of lines read so far
func (cr *ChipReader) Lines() int {
	return cr.line
}

// Skipped returns the number of lines that were not chips
func (cr *ChipReader) Skipped() int {
	return cr.skipped
}
