package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/james-see/dtx2ssc/pkg/chart"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultMIDITempo is the preview tempo when none is configured
const DefaultMIDITempo = 120.0

// General MIDI percussion channel (channel 10, zero based)
const drumChannel = 9

const (
	previewVelocity = 100
	beatsPerBar     = 4
)

// gmDrumNotes maps each lane to a General MIDI percussion key
var gmDrumNotes = [chart.NumLanes]uint8{
	chart.LeftCymbal:  49, // crash cymbal 1
	chart.Hihat:       42, // closed hihat
	chart.LeftPedal:   44, // pedal hihat
	chart.Snare:       38, // acoustic snare
	chart.HighTom:     50, // high tom
	chart.BassDrum:    36, // bass drum 1
	chart.LowTom:      47, // low-mid tom
	chart.FloorTom:    43, // high floor tom
	chart.RightCymbal: 51, // ride cymbal 1
}

// DrumNote returns the General MIDI key used for lane
func DrumNote(lane chart.Lane) uint8 {
	if !lane.Valid() {
		return 0
	}
	return gmDrumNotes[lane]
}

// MIDIConverter renders charts as Standard MIDI Files for auditioning
type MIDIConverter struct {
	ticksPerQuarter uint16
	tempo           float64
}

// NewMIDIConverter creates a new MIDI converter
func NewMIDIConverter(tempo float64) *MIDIConverter {
	if tempo <= 0 {
		tempo = DefaultMIDITempo
	}
	return &MIDIConverter{
		ticksPerQuarter: 480,
		tempo:           tempo,
	}
}

// TicksPerBar returns the length of one measure in ticks
func (m *MIDIConverter) TicksPerBar() uint32 {
	return uint32(m.ticksPerQuarter) * beatsPerBar
}

type drumEvent struct {
	tick uint32
	note uint8
	on   bool
}

// GenerateMIDI creates MIDI data from a chart. Every measure is one 4/4 bar
// and every hit becomes a short note on the percussion channel.
func (m *MIDIConverter) GenerateMIDI(ch *chart.Chart) ([]byte, error) {
	if ch == nil {
		return nil, errors.New("nil chart")
	}

	ticksPerBar := m.TicksPerBar()
	maxLength := ticksPerBar / 32
	if maxLength == 0 {
		maxLength = 1
	}

	var events []drumEvent
	for index, measure := range ch.Measures() {
		resolution := uint32(measure.Resolution())

		// keep consecutive hits on one lane from overlapping
		length := ticksPerBar / resolution
		if length > maxLength {
			length = maxLength
		}
		if length == 0 {
			length = 1
		}

		for i, row := range measure.Rows() {
			tick := rowTick(index, i, int(resolution), ticksPerBar)
			for _, lane := range chart.Lanes() {
				if row[lane] != chart.Hit {
					continue
				}
				note := DrumNote(lane)
				events = append(events,
					drumEvent{tick: tick, note: note, on: true},
					drumEvent{tick: tick + length, note: note, on: false},
				)
			}
		}
	}

	// note offs first so a retrigger on the same tick is not cut short
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(m.ticksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaTrackSequenceName("dtx2ssc preview"))
	track.Add(0, smf.MetaTempo(m.tempo))
	track.Add(0, smf.MetaMeter(beatsPerBar, 4))

	var currentTick uint32
	for _, ev := range events {
		delta := ev.tick - currentTick
		if ev.on {
			track.Add(delta, midi.NoteOn(drumChannel, ev.note, previewVelocity))
		} else {
			track.Add(delta, midi.NoteOff(drumChannel, ev.note))
		}
		currentTick = ev.tick
	}

	// pad to the end of the last measure
	total := rowTick(ch.Len(), 0, 1, ticksPerBar)
	var closeDelta uint32
	if total > currentTick {
		closeDelta = total - currentTick
	}
	track.Close(closeDelta)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}

	return buf.Bytes(), nil
}

// rowTick returns the absolute start tick of row within measure. The product
// is taken in 64 bits since row*ticksPerBar can exceed uint32 long before the
// tick itself does.
func rowTick(measure, row, resolution int, ticksPerBar uint32) uint32 {
	bar := uint64(measure) * uint64(ticksPerBar)
	return uint32(bar + uint64(row)*uint64(ticksPerBar)/uint64(resolution))
}

// WriteMIDIFile writes a MIDI preview of ch to a file
func (m *MIDIConverter) WriteMIDIFile(ch *chart.Chart, filename string) error {
	data, err := m.GenerateMIDI(ch)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
