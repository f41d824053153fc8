package converter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/dtx2ssc/pkg/chart"
)

// ErrUnsupportedFormat is returned for a conversion path that does not exist
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format represents a file format
type Format string

const (
	FormatDTX     Format = "dtx"
	FormatSSC     Format = "ssc"
	FormatMIDI    Format = "midi"
	FormatUnknown Format = "unknown"
)

// Extension returns the default file extension for the format
func (f Format) Extension() string {
	switch f {
	case FormatDTX:
		return ".dtx"
	case FormatSSC:
		return ".ssc"
	case FormatMIDI:
		return ".mid"
	default:
		return ""
	}
}

// DetectFormat detects the format of a file based on its extension
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".dtx":
		return FormatDTX
	case ".ssc":
		return FormatSSC
	case ".mid", ".midi":
		return FormatMIDI
	default:
		return FormatUnknown
	}
}

// Converter turns DTX charts into SSC note data
type Converter struct {
	logger    *log.Logger
	midiTempo float64
}

// Option configures a Converter
type Option func(*Converter)

// WithLogger sets the logger used for per-chip diagnostics
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMIDITempo sets the tempo written to MIDI previews
func WithMIDITempo(bpm float64) Option {
	return func(c *Converter) {
		if bpm > 0 {
			c.midiTempo = bpm
		}
	}
}

// New creates a new Converter
func New(opts ...Option) *Converter {
	c := &Converter{
		logger:    log.New(io.Discard, "", 0),
		midiTempo: DefaultMIDITempo,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MIDITempo returns the tempo used for MIDI previews
func (c *Converter) MIDITempo() float64 {
	return c.midiTempo
}

// Apply merges one lane chip into the chart: the measure is created if
// needed, refined to the chip's resolution and every subdivision written.
func Apply(ch *chart.Chart, chip Chip) error {
	if chip.Kind != ChipLane {
		return nil
	}
	if err := ch.EnsureMeasures(chip.Measure); err != nil {
		return err
	}
	m, err := ch.Measure(chip.Measure)
	if err != nil {
		return err
	}

	resolution := chip.Resolution()
	if err := m.Refine(resolution); err != nil {
		return err
	}
	for i, cell := range chip.Cells {
		if err := m.SetNote(chip.Lane, cell, i+1, resolution); err != nil {
			return err
		}
	}
	return nil
}

// Convert reads a DTX chart and builds the SSC chart. Any error aborts the
// whole conversion.
func (c *Converter) Convert(r io.Reader) (*Result, error) {
	ch := chart.New()
	var stats Stats

	reader := NewChipReader(r)
	for {
		chip, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch chip.Kind {
		case ChipTempo:
			stats.TempoChips++
			if chip.Measure == UnknownMeasure {
				c.logger.Printf("line %d: tempo chip ignored", chip.Line)
			} else {
				c.logger.Printf("line %d: tempo chip in measure %03d ignored", chip.Line, chip.Measure)
			}
		case ChipLane:
			stats.LaneChips++
			if err := Apply(ch, chip); err != nil {
				return nil, fmt.Errorf("line %d: %w", chip.Line, err)
			}
			c.logger.Printf("line %d: measure %03d %s x%d", chip.Line, chip.Measure, chip.Lane, chip.Resolution())
		}
	}

	stats.Lines = reader.Lines()
	stats.Skipped = reader.Skipped()
	stats.Measures = ch.Len()
	for _, m := range ch.Measures() {
		stats.Hits += m.HitCount()
	}

	return &Result{Chart: ch, Stats: stats}, nil
}

// GenerateSSC renders a chart as SSC note data
func GenerateSSC(ch *chart.Chart) []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail
	_, _ = ch.WriteTo(&buf)
	return buf.Bytes()
}

// DTXToSSC converts DTX data to SSC note data
func (c *Converter) DTXToSSC(dtxData []byte) ([]byte, error) {
	res, err := c.Convert(bytes.NewReader(dtxData))
	if err != nil {
		return nil, err
	}
	return GenerateSSC(res.Chart), nil
}

// DTXToMIDI converts DTX data to a MIDI drum preview
func (c *Converter) DTXToMIDI(dtxData []byte) ([]byte, error) {
	res, err := c.Convert(bytes.NewReader(dtxData))
	if err != nil {
		return nil, err
	}
	return NewMIDIConverter(c.midiTempo).GenerateMIDI(res.Chart)
}

// ConvertFile converts a DTX file into the format implied by outputPath
func (c *Converter) ConvertFile(inputPath, outputPath string) error {
	inputFormat := DetectFormat(inputPath)
	outputFormat := DetectFormat(outputPath)

	if inputFormat != FormatDTX {
		return fmt.Errorf("input %s: %w", inputPath, ErrUnsupportedFormat)
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var outputData []byte
	switch outputFormat {
	case FormatSSC:
		outputData, err = c.DTXToSSC(data)
	case FormatMIDI:
		outputData, err = c.DTXToMIDI(data)
	default:
		return fmt.Errorf("unsupported conversion: %s to %s: %w", inputFormat, outputFormat, ErrUnsupportedFormat)
	}
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	if err := os.WriteFile(outputPath, outputData, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return nil
}

// OutputPath derives an output file name from input and the target format
func OutputPath(input string, target Format) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + target.Extension()
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"dtx -> ssc",
		"dtx -> midi",
	}
}
