package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/james-see/dtx2ssc/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	outputFile = ""
	serverPort = 0
	midiTempo = converter.DefaultMIDITempo
	rootCmd.PersistentFlags().Lookup("tempo").Changed = false
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeChart(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.dtx")
	require.NoError(t, os.WriteFile(path, []byte("#00108: 01\n#00113: 01000100\n#00112: 0001\n"), 0644))
	return path
}

func TestDTXToSSCCommand(t *testing.T) {
	input := writeChart(t)

	out, err := execute(t, "dtx2ssc", input)
	require.NoError(t, err)
	assert.Contains(t, out, "song.ssc")

	data, err := os.ReadFile(filepath.Join(filepath.Dir(input), "song.ssc"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ",  // measure 1\n010001000\n")
}

func TestConvertCommandToMIDI(t *testing.T) {
	input := writeChart(t)
	output := filepath.Join(filepath.Dir(input), "preview.mid")

	out, err := execute(t, "convert", input, "-o", output, "--tempo", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Conversion complete!")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "MThd", string(data[:4]))
}

func previewTempo(t *testing.T, path string) float64 {
	t.Helper()
	s, err := smf.ReadFile(path)
	require.NoError(t, err)
	for _, track := range s.Tracks {
		for _, ev := range track {
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) {
				return bpm
			}
		}
	}
	t.Fatal("no tempo event in preview")
	return 0
}

func TestTempoFromEnvironment(t *testing.T) {
	t.Setenv("DTX2SSC_MIDI_TEMPO", "90")
	input := writeChart(t)
	output := filepath.Join(filepath.Dir(input), "song.mid")

	_, err := execute(t, "dtx2midi", input)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, previewTempo(t, output), 0.01)

	_, err = execute(t, "dtx2midi", input, "--tempo", "150")
	require.NoError(t, err)
	assert.InDelta(t, 150.0, previewTempo(t, output), 0.01)
}

func TestInvalidTempoFlag(t *testing.T) {
	_, err := execute(t, "dtx2midi", writeChart(t), "--tempo", "0")
	assert.Error(t, err)
}

func TestInspectCommand(t *testing.T) {
	out, err := execute(t, "inspect", writeChart(t))
	require.NoError(t, err)
	assert.Contains(t, out, "MEASURE")
	assert.Contains(t, out, "2 lane chips, 1 tempo chips ignored, 3 measures, 3 hits")
}

func TestLanesCommand(t *testing.T) {
	out, err := execute(t, "lanes")
	require.NoError(t, err)
	assert.Contains(t, out, "Right Cymbal")
	assert.Contains(t, out, "16,19")
}

func TestConvertCommandRejectsUnknownOutput(t *testing.T) {
	_, err := execute(t, "convert", writeChart(t), "-o", "song.txt")
	assert.Error(t, err)
}
