// Package main is the entry point for the dtx2ssc CLI
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/dtx2ssc/internal/config"
	"github.com/james-see/dtx2ssc/pkg/api"
	"github.com/james-see/dtx2ssc/pkg/chart"
	"github.com/james-see/dtx2ssc/pkg/converter"
	"github.com/james-see/dtx2ssc/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	verbose    bool
	midiTempo  float64
	serverPort int

	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dtx2ssc",
	Short: "Convert DTXMania drum charts to SSC note data",
	Long: `dtx2ssc converts DTXMania .dtx drum charts into the gddm-new
steps type of StepMania .ssc files.

Lanes recorded at different resolutions within a measure are merged onto one
common row grid without moving any note.

Examples:
  dtx2ssc convert song.dtx -o song.ssc
  dtx2ssc dtx2ssc song.dtx
  dtx2ssc dtx2midi song.dtx --tempo 140
  dtx2ssc inspect song.dtx
  dtx2ssc tui
  dtx2ssc serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// loadConfig reads .env and the environment; explicit flags win
func loadConfig(cmd *cobra.Command, args []string) error {
	cfg = config.Load()
	if cmd.Flags().Changed("tempo") {
		if midiTempo <= 0 {
			return fmt.Errorf("invalid --tempo %v: must be positive", midiTempo)
		}
		cfg.MIDITempo = midiTempo
	}
	return nil
}

var convertCmd = &cobra.Command{
	Use:   "convert <input.dtx>",
	Short: "Convert to the format implied by the output file extension",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var dtx2sscCmd = &cobra.Command{
	Use:   "dtx2ssc <input.dtx>",
	Short: "Convert DTX to SSC note data",
	Args:  cobra.ExactArgs(1),
	RunE:  runDTXToSSC,
}

var dtx2midiCmd = &cobra.Command{
	Use:   "dtx2midi <input.dtx>",
	Short: "Render DTX as a General MIDI drum preview",
	Args:  cobra.ExactArgs(1),
	RunE:  runDTXToMIDI,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <input.dtx>",
	Short: "Show the merged resolution and hit count of every measure",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var lanesCmd = &cobra.Command{
	Use:   "lanes",
	Short: "List SSC lanes and the DTX channels mapped onto them",
	Args:  cobra.NoArgs,
	RunE:  runLanes,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every chip to stderr")
	rootCmd.PersistentFlags().Float64Var(&midiTempo, "tempo", converter.DefaultMIDITempo, "Tempo (BPM) for MIDI previews (default $DTX2SSC_MIDI_TEMPO or 120)")

	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (.ssc or .mid, required)")
	_ = convertCmd.MarkFlagRequired("output")

	dtx2sscCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .ssc file path")
	dtx2midiCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (default $PORT or 8080)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(dtx2sscCmd)
	rootCmd.AddCommand(dtx2midiCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(lanesCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func newConverter() *converter.Converter {
	opts := []converter.Option{converter.WithMIDITempo(cfg.MIDITempo)}
	if verbose {
		opts = append(opts, converter.WithLogger(log.New(os.Stderr, "dtx2ssc: ", 0)))
	}
	return converter.New(opts...)
}

func getOutputPath(input string, target converter.Format) string {
	if outputFile != "" {
		return outputFile
	}
	return converter.OutputPath(input, target)
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv := newConverter()

	fmt.Fprintf(cmd.OutOrStdout(), "Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(input, outputFile); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Conversion complete!")
	return nil
}

func runDTXToSSC(cmd *cobra.Command, args []string) error {
	return convertTo(cmd.OutOrStdout(), args[0], converter.FormatSSC)
}

func runDTXToMIDI(cmd *cobra.Command, args []string) error {
	return convertTo(cmd.OutOrStdout(), args[0], converter.FormatMIDI)
}

func convertTo(out io.Writer, input string, target converter.Format) error {
	output := getOutputPath(input, target)
	if err := newConverter().ConvertFile(input, output); err != nil {
		return err
	}
	fmt.Fprintf(out, "Converted %s -> %s\n", input, output)
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFB000"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	res, err := newConverter().Convert(f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-8s %10s %6s", "MEASURE", "RESOLUTION", "HITS")))
	for _, m := range res.Summarize() {
		line := fmt.Sprintf("%-8s %10d %6d", fmt.Sprintf("%03d", m.Index), m.Resolution, m.Hits)
		if m.Hits == 0 {
			line = mutedStyle.Render(line)
		}
		fmt.Fprintln(out, line)
	}

	s := res.Stats
	fmt.Fprintf(out, "\n%d lines, %d lane chips, %d tempo chips ignored, %d measures, %d hits\n",
		s.Lines, s.LaneChips, s.TempoChips, s.Measures, s.Hits)
	return nil
}

func runLanes(cmd *cobra.Command, args []string) error {
	channels := converter.LaneChannels()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-6s %-4s %-14s %-10s %s", "COLUMN", "CODE", "NAME", "CHANNELS", "GM NOTE")))
	for _, lane := range chart.Lanes() {
		fmt.Fprintf(out, "%-6d %-4s %-14s %-10s %d\n",
			int(lane), lane, lane.Name(), strings.Join(channels[lane], ","), converter.DrumNote(lane))
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(newConverter())
}

func runServe(cmd *cobra.Command, args []string) error {
	if serverPort != 0 {
		cfg.Port = strconv.Itoa(serverPort)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Starting API server on port %s...\n", cfg.Port)
	return api.StartServer(cfg)
}
