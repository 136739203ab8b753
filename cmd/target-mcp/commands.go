package main

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/hyp3rd/ewrap"
	"github.com/spf13/cobra"

	"github.com/ironsheep/target-tools-mcp/internal/annotate"
	"github.com/ironsheep/target-tools-mcp/internal/detection"
	"github.com/ironsheep/target-tools-mcp/internal/imaging"
	"github.com/ironsheep/target-tools-mcp/internal/shotgroup"
	"github.com/ironsheep/target-tools-mcp/internal/units"
	"github.com/ironsheep/target-tools-mcp/internal/workflow"
)

// Per-command overrides of the loaded config. Zero values keep the config.
var (
	flagUnit     string
	flagDPI      float64
	flagDistance float64
	flagJSON     bool

	flagShots  string
	flagOutput string
	flagColor  string

	flagRegion    string
	flagThreshold int
)

// analyzeCmd analyses a list of shots
var analyzeCmd = &cobra.Command{
	Use:   "analyze [shots.json]",
	Short: "Analyse a shot group from a JSON list of circles",
	Long: `Reads a JSON array of shots such as

  [{"id": "h1", "x": 12, "y": 40, "r": 3}, ...]

from the file argument, or stdin when it is omitted or "-", and prints the
group summary. Use --json for the full report.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

// annotateCmd draws the analysis on a target image
var annotateCmd = &cobra.Command{
	Use:   "annotate <image>",
	Short: "Draw the average precision circle and summary onto a target image",
	Long: `Analyses the shots in --shots, or the holes detected in the image when
--shots is not given, and writes the annotated image to --output. Shot
coordinates are image pixels; --dpi turns them into inches.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnnotate,
}

// detectCmd finds bullet holes
var detectCmd = &cobra.Command{
	Use:   "detect <image>",
	Short: "Detect bullet holes and print them as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "target-tools-mcp %s\n", Version)
		fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
		fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&flagUnit, "unit", "", "Coordinate unit: px, in, mm, cm, pt, pc, ft")
	for _, c := range []*cobra.Command{analyzeCmd, annotateCmd} {
		c.Flags().Float64Var(&flagDPI, "dpi", 0, "Pixels per inch for px coordinates")
		c.Flags().Float64VarP(&flagDistance, "distance", "d", 0, "Distance to the target in yards")
	}
	analyzeCmd.Flags().BoolVar(&flagJSON, "json", false, "Print the full report as JSON")

	annotateCmd.Flags().StringVar(&flagShots, "shots", "", "JSON file of shots (default: detect holes)")
	annotateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Annotated image path (required)")
	annotateCmd.Flags().StringVar(&flagColor, "color", "", "Annotation colour, #RRGGBB")
	_ = annotateCmd.MarkFlagRequired("output")

	for _, c := range []*cobra.Command{annotateCmd, detectCmd} {
		c.Flags().StringVar(&flagRegion, "region", "", "Only detect inside a named region (top-left, center, ...)")
		c.Flags().IntVar(&flagThreshold, "threshold", 0, "Dark pixel threshold 0-255")
	}
}

// newRunner builds a workflow runner from the config and command flags.
// An empty unit means the configured one.
func newRunner(unit string) (*workflow.Runner, error) {
	if unit == "" {
		unit = cfg.Unit
	}
	dpi := cfg.DPI
	if flagDPI != 0 {
		dpi = flagDPI
	}
	distance := cfg.DistanceYards
	if flagDistance != 0 {
		distance = flagDistance
	}

	u, err := units.ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	toInches, err := units.ToInches(u, dpi)
	if err != nil {
		return nil, err
	}

	style := cfg.Style()
	if flagColor != "" {
		style.Color = flagColor
	}

	return workflow.New(
		workflow.WithConverter(toInches),
		workflow.WithDistance(distance),
		workflow.WithStyle(style),
		workflow.WithDetection(detectionOptions()),
		workflow.WithLogger(logger),
	), nil
}

func detectionOptions() detection.Options {
	opts := cfg.DetectionOptions()
	if flagThreshold > 0 && flagThreshold <= 255 {
		opts.Threshold = uint8(flagThreshold)
	}
	return opts
}

// readShots decodes a JSON array of shot records from path, or from stdin
// when path is empty or "-".
func readShots(cmd *cobra.Command, path string) ([]shotgroup.Record, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, ewrap.Wrapf(err, "failed to open shots file %s", path)
		}
		defer f.Close()
		r = f
	}

	var records []shotgroup.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, ewrap.Wrap(err, "failed to read shots")
	}
	return records, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	records, err := readShots(cmd, path)
	if err != nil {
		return err
	}

	runner, err := newRunner(flagUnit)
	if err != nil {
		return err
	}
	report, err := runner.Run(cmd.Context(), records, nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	_, err = fmt.Fprintln(out, report.Summary)
	return err
}

// regionOf applies --region to img. Coordinates keep the full image space.
func regionOf(img image.Image) (image.Image, error) {
	if flagRegion == "" || flagRegion == "full" {
		return img, nil
	}
	r, err := imaging.NamedRegion(img.Bounds(), flagRegion)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, r)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	runner, err := newRunner(string(units.Pixel))
	if err != nil {
		return err
	}

	img, err := imaging.NewImageCache().Load(args[0])
	if err != nil {
		return err
	}
	canvas, err := annotate.NewCanvas(img, runner.Style())
	if err != nil {
		return err
	}

	var report *workflow.Report
	if flagShots != "" {
		records, err := readShots(cmd, flagShots)
		if err != nil {
			return err
		}
		report, err = runner.Run(cmd.Context(), records, canvas)
		if err != nil {
			return err
		}
	} else {
		region, err := regionOf(img)
		if err != nil {
			return err
		}
		report, err = runner.RunImage(cmd.Context(), region, canvas)
		if err != nil {
			return err
		}
	}

	if err := canvas.Save(flagOutput); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\nwrote %s\n", report.Summary, flagOutput)
	return err
}

func runDetect(cmd *cobra.Command, args []string) error {
	img, err := imaging.NewImageCache().Load(args[0])
	if err != nil {
		return err
	}
	region, err := regionOf(img)
	if err != nil {
		return err
	}

	result, err := detection.DetectHoles(region, detectionOptions())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
