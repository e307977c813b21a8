package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/cwbudde/piecefinder/internal/match"
	"github.com/cwbudde/piecefinder/internal/store"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/spf13/cobra"

	// Extra decoders for imaging.Open.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	gridSize     []int
	overlayColor string
	alphaMax     float64
	alphaStep    float64
	topK         int
	borderWidth  int
	metricName   string
	scoringName  string
	workers      int
	outPath      string
	dataDir      string
	printCurves  bool
)

var locateCmd = &cobra.Command{
	Use:   "locate REFERENCE TARGET",
	Short: "Find the grid cell that best matches a piece",
	Long: `Cuts REFERENCE into a grid, ranks every cell by colour histogram similarity
to TARGET and writes an overlay image highlighting the best matches.`,
	Args: cobra.ExactArgs(2),
	RunE: runLocate,
}

func init() {
	defaults := match.DefaultConfig()

	locateCmd.Flags().IntSliceVar(&gridSize, "size", []int{defaults.Grid.Cols, defaults.Grid.Rows}, "Number of pieces horizontally and vertically (cols,rows)")
	locateCmd.Flags().StringVar(&overlayColor, "color", "#ffff00", "Highlight colour as hex")
	locateCmd.Flags().Float64Var(&alphaMax, "alpha-max", defaults.AlphaMax, "Highlight blend weight of the best match")
	locateCmd.Flags().Float64Var(&alphaStep, "alpha-step", defaults.AlphaStep, "Blend weight decrease per rank")
	locateCmd.Flags().IntVar(&topK, "top-k", defaults.TopK, "Number of ranked pieces to report (0 = all)")
	locateCmd.Flags().IntVar(&borderWidth, "border", defaults.BorderWidth, "Cell border width in pixels")
	locateCmd.Flags().StringVar(&metricName, "metric", defaults.Metric.String(), "Histogram comparison: intersection, correlation")
	locateCmd.Flags().StringVar(&scoringName, "scoring", defaults.Scoring.String(), "Channel combination: sum, legacy")
	locateCmd.Flags().IntVar(&workers, "workers", defaults.Workers, "Histogram workers (0 = number of CPUs)")
	locateCmd.Flags().StringVar(&outPath, "out", "", "Overlay output path (default: store under --data-dir)")
	locateCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for stored overlays")
	locateCmd.Flags().BoolVar(&printCurves, "curves", false, "Print histogram curves of the target and top matches as TSV")

	rootCmd.AddCommand(locateCmd)
}

// buildConfig turns the command line flags into a match configuration.
func buildConfig() (match.Config, error) {
	cfg := match.DefaultConfig()

	if len(gridSize) != 2 {
		return cfg, fmt.Errorf("--size needs two values (cols,rows), got %d", len(gridSize))
	}
	cfg.Grid = match.GridSize{Cols: gridSize[0], Rows: gridSize[1]}

	c, err := parseColor(overlayColor)
	if err != nil {
		return cfg, err
	}
	cfg.OverlayColor = c

	cfg.Metric, err = match.ParseMetric(metricName)
	if err != nil {
		return cfg, err
	}
	cfg.Scoring, err = match.ParseScoringMode(scoringName)
	if err != nil {
		return cfg, err
	}

	cfg.AlphaMax = alphaMax
	cfg.AlphaStep = alphaStep
	cfg.TopK = topK
	cfg.BorderWidth = borderWidth
	cfg.Workers = workers

	return cfg, cfg.Validate()
}

// parseColor parses a hex colour such as "#ffff00".
func parseColor(s string) (color.NRGBA, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid --color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// loadImage decodes an image file, applying EXIF orientation.
func loadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return img, nil
}

func runLocate(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	ref, err := loadImage(args[0])
	if err != nil {
		return err
	}
	target, err := loadImage(args[1])
	if err != nil {
		return err
	}
	slog.Info("Loaded images",
		"reference", args[0],
		"reference_width", ref.Bounds().Dx(),
		"reference_height", ref.Bounds().Dy(),
		"target", args[1],
		"grid", cfg.Grid.String(),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := match.Locate(ctx, ref, target, cfg)
	if err != nil {
		return err
	}

	path, err := saveOverlay(result.Overlay)
	if err != nil {
		return err
	}

	slog.Info("Location complete",
		"elapsed", result.Elapsed,
		"best_offset", result.Best().Offset(),
		"overlay", path,
	)

	out := cmd.OutOrStdout()
	printRanking(out, result.Ranking, cfg.TopK)
	if printCurves {
		writeCurves(out, match.Curves(result.Target, result.Ranking, cfg.TopK))
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}

// saveOverlay writes to --out when given, otherwise into a new run of the
// overlay store.
func saveOverlay(overlay image.Image) (string, error) {
	if outPath != "" {
		if err := store.WriteImageAtomic(outPath, overlay); err != nil {
			return "", fmt.Errorf("failed to write overlay: %w", err)
		}
		return outPath, nil
	}

	overlayStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return "", fmt.Errorf("failed to create overlay store: %w", err)
	}
	return overlayStore.SaveOverlay(store.NewRunID(), overlay)
}

func printRanking(w io.Writer, r *match.Ranking, k int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tOFFSET\tROW\tCOL\tSCORE")
	fmt.Fprintln(tw, "----\t------\t---\t---\t-----")
	for rank, p := range r.Top(k) {
		pos, _ := p.Position()
		score, _ := p.Score()
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.4f\n", rank, p.Offset(), pos.Row, pos.Col, score)
	}
	tw.Flush()
}

// writeCurves prints one line per (label, channel, bucket, count).
func writeCurves(w io.Writer, curves []match.Curve) {
	fmt.Fprintln(w, "label\tchannel\tbucket\tcount")
	for _, c := range curves {
		for _, pt := range c.Points {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", c.Label, c.Channel, pt.Bucket, pt.Count)
		}
	}
}
