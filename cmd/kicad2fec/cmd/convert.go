package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kicad2fec/internal/cli"
	"github.com/OpenTraceLab/kicad2fec/internal/config"
	"github.com/OpenTraceLab/kicad2fec/internal/convert"
	"github.com/OpenTraceLab/kicad2fec/pkg/conductors"
	"github.com/OpenTraceLab/kicad2fec/pkg/fec"
	"github.com/OpenTraceLab/kicad2fec/pkg/geometry"
	"github.com/OpenTraceLab/kicad2fec/pkg/kicad/pcb"
)

var (
	convertOut            string
	convertConductors     string
	convertConfig         string
	convertPreview        string
	convertBounds         []float64
	convertLayers         []string
	convertFrequency      float64
	convertThickness      float64
	convertBoardThickness float64
	convertViaThickness   float64
)

var convertCmd = &cobra.Command{
	Use:   "convert [board_file]",
	Short: "Convert a KiCad PCB to a FEMM current flow problem",
	Long: `Converts a KiCad PCB file into a FEMM current flow problem (.FEC).

The conductor file assigns fixed voltages or current sources to pads,
selected by net name, board region or footprint reference. Without a
board file argument the single .kicad_pcb file in the current
directory is used.

Examples:
  kicad2fec convert board.kicad_pcb -c conductors.txt
  kicad2fec convert -c shunt.txt -b 120,80,160,95
  kicad2fec convert board.kicad_pcb -c plane.txt -p preview.svg`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output file (default: board name with .FEC extension)")
	convertCmd.Flags().StringVarP(&convertConductors, "conductors", "c", "", "conductor specification file (required)")
	convertCmd.Flags().StringVar(&convertConfig, "config", "", "TOML configuration file")
	convertCmd.Flags().StringVarP(&convertPreview, "preview", "p", "", "write an SVG preview of the converted copper")
	convertCmd.Flags().Float64SliceVarP(&convertBounds, "bounds", "b", nil, "board region to convert as xmin,ymin,xmax,ymax")
	convertCmd.Flags().StringSliceVarP(&convertLayers, "layers", "l", []string{"F.Cu", "B.Cu"}, "copper layers to convert, top first")
	convertCmd.Flags().Float64VarP(&convertFrequency, "frequency", "f", 0, "problem frequency in Hz (0 for DC)")
	convertCmd.Flags().Float64VarP(&convertThickness, "thickness", "t", 35, "copper thickness in um")
	convertCmd.Flags().Float64VarP(&convertBoardThickness, "board-thickness", "k", 1.5, "board thickness in mm")
	convertCmd.Flags().Float64VarP(&convertViaThickness, "via-thickness", "v", 17, "via plating thickness in um")

	convertCmd.MarkFlagRequired("conductors")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := cli.LoggerFromContext(ctx)

	boardPath, err := resolveBoardPath(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if convertConfig != "" {
		fileCfg, err := config.Load(convertConfig)
		if err != nil {
			return err
		}
		cfg = fileCfg.Merge(cfg)
	}

	// Flags given on the command line override the config file.
	flags := cmd.Flags()
	if flags.Changed("frequency") {
		cfg.Frequency = convertFrequency
	}
	if flags.Changed("thickness") {
		cfg.Thickness = convertThickness
	}
	if flags.Changed("board-thickness") {
		cfg.BoardThickness = convertBoardThickness
	}
	if flags.Changed("via-thickness") {
		cfg.ViaThickness = convertViaThickness
	}
	if flags.Changed("layers") {
		cfg.Layers = convertLayers
	}

	if cfg.Thickness <= 0 || cfg.BoardThickness <= 0 || cfg.ViaThickness <= 0 {
		return fmt.Errorf("thickness values must be positive")
	}
	if len(cfg.Layers) > 2 {
		logger.Warnf("only the first 2 layers given (%s and %s) will be used",
			cfg.Layers[0], cfg.Layers[1])
		cfg.Layers = cfg.Layers[:2]
	}

	bounds, err := parseBounds(convertBounds)
	if err != nil {
		return err
	}

	parser, err := conductors.NewParser()
	if err != nil {
		return err
	}
	specs, err := parser.ParseFile(convertConductors)
	if err != nil {
		return fmt.Errorf("failed to parse conductor file: %w", err)
	}

	board, err := pcb.ParseFile(boardPath)
	if err != nil {
		return fmt.Errorf("failed to parse board file: %w", err)
	}
	if abs, err := filepath.Abs(boardPath); err == nil {
		logger.Infof("Opened input file %q", abs)
	}

	copper := board.CopperLayerNames()
	for _, layer := range cfg.Layers {
		if !slices.Contains(copper, layer) {
			return fmt.Errorf("layer %q is not a copper layer on this board (have %s)",
				layer, strings.Join(copper, ", "))
		}
	}

	conv, err := convert.New(convert.Options{
		Specs:           specs,
		Layers:          cfg.Layers,
		Bounds:          bounds,
		BoardThickness:  cfg.BoardThickness,
		Clearance:       cfg.Clearance,
		PadRatio:        cfg.PadRatio,
		Conductivity:    cfg.Material.Conductivity,
		ViaConductivity: cfg.Material.Conductivity * cfg.ViaThickness / cfg.Thickness,
	})
	if err != nil {
		return err
	}

	doc, err := conv.Run(ctx, board)
	if err != nil {
		return err
	}

	// Post-process fully in memory first so a failure never leaves a
	// partial output file behind.
	if err := doc.Normalize(); err != nil {
		return err
	}

	outPath := convertOut
	if outPath == "" {
		base := filepath.Base(boardPath)
		outPath = strings.TrimSuffix(base, filepath.Ext(base)) + ".FEC"
	}

	opts := fec.DefaultWriteOptions()
	opts.Frequency = cfg.Frequency
	opts.Depth = cfg.Thickness / 1000 // um to mm

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := doc.WriteTo(out, opts); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if abs, err := filepath.Abs(outPath); err == nil {
		logger.Infof("Wrote output file %q", abs)
	}

	if convertPreview != "" {
		if err := writePreview(conv, convertPreview); err != nil {
			return err
		}
		logger.Infof("Wrote preview file %q", convertPreview)
	}
	return nil
}

// resolveBoardPath returns the board argument, or the only .kicad_pcb
// file in the current directory when none was given.
func resolveBoardPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	matches, err := filepath.Glob("*.kicad_pcb")
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no .kicad_pcb file in the current directory, pass one explicitly")
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("multiple .kicad_pcb files found (%s), pass one explicitly",
			strings.Join(matches, ", "))
	}
}

func parseBounds(vals []float64) (*geometry.Rect, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	if len(vals) != 4 {
		return nil, fmt.Errorf("bounds needs exactly 4 values (xmin,ymin,xmax,ymax), got %d", len(vals))
	}
	r := &geometry.Rect{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
	if r.MinX >= r.MaxX || r.MinY >= r.MaxY {
		return nil, fmt.Errorf("bounds rectangle is empty")
	}
	return r, nil
}

func writePreview(conv *convert.Converter, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create preview file: %w", err)
	}
	if err := conv.WritePreview(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
