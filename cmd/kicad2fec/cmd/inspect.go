package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/chewxy/sexp"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kicad2fec/pkg/kicad/pcb"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <board_file>",
	Short: "Show a summary of a KiCad PCB file",
	Long: `Parses a board file and prints what the converter would see: file
structure, copper layers, nets and copper object counts.

Useful for checking a board before conversion and for picking the
layer names to pass to convert.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	filename := args[0]

	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	// Raw structural check first. A board that fails here is not an
	// s-expression file at all, which gives a clearer message than
	// whatever the board parser would trip over.
	sexps, err := sexp.Parse(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("malformed s-expression file: %w", err)
	}
	leaves := 0
	for _, s := range sexps {
		if s.IsLeaf() {
			leaves++
		} else {
			leaves += s.LeafCount()
		}
	}

	board, err := pcb.ParseFile(filename)
	if err != nil {
		return fmt.Errorf("failed to parse board: %w", err)
	}

	fmt.Printf("File: %s (%d bytes, %d leaf nodes)\n", filename, info.Size(), leaves)
	fmt.Printf("Version: %d\n", board.Version)
	fmt.Printf("Generator: %s\n", board.Generator)
	if board.General.Title != "" {
		fmt.Printf("Title: %s\n", board.General.Title)
	}
	if board.General.Thickness > 0 {
		fmt.Printf("Board thickness: %g mm\n", board.General.Thickness)
	}

	copper := board.CopperLayerNames()
	fmt.Printf("Copper layers: %d (%s)\n", len(copper), strings.Join(copper, ", "))
	fmt.Printf("Nets: %d\n", len(board.Nets))
	fmt.Printf("Footprints: %d (%d pads)\n", len(board.Footprints), board.PadCount())
	for _, layer := range copper {
		pads := 0
		for _, fp := range board.Footprints {
			for _, pad := range fp.Pads {
				if pad.Layers.Contains(layer) {
					pads++
				}
			}
		}
		fmt.Printf("  %s: %d pads\n", layer, pads)
	}
	fmt.Printf("Tracks: %d\n", len(board.Tracks))
	fmt.Printf("Vias: %d\n", len(board.Vias))

	filled := 0
	for _, z := range board.Zones {
		if len(z.Fills) > 0 {
			filled++
		}
	}
	fmt.Printf("Zones: %d (%d filled)\n", len(board.Zones), filled)
	if len(board.Zones) > filled {
		fmt.Println("Note: unfilled zones produce no copper. Refill zones in pcbnew before converting.")
	}

	bbox := board.GetBoundingBox()
	if !bbox.IsEmpty() {
		fmt.Printf("Board size: %.2f x %.2f mm\n", bbox.Width(), bbox.Height())
		fmt.Printf("Board center: (%.2f, %.2f) mm\n", bbox.Center().X, bbox.Center().Y)
	}
	return nil
}
