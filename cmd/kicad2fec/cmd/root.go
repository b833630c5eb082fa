package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/kicad2fec/internal/cli"
)

var (
	// Global flags
	verbose bool
	quiet   bool
)

var rootCmd = &cobra.Command{
	Use:   "kicad2fec",
	Short: "KiCad PCB to FEMM current flow converter",
	Long: `kicad2fec converts KiCad PCB files (.kicad_pcb) into FEMM current
flow problems (.FEC) for planar resistance and current density
simulation.

Copper fills, traces, pads and vias on up to two layers become
conductive regions laid out side by side in a single plane. Vias are
unrolled into thin strips whose edges are tied to the layers they
connect with periodic boundary conditions.

Examples:
  kicad2fec convert board.kicad_pcb -c conductors.txt
  kicad2fec convert -c shunt.txt -b 120,80,160,95 -o shunt.FEC
  kicad2fec inspect board.kicad_pcb`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.InfoLevel
		if quiet {
			level = log.WarnLevel
		}
		if verbose {
			level = log.DebugLevel
		}
		cmd.SetContext(cli.WithLogger(cmd.Context(), cli.NewLogger(os.Stderr, level)))
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		cli.NewLogger(os.Stderr, log.ErrorLevel).Error(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only report warnings and errors")
}
