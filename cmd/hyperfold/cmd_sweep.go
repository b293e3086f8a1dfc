package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	printIncidence bool

	sweepCmd = &cobra.Command{
		Use:   "sweep [temperatures]",
		Short: "Folds over a temperature expression such as \"10..90:2, 95\" and prints the coalesced ranges",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
)

func init() {
	sweepCmd.Flags().BoolVarP(&printIncidence, "incidence", "i", false, "print each range's hyperedges")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	report, err := ws.Sweep.InsertExpr(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	writeReport(out, report)
	for _, r := range ws.Store.Ranges() {
		fmt.Fprintf(out, "%-16v %s\n", r.Range, kindSummary(r.Snapshot))
		if printIncidence {
			r.Snapshot.WriteAsString(out)
			fmt.Fprintln(out)
		}
	}
	return nil
}

func writeReport(out io.Writer, report *hyperfold.SweepReport) {
	fmt.Fprintf(out, "requested %d, computed %d, cached %d, failed %d\n",
		len(report.Requested), len(report.Computed), len(report.Cached), len(report.Failed))
	for _, f := range report.Failed {
		fmt.Fprintf(out, "  T=%v: %v\n", f.T, f.Err)
	}
}

func parseTemp(arg string) (hyperfold.Temp, error) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, errors.Wrapf(hyperfold.ErrInvalidArgument, "temperature %q", arg)
	}
	return hyperfold.Temp(v), nil
}
