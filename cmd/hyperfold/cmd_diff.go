package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold/diff"
	"github.com/spf13/cobra"
)

var (
	diffCmd = &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Compares the folds at two temperatures and reports nucleotide sensitivity between them",
		Args:  cobra.ExactArgs(2),
		RunE:  runDiff,
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze <temperature>",
		Short: "Prints the communities, modularity and conductance of the fold at one temperature",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
)

// kindSummary lists the number of structural elements of each kind, e.g. "h:1 s:2".
func kindSummary(snap *hyperfold.Snapshot) string {
	counts := make(map[byte]int)
	for _, e := range snap.EdgesOfKind(hyperfold.StructEdge) {
		counts[e.Name[0]]++
	}
	return formatKindCounts(counts)
}

func formatKindCounts(counts map[byte]int) string {
	kinds := make([]byte, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var b strings.Builder
	for i, k := range kinds {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%c:%d", k, counts[k])
	}
	return b.String()
}

func writeConnections(out io.Writer, label string, conns []diff.Connection) {
	fmt.Fprintf(out, "%-8s", label)
	for _, c := range conns {
		fmt.Fprintf(out, " %v", c)
	}
	fmt.Fprintln(out)
}

func writeCounts(out io.Writer, label string, counts map[int]int) {
	nodes := make([]int, 0, len(counts))
	for n := range counts {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)

	fmt.Fprintf(out, "%-8s", label)
	for _, n := range nodes {
		fmt.Fprintf(out, " %d:%d", n, counts[n])
	}
	fmt.Fprintln(out)
}

func runDiff(cmd *cobra.Command, args []string) error {
	from, err := parseTemp(args[0])
	if err != nil {
		return err
	}
	to, err := parseTemp(args[1])
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx := cmd.Context()
	a, err := ws.SnapshotAt(ctx, from)
	if err != nil {
		return err
	}
	b, err := ws.SnapshotAt(ctx, to)
	if err != nil {
		return err
	}

	structs, err := diff.StructureDifferences(a, b)
	if err != nil {
		return err
	}
	conns, err := diff.ConnectionDifferences(a, b)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%v -> %v\n", from, to)
	fmt.Fprintf(out, "%-8s %s\n", "kinds", formatKindCounts(structs))
	writeConnections(out, "removed", conns.Removed)
	writeConnections(out, "added", conns.Added)

	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	sensitivity, err := ws.Diff.NucleotideSensitivity(ctx, lo, hi)
	if err != nil {
		return err
	}
	writeCounts(out, "nt", sensitivity)

	connSensitivity, err := ws.Diff.ConnectionSensitivity(ctx, lo, hi)
	if err != nil {
		return err
	}
	writeCounts(out, "pairs", connSensitivity)
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	t, err := parseTemp(args[0])
	if err != nil {
		return err
	}

	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	analyst, err := ws.Analyst(cmd.Context(), t)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "T=%v  %s\n", t, kindSummary(analyst.Snapshot()))
	fmt.Fprintf(out, "modularity %.4f\n", analyst.Modularity())
	conductance := analyst.PartitionsConductance()
	for i, p := range analyst.Partitions() {
		fmt.Fprintf(out, "  %2d  conductance %.4f  %v\n", i, conductance[i], p)
	}
	return nil
}
