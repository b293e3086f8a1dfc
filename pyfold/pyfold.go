package pyfold

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold"
	"github.com/2x3systems/hyperfold/libfold/diff"
	"github.com/2x3systems/hyperfold/libfold/workspace"
	"github.com/go-python/gpython/py"
	"github.com/pkg/errors"
)

var (
	LIB_VERSION = "v1.2026.1"
)

var (
	pySnapshotType  = py.NewType("Snapshot", "an immutable RNA fold hypergraph")
	pyWorkspaceType = py.NewType("Workspace", "folds of one sequence across temperatures")
)

// openWorkspaces tracks every Workspace created by a module so they can be closed with its context.
var (
	openMu         sync.Mutex
	openWorkspaces = map[*py.Module][]*pyWorkspace{}
)

// pyErr maps a Go error onto the closest Python exception.
func pyErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, hyperfold.ErrInvalidArgument),
		errors.Is(err, hyperfold.ErrStructure),
		errors.Is(err, hyperfold.ErrIncompatibleComparison):
		return py.ExceptionNewf(py.ValueError, "%v", err)
	case errors.Is(err, hyperfold.ErrMissingSnapshot):
		return py.ExceptionNewf(py.KeyError, "%v", err)
	}
	return py.ExceptionNewf(py.RuntimeError, "%v", err)
}

func toTemp(obj py.Object) (hyperfold.Temp, error) {
	switch v := obj.(type) {
	case py.Float:
		return hyperfold.Temp(v), nil
	case py.Int:
		return hyperfold.Temp(v), nil
	}
	return 0, py.ExceptionNewf(py.TypeError, "expected a number (got %v)", obj.Type().Name)
}

func toInt(obj py.Object) (int, error) {
	v, err := py.GetInt(obj)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func tempsTuple(temps []hyperfold.Temp) py.Tuple {
	out := make(py.Tuple, len(temps))
	for i, t := range temps {
		out[i] = py.Float(t)
	}
	return out
}

func intsTuple(vals []int) py.Tuple {
	out := make(py.Tuple, len(vals))
	for i, v := range vals {
		out[i] = py.Int(v)
	}
	return out
}

// countsTuple renders a node -> count map as ((node, count), ..) ordered by node.
func countsTuple[V int | float64](counts map[int]V) py.Tuple {
	nodes := make([]int, 0, len(counts))
	for n := range counts {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)

	out := make(py.Tuple, len(nodes))
	for i, n := range nodes {
		var val py.Object
		switch v := any(counts[n]).(type) {
		case int:
			val = py.Int(v)
		case float64:
			val = py.Float(v)
		}
		out[i] = py.Tuple{py.Int(n), val}
	}
	return out
}

/////////////////////////////////
// Snapshot

type pySnapshot struct {
	*hyperfold.Snapshot
}

func (snap pySnapshot) Type() *py.Type {
	return pySnapshotType
}

func (snap pySnapshot) M__str__() (py.Object, error) {
	return py.String(snap.String()), nil
}

func (snap pySnapshot) M__repr__() (py.Object, error) {
	return snap.M__str__()
}

func getSnapshot(obj py.Object) (pySnapshot, error) {
	snap, ok := obj.(pySnapshot)
	if !ok {
		return pySnapshot{}, py.ExceptionNewf(py.TypeError, "expected Snapshot object (got %v)", obj.Type().Name)
	}
	return snap, nil
}

func edgeDict(dict map[string][]int) py.StringDict {
	out := py.NewStringDict()
	for name, nodes := range dict {
		out[name] = intsTuple(nodes)
	}
	return out
}

func py_Snapshot_IncidenceDict(self py.Object, args py.Tuple) (py.Object, error) {
	snap := self.(pySnapshot)
	return edgeDict(snap.IncidenceDict()), nil
}

func py_Snapshot_SecondaryStructures(self py.Object, args py.Tuple) (py.Object, error) {
	snap := self.(pySnapshot)
	return edgeDict(diff.SecondaryStructures(snap.Snapshot)), nil
}

func py_Snapshot_NumNodes(self py.Object, args py.Tuple) (py.Object, error) {
	snap := self.(pySnapshot)
	return py.Int(snap.NumNodes()), nil
}

func py_Snapshot_Equal(self py.Object, args py.Tuple) (py.Object, error) {
	snap := self.(pySnapshot)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Equal() takes exactly one Snapshot")
	}
	other, err := getSnapshot(args[0])
	if err != nil {
		return nil, err
	}
	return py.NewBool(snap.Equal(other.Snapshot)), nil
}

// BuildSnapshot(dotbracket, seq="")
func py_BuildSnapshot(module py.Object, args py.Tuple) (py.Object, error) {
	var dotbracket, seq string
	if err := py.LoadTuple(args, []interface{}{&dotbracket, &seq}); err != nil {
		return nil, err
	}
	labels, err := libfold.ElementClassifier{}.Classify(dotbracket)
	if err != nil {
		return nil, pyErr(err)
	}
	snap, err := libfold.BuildSnapshot(dotbracket, labels, hyperfold.BuildOpts{Symbols: strings.ToUpper(seq)})
	if err != nil {
		return nil, pyErr(err)
	}
	return pySnapshot{snap}, nil
}

// Classify(dotbracket) -> ((kind, instance, (nodes..)), ..)
func py_Classify(module py.Object, args py.Tuple) (py.Object, error) {
	var dotbracket string
	if err := py.LoadTuple(args, []interface{}{&dotbracket}); err != nil {
		return nil, err
	}
	labels, err := libfold.ElementClassifier{}.Classify(dotbracket)
	if err != nil {
		return nil, pyErr(err)
	}
	out := make(py.Tuple, len(labels))
	for i, l := range labels {
		out[i] = py.Tuple{py.String(string(l.Kind)), py.Int(l.Instance), intsTuple(l.Nodes)}
	}
	return out, nil
}

// ParseSweep(expr) -> (t, ..)
func py_ParseSweep(module py.Object, args py.Tuple) (py.Object, error) {
	var expr string
	if err := py.LoadTuple(args, []interface{}{&expr}); err != nil {
		return nil, err
	}
	temps, err := libfold.ParseSweepExpr(expr)
	if err != nil {
		return nil, pyErr(err)
	}
	return tempsTuple(temps), nil
}

/////////////////////////////////
// Workspace

type pyWorkspace struct {
	*workspace.Workspace
}

func (ws *pyWorkspace) Type() *py.Type {
	return pyWorkspaceType
}

// pyOracle folds by calling a Python callable fold(seq, t) -> str.
type pyOracle struct {
	fn py.Object
}

func (o pyOracle) Fold(ctx context.Context, seq string, t hyperfold.Temp) (string, error) {
	res, err := py.Call(o.fn, py.Tuple{py.String(seq), py.Float(t)}, nil)
	if err != nil {
		return "", errors.Wrapf(hyperfold.ErrFold, "fold callable: %v", err)
	}
	str, ok := res.(py.String)
	if !ok {
		return "", errors.Wrapf(hyperfold.ErrFold, "fold callable returned %v, not str", res.Type().Name)
	}
	return string(str), nil
}

// Workspace(seq, fold=None, store="search", resolution=1, workers=0, skip_failures=False)
//
// If fold is given it is called as fold(seq, t) and must return a dot-bracket string;
// otherwise RNAfold is run from $PATH.
func py_Workspace(module py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	var seq string
	if err := py.LoadTuple(args, []interface{}{&seq}); err != nil {
		return nil, err
	}
	opts := workspace.DefaultOpts(seq)

	var oracle hyperfold.Oracle = libfold.RNAfoldOracle{}
	if fn, ok := kwargs["fold"]; ok && fn != py.None {
		oracle = pyOracle{fn}
		opts.Sweep.Workers = 1 // the interpreter is single threaded
	}
	if obj, ok := kwargs["store"]; ok {
		name, isStr := obj.(py.String)
		if !isStr {
			return nil, py.ExceptionNewf(py.TypeError, "store must be a str")
		}
		strategy, err := hyperfold.ParseStoreStrategy(string(name))
		if err != nil {
			return nil, pyErr(err)
		}
		opts.Store.Strategy = strategy
	}
	if obj, ok := kwargs["resolution"]; ok {
		res, err := toTemp(obj)
		if err != nil {
			return nil, err
		}
		opts.Store.Resolution = res
	}
	if obj, ok := kwargs["workers"]; ok && opts.Sweep.Workers != 1 {
		n, err := toInt(obj)
		if err != nil {
			return nil, err
		}
		opts.Sweep.Workers = n
	}
	if obj, ok := kwargs["skip_failures"]; ok {
		opts.Sweep.SkipFailures = obj == py.True
	}

	ws, err := workspace.New(opts, oracle, nil)
	if err != nil {
		return nil, pyErr(err)
	}
	pyWs := &pyWorkspace{ws}

	if m, ok := module.(*py.Module); ok {
		openMu.Lock()
		openWorkspaces[m] = append(openWorkspaces[m], pyWs)
		openMu.Unlock()
	}
	return pyWs, nil
}

func reportDict(report *hyperfold.SweepReport) py.StringDict {
	dict := py.NewStringDict()
	dict["requested"] = tempsTuple(report.Requested)
	dict["computed"] = tempsTuple(report.Computed)
	dict["cached"] = tempsTuple(report.Cached)

	failed := make(py.Tuple, len(report.Failed))
	for i, f := range report.Failed {
		failed[i] = py.Tuple{py.Float(f.T), py.String(f.Err.Error())}
	}
	dict["failed"] = failed
	return dict
}

// loadTemps reads the first n args as temperatures.
func loadTemps(args py.Tuple, n int) ([]hyperfold.Temp, error) {
	if len(args) < n {
		return nil, py.ExceptionNewf(py.TypeError, "expected %d temperatures, got %d", n, len(args))
	}
	temps := make([]hyperfold.Temp, n)
	for i := range temps {
		t, err := toTemp(args[i])
		if err != nil {
			return nil, err
		}
		temps[i] = t
	}
	return temps, nil
}

func py_Workspace_InsertOne(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	temps, err := loadTemps(args, 1)
	if err != nil {
		return nil, err
	}
	added, err := ws.Sweep.InsertOne(context.Background(), temps[0])
	if err != nil {
		return nil, pyErr(err)
	}
	return py.NewBool(added), nil
}

// InsertMany(temps) folds every temperature in a tuple or list.
func py_Workspace_InsertMany(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "InsertMany() takes a tuple or list of temperatures")
	}
	var items py.Tuple
	switch v := args[0].(type) {
	case py.Tuple:
		items = v
	case *py.List:
		items = v.Items
	default:
		return nil, py.ExceptionNewf(py.TypeError, "expected tuple or list (got %v)", args[0].Type().Name)
	}
	temps, err := loadTemps(items, len(items))
	if err != nil {
		return nil, err
	}
	report, err := ws.Sweep.InsertMany(context.Background(), temps)
	if err != nil {
		return nil, pyErr(err)
	}
	return reportDict(report), nil
}

// InsertRange(start, end, step=resolution)
func py_Workspace_InsertRange(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	temps, err := loadTemps(args, 2)
	if err != nil {
		return nil, err
	}
	step := ws.Store.Grid().Resolution
	if len(args) > 2 {
		if step, err = toTemp(args[2]); err != nil {
			return nil, err
		}
	}
	report, err := ws.Sweep.InsertRange(context.Background(), temps[0], temps[1], step)
	if err != nil {
		return nil, pyErr(err)
	}
	return reportDict(report), nil
}

// Sweep(expr) sweeps a temperature expression such as "10..40:2, 55".
func py_Workspace_Sweep(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	var expr string
	if err := py.LoadTuple(args, []interface{}{&expr}); err != nil {
		return nil, err
	}
	report, err := ws.Sweep.InsertExpr(context.Background(), expr)
	if err != nil {
		return nil, pyErr(err)
	}
	return reportDict(report), nil
}

func py_Workspace_Get(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	temps, err := loadTemps(args, 1)
	if err != nil {
		return nil, err
	}
	snap, err := ws.SnapshotAt(context.Background(), temps[0])
	if err != nil {
		return nil, pyErr(err)
	}
	return pySnapshot{snap}, nil
}

func py_Workspace_Exists(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	temps, err := loadTemps(args, 1)
	if err != nil {
		return nil, err
	}
	return py.NewBool(ws.Store.Exists(temps[0])), nil
}

// Ranges() -> ((lo, hi, Snapshot), ..)
func py_Workspace_Ranges(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	ranges := ws.Store.Ranges()
	out := make(py.Tuple, len(ranges))
	for i, r := range ranges {
		out[i] = py.Tuple{py.Float(r.Range.Lo), py.Float(r.Range.Hi), pySnapshot{r.Snapshot}}
	}
	return out, nil
}

func (ws *pyWorkspace) snapshotPair(args py.Tuple) (*hyperfold.Snapshot, *hyperfold.Snapshot, error) {
	temps, err := loadTemps(args, 2)
	if err != nil {
		return nil, nil, err
	}
	ctx := context.Background()
	a, err := ws.SnapshotAt(ctx, temps[0])
	if err != nil {
		return nil, nil, pyErr(err)
	}
	b, err := ws.SnapshotAt(ctx, temps[1])
	if err != nil {
		return nil, nil, pyErr(err)
	}
	return a, b, nil
}

// StructureDifferences(t1, t2) -> {kind: count at t1 - count at t2}
func py_Workspace_StructureDifferences(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	a, b, err := ws.snapshotPair(args)
	if err != nil {
		return nil, err
	}
	diffs, err := diff.StructureDifferences(a, b)
	if err != nil {
		return nil, pyErr(err)
	}
	out := py.NewStringDict()
	for kind, n := range diffs {
		out[string(kind)] = py.Int(n)
	}
	return out, nil
}

func connectionsTuple(conns []diff.Connection) py.Tuple {
	out := make(py.Tuple, len(conns))
	for i, c := range conns {
		out[i] = py.Tuple{py.Int(c.Node), py.Int(c.Partner)}
	}
	return out
}

// ConnectionDifferences(t1, t2) -> (removed, added)
func py_Workspace_ConnectionDifferences(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	a, b, err := ws.snapshotPair(args)
	if err != nil {
		return nil, err
	}
	d, err := diff.ConnectionDifferences(a, b)
	if err != nil {
		return nil, pyErr(err)
	}
	return py.Tuple{connectionsTuple(d.Removed), connectionsTuple(d.Added)}, nil
}

// NucleotidesChanged(t1, t2) -> (node, ..)
func py_Workspace_NucleotidesChanged(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	a, b, err := ws.snapshotPair(args)
	if err != nil {
		return nil, err
	}
	nodes, err := diff.NucleotidesChanged(a, b)
	if err != nil {
		return nil, pyErr(err)
	}
	return intsTuple(nodes), nil
}

// NucleotideSensitivity(start, end) -> ((node, count), ..)
func py_Workspace_NucleotideSensitivity(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	temps, err := loadTemps(args, 2)
	if err != nil {
		return nil, err
	}
	counts, err := ws.Diff.NucleotideSensitivity(context.Background(), temps[0], temps[1])
	if err != nil {
		return nil, pyErr(err)
	}
	return countsTuple(counts), nil
}

// ConnectionSensitivity(start, end) -> ((node, count), ..)
func py_Workspace_ConnectionSensitivity(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	temps, err := loadTemps(args, 2)
	if err != nil {
		return nil, err
	}
	counts, err := ws.Diff.ConnectionSensitivity(context.Background(), temps[0], temps[1])
	if err != nil {
		return nil, pyErr(err)
	}
	return countsTuple(counts), nil
}

func (ws *pyWorkspace) analyst(args py.Tuple) (*diff.Analyst, error) {
	temps, err := loadTemps(args, 1)
	if err != nil {
		return nil, err
	}
	a, err := ws.Analyst(context.Background(), temps[0])
	if err != nil {
		return nil, pyErr(err)
	}
	return a, nil
}

// Partitions(t) -> ((nodes..), ..)
func py_Workspace_Partitions(self py.Object, args py.Tuple) (py.Object, error) {
	a, err := self.(*pyWorkspace).analyst(args)
	if err != nil {
		return nil, err
	}
	parts := a.Partitions()
	out := make(py.Tuple, len(parts))
	for i, p := range parts {
		out[i] = intsTuple(p)
	}
	return out, nil
}

func py_Workspace_Modularity(self py.Object, args py.Tuple) (py.Object, error) {
	a, err := self.(*pyWorkspace).analyst(args)
	if err != nil {
		return nil, err
	}
	return py.Float(a.Modularity()), nil
}

func py_Workspace_PartitionsConductance(self py.Object, args py.Tuple) (py.Object, error) {
	a, err := self.(*pyWorkspace).analyst(args)
	if err != nil {
		return nil, err
	}
	vals := a.PartitionsConductance()
	out := make(py.Tuple, len(vals))
	for i, v := range vals {
		out[i] = py.Float(v)
	}
	return out, nil
}

// SBetweenness(t, s=1) -> ((node, centrality), ..)
func py_Workspace_SBetweenness(self py.Object, args py.Tuple) (py.Object, error) {
	a, err := self.(*pyWorkspace).analyst(args)
	if err != nil {
		return nil, err
	}
	s := 1
	if len(args) > 1 {
		if s, err = toInt(args[1]); err != nil {
			return nil, err
		}
	}
	return countsTuple(a.SBetweenness(s)), nil
}

func py_Workspace_Close(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*pyWorkspace)
	if err := ws.Close(); err != nil {
		return nil, pyErr(err)
	}
	return py.None, nil
}

func init() {

	/////////////////////////////////
	// Snapshot
	{
		pySnapshotType.Dict["IncidenceDict"] = py.MustNewMethod("IncidenceDict", py_Snapshot_IncidenceDict, 0, "returns {edge name: (nodes..)}")
		pySnapshotType.Dict["SecondaryStructures"] = py.MustNewMethod("SecondaryStructures", py_Snapshot_SecondaryStructures, 0, "returns the structural edges only")
		pySnapshotType.Dict["NumNodes"] = py.MustNewMethod("NumNodes", py_Snapshot_NumNodes, 0, "")
		pySnapshotType.Dict["Equal"] = py.MustNewMethod("Equal", py_Snapshot_Equal, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["InsertOne"] = py.MustNewMethod("InsertOne", py_Workspace_InsertOne, 0, "folds one temperature, returning True if newly computed")
		pyWorkspaceType.Dict["InsertMany"] = py.MustNewMethod("InsertMany", py_Workspace_InsertMany, 0, "")
		pyWorkspaceType.Dict["InsertRange"] = py.MustNewMethod("InsertRange", py_Workspace_InsertRange, 0, "")
		pyWorkspaceType.Dict["Sweep"] = py.MustNewMethod("Sweep", py_Workspace_Sweep, 0, "")
		pyWorkspaceType.Dict["Get"] = py.MustNewMethod("Get", py_Workspace_Get, 0, "")
		pyWorkspaceType.Dict["Exists"] = py.MustNewMethod("Exists", py_Workspace_Exists, 0, "")
		pyWorkspaceType.Dict["Ranges"] = py.MustNewMethod("Ranges", py_Workspace_Ranges, 0, "")
		pyWorkspaceType.Dict["StructureDifferences"] = py.MustNewMethod("StructureDifferences", py_Workspace_StructureDifferences, 0, "")
		pyWorkspaceType.Dict["ConnectionDifferences"] = py.MustNewMethod("ConnectionDifferences", py_Workspace_ConnectionDifferences, 0, "")
		pyWorkspaceType.Dict["NucleotidesChanged"] = py.MustNewMethod("NucleotidesChanged", py_Workspace_NucleotidesChanged, 0, "")
		pyWorkspaceType.Dict["NucleotideSensitivity"] = py.MustNewMethod("NucleotideSensitivity", py_Workspace_NucleotideSensitivity, 0, "")
		pyWorkspaceType.Dict["ConnectionSensitivity"] = py.MustNewMethod("ConnectionSensitivity", py_Workspace_ConnectionSensitivity, 0, "")
		pyWorkspaceType.Dict["Partitions"] = py.MustNewMethod("Partitions", py_Workspace_Partitions, 0, "")
		pyWorkspaceType.Dict["Modularity"] = py.MustNewMethod("Modularity", py_Workspace_Modularity, 0, "")
		pyWorkspaceType.Dict["PartitionsConductance"] = py.MustNewMethod("PartitionsConductance", py_Workspace_PartitionsConductance, 0, "")
		pyWorkspaceType.Dict["SBetweenness"] = py.MustNewMethod("SBetweenness", py_Workspace_SBetweenness, 0, "")
		pyWorkspaceType.Dict["Close"] = py.MustNewMethod("Close", py_Workspace_Close, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("BuildSnapshot", py_BuildSnapshot, 0, "BuildSnapshot(dotbracket, seq='') builds a fold hypergraph"),
			py.MustNewMethod("Classify", py_Classify, 0, "Classify(dotbracket) lists structural elements"),
			py.MustNewMethod("ParseSweep", py_ParseSweep, 0, "ParseSweep(expr) lists the temperatures of a sweep expression"),
			py.MustNewMethod("Workspace", py_Workspace, 0, "Workspace(seq, fold=None, store='search', resolution=1, workers=0, skip_failures=False)"),
		}

		globals := py.StringDict{
			"LIB_VERSION":  py.String(LIB_VERSION),
			"DEFAULT_TEMP": py.Float(hyperfold.DefaultTemp),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyfold",
				Doc:  "RNA fold hypergraph gpython module",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				openMu.Lock()
				open := openWorkspaces[m]
				delete(openWorkspaces, m)
				openMu.Unlock()
				for _, ws := range open {
					ws.Close()
				}
			},
		})
	}
}
