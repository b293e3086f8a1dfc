package hyperfold

import (
	"context"
)

// Temp is the external scalar parameter a fold is computed at (a temperature, in Celsius).
type Temp float64

// DefaultTemp is the temperature used when a caller asks for "the" fold of a sequence.
const DefaultTemp Temp = 37

// Edge name prefixes.  Structural edges are named "<kind>_<n>" where kind is a single classifier letter.
const (
	SeqEdgePrefix  = "l"
	PairEdgePrefix = "db"
)

// ElementLabel is one structural element reported by a Classifier.
// Nodes are one-based; 0 and len+1 are boundary sentinels and are discarded by the builder.
type ElementLabel struct {
	Kind     byte  // 's' stem, 'h' hairpin, 'i' interior loop, 'm' multiloop, 'f' 5' tail, 't' 3' tail
	Instance int   // zero-based count of elements of this Kind seen so far
	Nodes    []int // one-based nucleotide positions
}

// Oracle folds a sequence at a given temperature into bracket notation.
// The returned string has the same length as seq and uses '(', ')' and '.'.
type Oracle interface {
	Fold(ctx context.Context, seq string, t Temp) (string, error)
}

// Classifier labels the contiguous structural elements of a bracket string.
type Classifier interface {
	Classify(dotbracket string) ([]ElementLabel, error)
}

// IncidenceProducer produces the Snapshot for a given temperature.
// Implementations must be safe to call from multiple goroutines at once.
type IncidenceProducer interface {
	SnapshotAt(ctx context.Context, t Temp) (*Snapshot, error)
}

// StoreStrategy selects a TemporalStore implementation.  The zero value is SearchOptimized.
type StoreStrategy int32

const (
	SearchOptimized StoreStrategy = iota // coalesced ranges plus a per-temperature index
	MemoryOptimized                      // coalesced ranges, lookup by ordered search
	Pointwise                            // one entry per temperature, no coalescing
)

// TemporalStore holds snapshots keyed by temperature.
//
// Insert is not safe to call concurrently; the coalescing scan-then-mutate is not atomic.
// Get and Exists may run alongside each other but not alongside Insert.
type TemporalStore interface {

	// Insert associates snap with t.
	// Returns false (and no error) if t already holds an equal snapshot.
	// Returns ErrConflictingSnapshot if t already holds a different one.
	Insert(snap *Snapshot, t Temp) (bool, error)

	// Get returns the snapshot for t or an error wrapping ErrMissingSnapshot.
	Get(t Temp) (*Snapshot, error)

	// Exists reports if t has been inserted.
	Exists(t Temp) bool

	// Ranges returns all stored ranges in ascending order.
	Ranges() []RangeEntry

	// NumSnapshots returns the number of distinct snapshot instances held.
	NumSnapshots() int

	// Len returns the number of temperatures held.
	Len() int

	Grid() Grid
	Strategy() StoreStrategy
}

// RangeEntry pairs a TimeRange with the snapshot shared by every temperature in it.
type RangeEntry struct {
	Range    TimeRange
	Snapshot *Snapshot
}

// AnalyzedSet is the set of temperatures already folded.
type AnalyzedSet interface {

	// Add adds t, returning true if t was not already present.
	Add(t Temp) bool

	Contains(t Temp) bool

	// Temps returns every member in ascending order.
	Temps() []Temp

	Len() int

	Close() error
}

// Sweeper drives an IncidenceProducer across temperatures and feeds a TemporalStore.
type Sweeper interface {
	InsertOne(ctx context.Context, t Temp) (bool, error)
	InsertMany(ctx context.Context, temps []Temp) (*SweepReport, error)
	InsertRange(ctx context.Context, start, end, step Temp) (*SweepReport, error)

	Store() TemporalStore
}

// SweepReport summarizes one sweep request.
type SweepReport struct {
	Requested []Temp        // deduplicated request, ascending
	Computed  []Temp        // newly folded and stored, ascending
	Cached    []Temp        // already analyzed before this request, ascending
	Failed    []FoldFailure // only populated when SweepOpts.SkipFailures is set
}

// FoldFailure records a temperature whose fold could not be stored.
type FoldFailure struct {
	T   Temp
	Err error
}

// GraphAlgorithms is the community / connectivity toolkit consumed by the analysis layer.
type GraphAlgorithms interface {

	// Partition splits the nodes of snap into communities, each sorted ascending.
	Partition(snap *Snapshot) [][]int

	// Modularity scores a partition of snap.
	Modularity(snap *Snapshot, parts [][]int) float64

	// Conductance scores how well subset is separated from the rest of snap.
	Conductance(snap *Snapshot, subset []int) float64

	// SBetweenness returns the s-betweenness centrality of each node.
	SBetweenness(snap *Snapshot, s int) map[int]float64
}

// BuildOpts specifies how bracket notation is read into a Snapshot.
type BuildOpts struct {
	Symbols  string   // optional sequence; if set its length must match the bracket string
	Alphabet Alphabet // zero value denotes DefaultAlphabet
}

// Alphabet names the open, close and unpaired symbols of a bracket notation.
type Alphabet struct {
	Open     byte
	Close    byte
	Unpaired byte
}

// DefaultAlphabet is the '(' ')' '.' dot-bracket notation.
var DefaultAlphabet = Alphabet{
	Open:     '(',
	Close:    ')',
	Unpaired: '.',
}

// StoreOpts specifies params for creating a TemporalStore.
type StoreOpts struct {
	Strategy   StoreStrategy `yaml:"strategy"`   // zero value denotes SearchOptimized
	Resolution Temp          `yaml:"resolution"` // grid spacing; 0 denotes 1.0
}

// SweepOpts specifies params for a fold sweep.
type SweepOpts struct {
	Workers      int  `yaml:"workers"`       // 0 denotes runtime.NumCPU()
	SkipFailures bool `yaml:"skip_failures"` // report failed folds instead of aborting the sweep
}

// WorkspaceOpts collects everything needed to analyze one sequence.
type WorkspaceOpts struct {
	Sequence string    `yaml:"sequence"`
	Store    StoreOpts `yaml:"store"`
	Sweep    SweepOpts `yaml:"sweep"`
}
