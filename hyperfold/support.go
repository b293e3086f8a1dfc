package hyperfold

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// gridTolerance is how far (in ticks) a Temp may sit from a grid point and still be considered on it.
const gridTolerance = 1e-9

// Grid quantizes temperatures onto integer ticks so that range adjacency and map keys are exact.
type Grid struct {
	Resolution Temp
}

// DefaultGrid has one tick per degree.
var DefaultGrid = Grid{Resolution: 1}

// NewGrid returns a Grid with the given resolution, where 0 denotes DefaultGrid.
func NewGrid(resolution Temp) (Grid, error) {
	if resolution == 0 {
		return DefaultGrid, nil
	}
	if resolution < 0 || math.IsNaN(float64(resolution)) || math.IsInf(float64(resolution), 0) {
		return Grid{}, errors.Wrapf(ErrInvalidArgument, "grid resolution %v", resolution)
	}
	return Grid{Resolution: resolution}, nil
}

// Tick returns the tick of t and whether t lies on this grid.
func (g Grid) Tick(t Temp) (int64, bool) {
	res := g.Resolution
	if res == 0 {
		res = 1
	}
	x := float64(t) / float64(res)
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	r := math.Round(x)
	if math.Abs(x-r) > gridTolerance {
		return 0, false
	}
	return int64(r), true
}

// Temp returns the temperature of the given tick.
func (g Grid) Temp(tick int64) Temp {
	res := g.Resolution
	if res == 0 {
		res = 1
	}
	return Temp(float64(tick) * float64(res))
}

// MustTick is Tick for callers that already validated t.
func (g Grid) MustTick(t Temp) int64 {
	tick, ok := g.Tick(t)
	if !ok {
		panic(fmt.Sprintf("temperature %v is off grid %v", t, g.Resolution))
	}
	return tick
}

// Span returns every grid temperature in r, ascending.
func (g Grid) Span(r TimeRange) ([]Temp, error) {
	lo, okLo := g.Tick(r.Lo)
	hi, okHi := g.Tick(r.Hi)
	if !okLo || !okHi {
		return nil, errors.Wrapf(ErrInvalidArgument, "range %v is off grid %v", r, g.Resolution)
	}
	if hi < lo {
		return nil, errors.Wrapf(ErrInvalidArgument, "range %v ends before it starts", r)
	}
	temps := make([]Temp, 0, hi-lo+1)
	for tick := lo; tick <= hi; tick++ {
		temps = append(temps, g.Temp(tick))
	}
	return temps, nil
}

// TimeRange is a closed interval [Lo, Hi] of temperatures.
type TimeRange struct {
	Lo Temp
	Hi Temp
}

// Contains reports if t lies in [Lo, Hi].
func (r TimeRange) Contains(t Temp) bool {
	return r.Lo <= t && t <= r.Hi
}

// Overlaps reports if r and o share at least one temperature.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Lo <= o.Hi && o.Lo <= r.Hi
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%v, %v]", r.Lo, r.Hi)
}

// ExpandRange lists start, start+step, .. up to and including end.
func ExpandRange(start, end, step Temp) ([]Temp, error) {
	if step <= 0 || math.IsNaN(float64(step)) {
		return nil, errors.Wrapf(ErrInvalidArgument, "step %v must be > 0", step)
	}
	if end < start {
		return nil, errors.Wrapf(ErrInvalidArgument, "end %v is before start %v", end, start)
	}

	// count is derived once so repeated float addition can't drift past end
	count := int64(math.Floor(float64(end-start)/float64(step)+gridTolerance)) + 1
	temps := make([]Temp, 0, count)
	for i := int64(0); i < count; i++ {
		temps = append(temps, start+Temp(i)*step)
	}
	return temps, nil
}

// SortTemps sorts temps in place, ascending.
func SortTemps(temps []Temp) {
	sort.Slice(temps, func(i, j int) bool { return temps[i] < temps[j] })
}

func (s StoreStrategy) String() string {
	switch s {
	case Pointwise:
		return "pointwise"
	case MemoryOptimized:
		return "memory"
	case SearchOptimized:
		return "search"
	}
	return fmt.Sprintf("StoreStrategy(%d)", int32(s))
}

// ParseStoreStrategy reads a strategy name as printed by StoreStrategy.String().
func ParseStoreStrategy(name string) (StoreStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pointwise", "basic":
		return Pointwise, nil
	case "memory", "memory-optimized":
		return MemoryOptimized, nil
	case "search", "search-optimized", "":
		return SearchOptimized, nil
	}
	return 0, errors.Wrapf(ErrInvalidArgument, "unknown store strategy %q", name)
}

// UnmarshalText allows a StoreStrategy to be read by name from config files.
func (s *StoreStrategy) UnmarshalText(text []byte) error {
	v, err := ParseStoreStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (s StoreStrategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
