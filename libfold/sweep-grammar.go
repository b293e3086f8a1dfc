package libfold

import (
	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// SweepExpr is a comma separated list of temperatures and ranges, e.g. "37", "10..40", "10..40:2, 55".
type SweepExpr struct {
	Terms []*SweepTerm `parser:"@@ (\",\" @@)*"`
}

// SweepTerm is a single temperature or an inclusive start..end range with an optional :step (default 1).
type SweepTerm struct {
	Start float64  `parser:"@Number"`
	End   *float64 `parser:"( \"..\" @Number"`
	Step  *float64 `parser:"  (\":\" @Number)? )?"`
}

var sweepLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[-+]?\d+(\.\d+)?`},
	{Name: "Range", Pattern: `\.\.`},
	{Name: "Punct", Pattern: `[,:]`},
	{Name: "whitespace", Pattern: `[ \t]+`},
})

var parseSweepExpr = participle.MustBuild[SweepExpr](
	participle.Lexer(sweepLexer),
)

// Expand lists the temperatures named by this term.
func (term *SweepTerm) Expand() ([]hyperfold.Temp, error) {
	start := hyperfold.Temp(term.Start)
	if term.End == nil {
		return []hyperfold.Temp{start}, nil
	}
	step := hyperfold.Temp(1)
	if term.Step != nil {
		step = hyperfold.Temp(*term.Step)
	}
	return hyperfold.ExpandRange(start, hyperfold.Temp(*term.End), step)
}

// ParseSweepExpr parses a sweep expression and lists its temperatures in the order written (repeats kept).
func ParseSweepExpr(expr string) ([]hyperfold.Temp, error) {
	sweep, err := parseSweepExpr.ParseString("", expr)
	if err != nil {
		return nil, errors.Wrapf(hyperfold.ErrInvalidArgument, "sweep %q: %v", expr, err)
	}

	var temps []hyperfold.Temp
	for _, term := range sweep.Terms {
		list, err := term.Expand()
		if err != nil {
			return nil, errors.Wrapf(err, "sweep %q", expr)
		}
		temps = append(temps, list...)
	}
	return temps, nil
}
