package libfold

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// OracleFunc adapts a plain function to a hyperfold.Oracle.
type OracleFunc func(ctx context.Context, seq string, t hyperfold.Temp) (string, error)

func (fn OracleFunc) Fold(ctx context.Context, seq string, t hyperfold.Temp) (string, error) {
	return fn(ctx, seq, t)
}

// RNAfoldOracle folds by running the ViennaRNA RNAfold executable, one process per call.
type RNAfoldOracle struct {
	Path      string   // executable; "" denotes "RNAfold" on $PATH
	ExtraArgs []string // appended after --noPS -T <t>
}

// Fold implements hyperfold.Oracle.
func (o RNAfoldOracle) Fold(ctx context.Context, seq string, t hyperfold.Temp) (string, error) {
	if len(seq) == 0 {
		return "", errors.Wrap(hyperfold.ErrInvalidArgument, "empty sequence")
	}
	path := o.Path
	if path == "" {
		path = "RNAfold"
	}

	args := append([]string{"--noPS", "-T", strconv.FormatFloat(float64(t), 'f', -1, 64)}, o.ExtraArgs...)
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = strings.NewReader(seq + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	klog.V(4).Infof("exec %s %v", path, args)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.Wrapf(hyperfold.ErrFold, "%s at T=%v: %v: %s", path, t, err, strings.TrimSpace(stderr.String()))
	}

	dotbracket, err := ParseRNAfoldOutput(out, len(seq))
	if err != nil {
		return "", errors.Wrapf(err, "%s at T=%v", path, t)
	}
	return dotbracket, nil
}

// ParseRNAfoldOutput extracts the bracket string from RNAfold's output: the first line whose
// leading field is entirely bracket notation of the expected length.
func ParseRNAfoldOutput(out []byte, seqLen int) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || len(fields[0]) != seqLen {
			continue
		}
		if isDotBracket(fields[0]) {
			return fields[0], nil
		}
	}
	return "", errors.Wrapf(hyperfold.ErrFold, "no structure of length %d in fold output", seqLen)
}

func isDotBracket(s string) bool {
	ab := hyperfold.DefaultAlphabet
	for i := 0; i < len(s); i++ {
		if c := s[i]; c != ab.Open && c != ab.Close && c != ab.Unpaired {
			return false
		}
	}
	return true
}
