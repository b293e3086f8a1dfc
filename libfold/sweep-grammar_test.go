package libfold_test

import (
	"testing"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSweepExpr(t *testing.T) {
	cases := []struct {
		expr  string
		temps []hyperfold.Temp
	}{
		{"37", []hyperfold.Temp{37}},
		{"10..13", []hyperfold.Temp{10, 11, 12, 13}},
		{"10..16:3, 55", []hyperfold.Temp{10, 13, 16, 55}},
		{"36.5, 37 ,37", []hyperfold.Temp{36.5, 37, 37}},
		{"-2..0", []hyperfold.Temp{-2, -1, 0}},
		{"0..1:0.5", []hyperfold.Temp{0, 0.5, 1}},
	}
	for _, c := range cases {
		temps, err := libfold.ParseSweepExpr(c.expr)
		require.NoError(t, err, c.expr)
		assert.Equal(t, c.temps, temps, c.expr)
	}
}

func TestParseSweepExprErrors(t *testing.T) {
	for _, expr := range []string{"", "10..", "abc", "10..5", "10..20:0", "1,,2"} {
		_, err := libfold.ParseSweepExpr(expr)
		assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument), expr)
	}
}
