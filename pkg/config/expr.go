package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dd0wney/chainagg/pkg/chain"
	"github.com/dd0wney/chainagg/pkg/stat"
)

// Filter expressions are "<op> <number>" with op one of gt ge lt le eq ne.
var filterOps = map[string]func(v, operand float64) bool{
	"gt": func(v, x float64) bool { return v > x },
	"ge": func(v, x float64) bool { return v >= x },
	"lt": func(v, x float64) bool { return v < x },
	"le": func(v, x float64) bool { return v <= x },
	"eq": func(v, x float64) bool { return v == x },
	"ne": func(v, x float64) bool { return v != x },
}

// Transform expressions are "<op> <number>" with op one of mul div add sub,
// or a bare "abs" or "neg".
var transformOps = map[string]func(v, operand float64) float64{
	"mul": func(v, x float64) float64 { return v * x },
	"div": func(v, x float64) float64 { return v / x },
	"add": func(v, x float64) float64 { return v + x },
	"sub": func(v, x float64) float64 { return v - x },
}

var unaryOps = map[string]func(v float64) float64{
	"abs": math.Abs,
	"neg": func(v float64) float64 { return -v },
}

// ParseFilter compiles a filter expression. An empty expression means no
// filter and yields nil. The filter rejects nil, the output of an aggregate
// with no observations yet, and fails on other non-numeric values.
func ParseFilter(expr string) (chain.Filter, error) {
	op, operand, unary, err := split(expr)
	if err != nil || op == "" {
		return nil, err
	}
	cmp, ok := filterOps[op]
	if !ok || unary {
		return nil, fmt.Errorf("filter %q: want \"<gt|ge|lt|le|eq|ne> <number>\"", expr)
	}
	return func(v any) (bool, error) {
		if v == nil {
			return false, nil
		}
		x, err := stat.Float(v)
		if err != nil {
			return false, fmt.Errorf("filter %q: %w", expr, err)
		}
		return cmp(x, operand), nil
	}, nil
}

// ParseTransform compiles a transform expression. An empty expression
// yields nil. The transform passes nil through, fails on other non-numeric
// values and otherwise delivers float64.
func ParseTransform(expr string) (chain.Transform, error) {
	op, operand, unary, err := split(expr)
	if err != nil || op == "" {
		return nil, err
	}

	var apply func(float64) float64
	switch {
	case unary:
		fn, ok := unaryOps[op]
		if _, binary := transformOps[op]; binary {
			return nil, fmt.Errorf("transform %q: %q needs an operand", expr, op)
		}
		if !ok {
			return nil, fmt.Errorf("transform %q: want \"<mul|div|add|sub> <number>\", \"abs\" or \"neg\"", expr)
		}
		apply = fn
	default:
		fn, ok := transformOps[op]
		if !ok {
			return nil, fmt.Errorf("transform %q: want \"<mul|div|add|sub> <number>\", \"abs\" or \"neg\"", expr)
		}
		if op == "div" && operand == 0 {
			return nil, fmt.Errorf("transform %q: division by zero", expr)
		}
		apply = func(v float64) float64 { return fn(v, operand) }
	}

	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		x, err := stat.Float(v)
		if err != nil {
			return nil, fmt.Errorf("transform %q: %w", expr, err)
		}
		return apply(x), nil
	}, nil
}

// split breaks an expression into its lower-cased operator and optional
// numeric operand.
func split(expr string) (op string, operand float64, unary bool, err error) {
	fields := strings.Fields(expr)
	switch len(fields) {
	case 0:
		return "", 0, false, nil
	case 1:
		return strings.ToLower(fields[0]), 0, true, nil
	case 2:
		operand, err = strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return "", 0, false, fmt.Errorf("expression %q: bad operand: %w", expr, err)
		}
		return strings.ToLower(fields[0]), operand, false, nil
	}
	return "", 0, false, fmt.Errorf("expression %q: too many fields", expr)
}
