package trigger

import (
	"math"

	"github.com/renderix/memebooth/internal/feature"
)

// DefaultEpsilon is the tolerance used for == metric comparisons. Metrics are
// derived from noisy sensor input, so bitwise float equality would never hold.
const DefaultEpsilon = 1e-6

// Evaluate reports whether the snapshot satisfies the rule using
// DefaultEpsilon for == comparisons. It is pure and total: a nil or
// unrecognized rule evaluates to false, unknown gesture identifiers are
// treated as absent, and a comparison against a missing metric fails.
func Evaluate(snap *feature.Snapshot, rule *Rule) bool {
	return EvaluateEpsilon(snap, rule, DefaultEpsilon)
}

// EvaluateEpsilon is Evaluate with a caller-supplied == tolerance.
func EvaluateEpsilon(snap *feature.Snapshot, rule *Rule, epsilon float64) bool {
	if rule == nil {
		return false
	}

	switch rule.Kind {
	case KindSingle:
		return snap.Gesture(rule.Gesture)

	case KindAllOf:
		// Vacuous AND: an empty list evaluates to true.
		for _, g := range rule.Gestures {
			if !snap.Gesture(g) {
				return false
			}
		}
		return true

	case KindAnyOf:
		// Vacuous OR: an empty list evaluates to false.
		for _, g := range rule.AnyOf {
			if snap.Gesture(g) {
				return true
			}
		}
		return false

	case KindConditions:
		for _, c := range rule.Conditions {
			value, ok := snap.Metric(c.Metric)
			if !ok {
				return false
			}
			if !compare(value, c.Op, c.Threshold, epsilon) {
				return false
			}
		}
		return true
	}

	// Unknown kinds fail closed.
	return false
}

func compare(value float64, op Operator, threshold, epsilon float64) bool {
	switch op {
	case OpGreater:
		return value > threshold
	case OpLess:
		return value < threshold
	case OpGreaterEqual:
		return value >= threshold
	case OpLessEqual:
		return value <= threshold
	case OpEqual:
		return math.Abs(value-threshold) <= epsilon
	}
	return false
}
