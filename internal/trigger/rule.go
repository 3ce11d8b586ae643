// Package trigger provides declarative activation rules for meme entries and
// their evaluation against per-frame feature snapshots.
package trigger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Kind identifies which rule variant is populated.
type Kind string

const (
	// KindSingle matches when one named gesture is detected.
	KindSingle Kind = "single"
	// KindAllOf matches when every listed gesture is detected (AND).
	KindAllOf Kind = "all_of"
	// KindAnyOf matches when at least one listed gesture is detected (OR).
	KindAnyOf Kind = "any_of"
	// KindConditions matches when every metric comparison holds.
	KindConditions Kind = "conditions"
)

// Operator is a comparison operator for metric conditions.
type Operator string

const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
)

// ErrUnknownFormat is returned when a trigger document matches none of the
// known rule variants.
var ErrUnknownFormat = errors.New("unknown trigger format")

// Condition is a single threshold comparison against a named metric.
type Condition struct {
	Metric    string
	Op        Operator
	Threshold float64
}

// Rule is the parsed, tagged-variant representation of a meme's activation
// condition. Exactly one variant is populated, selected by Kind. A nil Rule
// never matches.
type Rule struct {
	Kind       Kind
	Gesture    string      // KindSingle
	Gestures   []string    // KindAllOf
	AnyOf      []string    // KindAnyOf
	Conditions []Condition // KindConditions
}

// ruleDoc is the wire form of a rule, matching the meme config schema:
//
//	{"gesture": "peace_sign"}
//	{"gestures": ["hand_raised_right", "peace_sign"]}
//	{"any_of": ["open_palm_left", "open_palm_right"]}
//	{"conditions": {"stillness": {">": 0.7}}}
// The list fields are pointers so an empty list survives a marshal round
// trip: an empty AllOf is a valid rule, and omitempty on a plain slice would
// drop its variant tag.
type ruleDoc struct {
	Gesture    *string                       `json:"gesture,omitempty"`
	Gestures   *[]string                     `json:"gestures,omitempty"`
	AnyOf      *[]string                     `json:"any_of,omitempty"`
	Conditions map[string]map[string]float64 `json:"conditions,omitempty"`
}

// Parse decodes a trigger document into a Rule.
// Documents matching none of the variants return ErrUnknownFormat; documents
// matching more than one are rejected so a rule is never ambiguous.
func Parse(data []byte) (*Rule, error) {
	var doc ruleDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse trigger: %w", err)
	}
	return doc.toRule()
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rule) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

// MarshalJSON implements json.Marshaler, emitting the config wire form.
func (r *Rule) MarshalJSON() ([]byte, error) {
	doc := ruleDoc{}
	switch r.Kind {
	case KindSingle:
		g := r.Gesture
		doc.Gesture = &g
	case KindAllOf:
		gestures := r.Gestures
		if gestures == nil {
			gestures = []string{}
		}
		doc.Gestures = &gestures
	case KindAnyOf:
		anyOf := r.AnyOf
		if anyOf == nil {
			anyOf = []string{}
		}
		doc.AnyOf = &anyOf
	case KindConditions:
		doc.Conditions = make(map[string]map[string]float64)
		for _, c := range r.Conditions {
			m, ok := doc.Conditions[c.Metric]
			if !ok {
				m = make(map[string]float64)
				doc.Conditions[c.Metric] = m
			}
			m[string(c.Op)] = c.Threshold
		}
	default:
		return nil, fmt.Errorf("marshal trigger: unknown kind %q", r.Kind)
	}
	return json.Marshal(doc)
}

func (d *ruleDoc) toRule() (*Rule, error) {
	var variants int
	if d.Gesture != nil {
		variants++
	}
	if d.Gestures != nil {
		variants++
	}
	if d.AnyOf != nil {
		variants++
	}
	if d.Conditions != nil {
		variants++
	}
	if variants == 0 {
		return nil, ErrUnknownFormat
	}
	if variants > 1 {
		return nil, fmt.Errorf("%w: multiple variants populated", ErrUnknownFormat)
	}

	switch {
	case d.Gesture != nil:
		return &Rule{Kind: KindSingle, Gesture: *d.Gesture}, nil
	case d.Gestures != nil:
		return &Rule{Kind: KindAllOf, Gestures: *d.Gestures}, nil
	case d.AnyOf != nil:
		return &Rule{Kind: KindAnyOf, AnyOf: *d.AnyOf}, nil
	default:
		conditions, err := parseConditions(d.Conditions)
		if err != nil {
			return nil, err
		}
		return &Rule{Kind: KindConditions, Conditions: conditions}, nil
	}
}

// parseConditions flattens the nested metric→operator→threshold map into a
// sorted condition list so the rule has a deterministic representation
// regardless of map iteration order.
func parseConditions(raw map[string]map[string]float64) ([]Condition, error) {
	var conditions []Condition
	for metric, ops := range raw {
		for op, threshold := range ops {
			if !knownOperator(Operator(op)) {
				return nil, fmt.Errorf("condition on %q: unknown operator %q", metric, op)
			}
			conditions = append(conditions, Condition{
				Metric:    metric,
				Op:        Operator(op),
				Threshold: threshold,
			})
		}
	}
	sort.Slice(conditions, func(i, j int) bool {
		if conditions[i].Metric != conditions[j].Metric {
			return conditions[i].Metric < conditions[j].Metric
		}
		return conditions[i].Op < conditions[j].Op
	})
	return conditions, nil
}

func knownOperator(op Operator) bool {
	switch op {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual:
		return true
	}
	return false
}
