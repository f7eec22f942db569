package entity

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
)

// Mode selects which schema rules apply.
type Mode int

const (
	// ModeCreate requires every Required field to be present.
	ModeCreate Mode = iota
	// ModeUpdate makes all fields optional; present fields are still
	// type-checked (sparse/partial payload).
	ModeUpdate
)

// single validator instance for string format rules (email etc.)
var formats = validator.New()

// Validate checks payload against the schema and returns the normalized
// value: known fields only, types coerced. Unknown fields are dropped, not
// rejected. On the first violated rule (walking the schema in declaration
// order) it stops and returns a single *ValidationError.
func Validate(schema Schema, payload map[string]interface{}, mode Mode) (bson.M, error) {
	out := bson.M{}
	for _, f := range schema {
		raw, ok := payload[f.Name]
		if !ok || raw == nil {
			if mode == ModeCreate && f.Required {
				return nil, violation(f.Name, "is required")
			}
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func coerce(f FieldSpec, raw interface{}) (interface{}, error) {
	switch f.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, violation(f.Name, "must be a string")
		}
		if f.Format != "" {
			if err := formats.Var(s, f.Format); err != nil {
				return nil, violation(f.Name, "must be a valid %s", f.Format)
			}
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			return nil, violation(f.Name, "must be one of %v", f.Enum)
		}
		return s, nil

	case TypeInt:
		n, ok := toInt64(raw)
		if !ok {
			return nil, violation(f.Name, "must be an integer")
		}
		if f.Min != nil && n < *f.Min {
			return nil, violation(f.Name, "must be greater than or equal to %d", *f.Min)
		}
		return n, nil

	case TypeDate:
		s, ok := raw.(string)
		if !ok {
			return nil, violation(f.Name, "must be a valid date")
		}
		t, err := dateparse.ParseAny(s)
		if err != nil {
			return nil, violation(f.Name, "must be a valid date")
		}
		return t.UTC(), nil

	case TypeStringOrInt:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		if n, ok := toInt64(raw); ok {
			return n, nil
		}
		return nil, violation(f.Name, "must be a string or number")
	}
	return nil, violation(f.Name, "has unknown type")
}

// toInt64 accepts the shapes JSON decoding can hand us: float64 with an
// integral value, json.Number, native ints, and numeric strings.
func toInt64(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		// float64(MaxInt64) rounds up to 2^63, so >= catches the overflow
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
