package matching

import (
	"bytes"
	"encoding/json"
	"fmt"

	"dating-match-server/internal/models"
)

// MaxWeight bounds a single field weight so that scores cannot overflow.
const MaxWeight = 100

// FieldSpec names the fields a search compares, as section -> field ->
// weight. Every entry has a weight of at least 1.
type FieldSpec map[string]map[string]int

// Len returns the number of compared fields.
func (s FieldSpec) Len() int {
	n := 0
	for _, fields := range s {
		n += len(fields)
	}
	return n
}

// ParseFieldSpec decodes the "filters" object of a search request. A field
// set to true compares with weight 1, a positive integer is used as the
// weight, and false or 0 leaves the field out.
func ParseFieldSpec(raw json.RawMessage) (FieldSpec, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, models.NewInvalidInputError("filters are required")
	}

	var sections map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, models.NewInvalidInputError("filters must be an object of sections")
	}

	spec := FieldSpec{}
	for section, fields := range sections {
		known, ok := catalog[section]
		if !ok {
			return nil, models.NewInvalidInputError(fmt.Sprintf("unknown filter section %q", section))
		}
		for name, value := range fields {
			if _, ok := known[name]; !ok {
				return nil, models.NewInvalidInputError(fmt.Sprintf("unknown filter field %q in %q", name, section))
			}
			weight, err := parseWeight(value)
			if err != nil {
				return nil, models.NewInvalidInputError(fmt.Sprintf("filter %s.%s: %v", section, name, err))
			}
			if weight == 0 {
				continue
			}
			if spec[section] == nil {
				spec[section] = map[string]int{}
			}
			spec[section][name] = weight
		}
	}
	return spec, nil
}

func parseWeight(raw json.RawMessage) (int, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("must be true, false or a non-negative integer")
	}
	if n < 0 {
		return 0, fmt.Errorf("weight must not be negative")
	}
	if n > MaxWeight {
		return 0, fmt.Errorf("weight must not exceed %d", MaxWeight)
	}
	return n, nil
}
