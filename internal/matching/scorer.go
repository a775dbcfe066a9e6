package matching

import "dating-match-server/internal/models"

// Score returns the compatibility of two filter sets over the fields named
// in spec. A field contributes only when both sides hold a value: for sets
// the number of distinct shared values times the weight, for scalars the
// weight on exact equality. A nil filter scores 0.
func Score(a, b *models.ProfileFilter, spec FieldSpec) int {
	if a == nil || b == nil {
		return 0
	}
	total := 0
	for section, fields := range spec {
		known := catalog[section]
		for name, weight := range fields {
			f, ok := known[name]
			if !ok || weight <= 0 {
				continue
			}
			switch f.kind {
			case Set:
				total += intersect(f.set(a), f.set(b)) * weight
			case Scalar:
				va, vb := f.scalar(a), f.scalar(b)
				if va != "" && va == vb {
					total += weight
				}
			}
		}
	}
	return total
}

// intersect counts the distinct values present in both a and b.
func intersect(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inB := make(map[string]struct{}, len(b))
	for _, v := range b {
		if v != "" {
			inB[v] = struct{}{}
		}
	}
	n := 0
	for _, v := range a {
		if _, ok := inB[v]; ok {
			n++
			delete(inB, v)
		}
	}
	return n
}
