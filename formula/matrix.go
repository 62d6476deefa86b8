package formula

import "sort"

// Matrix describes a set of configurations as named axes. Require holds the
// settings axes, Options the package option axes.
type Matrix struct {
	Require map[string][]string
	Options map[string][]string
}

// Combinations returns all cartesian product combinations of the matrix.
// Keys are sorted alphabetically, and combinations are built layer by layer.
// Require fields are joined with "-", then combined with options using "|".
func (m *Matrix) Combinations() []string {
	requireCombos := cartesian(m.Require)
	optionsCombos := cartesian(m.Options)

	if len(requireCombos) == 0 {
		return optionsCombos
	}
	if len(optionsCombos) == 0 {
		return requireCombos
	}

	result := make([]string, 0, len(requireCombos)*len(optionsCombos))
	for _, req := range requireCombos {
		for _, opt := range optionsCombos {
			result = append(result, req+"|"+opt)
		}
	}
	return result
}

// String returns the first combination, which is the only one for a matrix
// built from a single configuration.
func (m *Matrix) String() string {
	combos := m.Combinations()
	if len(combos) == 0 {
		return ""
	}
	return combos[0]
}

func cartesian(kvs map[string][]string) []string {
	if len(kvs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(kvs))
	for k := range kvs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, len(kvs[keys[0]]))
	copy(result, kvs[keys[0]])

	for _, k := range keys[1:] {
		values := kvs[k]
		next := make([]string, 0, len(result)*len(values))
		for _, prev := range result {
			for _, v := range values {
				next = append(next, prev+"-"+v)
			}
		}
		result = next
	}
	return result
}
