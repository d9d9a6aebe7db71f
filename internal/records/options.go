package records

import "strings"

// DefaultExcludeCodes returns the refusal codes excluded from analysis unless configured
// otherwise. A new slice is returned on every call.
func DefaultExcludeCodes() []string {
	return []string{"B1n", "B2n", "C4n", "C5n", "C8", "D1n", "D2n", "E", "F1n", "G", "H", "I"}
}

// LoadOptions controls how raw rows become analysis records
type LoadOptions struct {
	// ExcludeCodes lists refusal codes whose cases are marked not included.
	// nil selects DefaultExcludeCodes; an empty non-nil slice excludes nothing.
	ExcludeCodes []string
}

// exclusionSet returns the normalized set of excluded codes
func (o LoadOptions) exclusionSet() map[string]struct{} {
	codes := o.ExcludeCodes
	if codes == nil {
		codes = DefaultExcludeCodes()
	}
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}
