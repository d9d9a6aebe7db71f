package records

import (
	"fmt"
	"io"

	"github.com/moolen/casa/internal/analysis"
)

// LoadCases reads a case file. Rows missing airline, origin or date abort the load with
// an *analysis.StructuralError.
func LoadCases(path string, opts LoadOptions) ([]analysis.Case, error) {
	rows, err := readRowsFile(path)
	if err != nil {
		return nil, err
	}
	cases, err := buildCases(rows, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// ReadCases decodes cases from r in the given format.
func ReadCases(r io.Reader, format Format, opts LoadOptions) ([]analysis.Case, error) {
	rows, err := readRows(r, format)
	if err != nil {
		return nil, err
	}
	return buildCases(rows, opts)
}

func buildCases(rows []row, opts LoadOptions) ([]analysis.Case, error) {
	excluded := opts.exclusionSet()
	cases := make([]analysis.Case, 0, len(rows))

	for i, r := range rows {
		airline := r.get("airline")
		if airline == "" {
			return nil, &analysis.StructuralError{Record: "case", Index: i, Field: "airline", Reason: "is required"}
		}
		origin := r.get("origin")
		if origin == "" {
			return nil, &analysis.StructuralError{Record: "case", Index: i, Field: "origin", Reason: "is required"}
		}
		rawDate := r.get("date")
		if rawDate == "" {
			return nil, &analysis.StructuralError{Record: "case", Index: i, Field: "date", Reason: "is required"}
		}
		date, err := ParseDate(rawDate)
		if err != nil {
			return nil, &analysis.StructuralError{Record: "case", Index: i, Field: "date", Reason: err.Error()}
		}

		_, isExcluded := excluded[r.get("code")]
		cases = append(cases, analysis.Case{
			Airline:  airline,
			Origin:   origin,
			Date:     date,
			Included: !isExcluded,
		})
	}
	return cases, nil
}
