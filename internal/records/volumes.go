package records

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/moolen/casa/internal/analysis"
)

// DatedVolume is a volume row with an optional month.
// A zero Date means the row applies to every period.
type DatedVolume struct {
	analysis.VolumeRecord
	Date time.Time `json:"date,omitempty"`
}

// Dated reports whether the row is tied to a specific month
func (v DatedVolume) Dated() bool {
	return !v.Date.IsZero()
}

// LoadVolumes reads a passenger volume file.
func LoadVolumes(path string) ([]DatedVolume, error) {
	rows, err := readRowsFile(path)
	if err != nil {
		return nil, err
	}
	volumes, err := buildVolumes(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return volumes, nil
}

// ReadVolumes decodes volume rows from r in the given format.
func ReadVolumes(r io.Reader, format Format) ([]DatedVolume, error) {
	rows, err := readRows(r, format)
	if err != nil {
		return nil, err
	}
	return buildVolumes(rows)
}

func buildVolumes(rows []row) ([]DatedVolume, error) {
	volumes := make([]DatedVolume, 0, len(rows))
	records := make([]analysis.VolumeRecord, 0, len(rows))

	for i, r := range rows {
		rawPax := r.get("pax")
		if rawPax == "" {
			return nil, &analysis.StructuralError{Record: "volume", Index: i, Field: "pax", Reason: "is required"}
		}
		pax, err := parsePax(rawPax)
		if err != nil {
			return nil, &analysis.StructuralError{Record: "volume", Index: i, Field: "pax", Reason: err.Error()}
		}

		v := DatedVolume{VolumeRecord: analysis.VolumeRecord{
			Airline: r.get("airline"),
			Airport: r.get("airport"),
			Pax:     pax,
		}}
		if raw := r.get("date"); raw != "" {
			date, err := ParseDate(raw)
			if err != nil {
				return nil, &analysis.StructuralError{Record: "volume", Index: i, Field: "date", Reason: err.Error()}
			}
			v.Date = date
		}
		volumes = append(volumes, v)
		records = append(records, v.VolumeRecord)
	}

	if err := analysis.ValidateVolumes(records); err != nil {
		return nil, err
	}
	return volumes, nil
}

// parsePax accepts thousands separators such as 12'345, 12,345 and 12 345.
func parsePax(s string) (int64, error) {
	cleaned := strings.NewReplacer("'", "", ",", "", "_", "", " ", "").Replace(s)
	if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return int64(f), nil
}
