package records

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/moolen/casa/internal/analysis"
	"github.com/moolen/casa/internal/logging"
	"github.com/moolen/casa/internal/period"
)

// Dataset is the full set of loaded cases and volumes. It is immutable once loaded.
type Dataset struct {
	Cases    []analysis.Case
	Volumes  []DatedVolume
	Sources  []string
	Revision string // content hash of every source file, in load order
	LoadedAt time.Time
}

// LoadDir discovers and loads every record file below dir.
func LoadDir(dir string, opts LoadOptions) (*Dataset, error) {
	files, err := Discover(dir)
	if err != nil {
		return nil, err
	}
	return Load(files, opts)
}

// Load reads the given files into a Dataset.
func Load(files Files, opts LoadOptions) (*Dataset, error) {
	logger := logging.GetLogger("records")
	hash := sha256.New()
	ds := &Dataset{LoadedAt: time.Now()}

	for _, path := range files.Cases {
		data, format, err := readSource(path)
		if err != nil {
			return nil, err
		}
		cases, err := ReadCases(bytes.NewReader(data), format, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		hash.Write([]byte("cases:" + path + "\n"))
		hash.Write(data)
		ds.Cases = append(ds.Cases, cases...)
		ds.Sources = append(ds.Sources, path)
		logger.DebugWithFields("Loaded case file",
			logging.Field("path", path),
			logging.Field("cases", len(cases)))
	}

	for _, path := range files.Volumes {
		data, format, err := readSource(path)
		if err != nil {
			return nil, err
		}
		volumes, err := ReadVolumes(bytes.NewReader(data), format)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		hash.Write([]byte("volumes:" + path + "\n"))
		hash.Write(data)
		ds.Volumes = append(ds.Volumes, volumes...)
		ds.Sources = append(ds.Sources, path)
		logger.DebugWithFields("Loaded volume file",
			logging.Field("path", path),
			logging.Field("rows", len(volumes)))
	}

	ds.Revision = hex.EncodeToString(hash.Sum(nil))[:16]
	logger.InfoWithFields("Dataset loaded",
		logging.Field("cases", len(ds.Cases)),
		logging.Field("volume_rows", len(ds.Volumes)),
		logging.Field("revision", ds.Revision))
	return ds, nil
}

func readSource(path string) ([]byte, Format, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, format, nil
}

// Periods returns every half-year fully covered by the case dates.
func (d *Dataset) Periods() []period.Period {
	dates := make([]time.Time, 0, len(d.Cases))
	for _, c := range d.Cases {
		dates = append(dates, c.Date)
	}
	return period.Available(dates)
}

// CasesFor returns the cases dated inside p
func (d *Dataset) CasesFor(p period.Period) []analysis.Case {
	return period.Select(d.Cases, p)
}

// VolumesFor sums the volume rows that apply to p: dated rows inside the period and
// every undated row. Output is sorted by airline then airport.
func (d *Dataset) VolumesFor(p period.Period) []analysis.VolumeRecord {
	type key struct{ airline, airport string }
	totals := make(map[key]int64)
	for _, v := range d.Volumes {
		if v.Dated() && !p.Contains(v.Date) {
			continue
		}
		totals[key{v.Airline, v.Airport}] += v.Pax
	}

	out := make([]analysis.VolumeRecord, 0, len(totals))
	for k, pax := range totals {
		out = append(out, analysis.VolumeRecord{Airline: k.airline, Airport: k.airport, Pax: pax})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Airline != out[j].Airline {
			return out[i].Airline < out[j].Airline
		}
		return out[i].Airport < out[j].Airport
	})
	return out
}

// Input assembles the analysis input for one period. A nil or empty partner map leaves
// the direct volume lookup unchanged.
func (d *Dataset) Input(p period.Period, cfg analysis.Config, partners map[string][]string) analysis.PeriodInput {
	var resolver analysis.VolumeResolver = analysis.NewVolumeTable(d.VolumesFor(p))
	if len(partners) > 0 {
		resolver = analysis.NewPartnerResolver(resolver, partners)
	}
	return analysis.PeriodInput{
		Label:   p.Label(),
		Cases:   d.CasesFor(p),
		Volumes: resolver,
		Config:  cfg,
	}
}
