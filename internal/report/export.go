package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moolen/casa/internal/analysis"
	"github.com/moolen/casa/internal/logging"
	"github.com/moolen/casa/internal/period"
	"github.com/moolen/casa/internal/service"
)

// Source is what Export reads from; *service.AnalysisService satisfies it
type Source interface {
	Periods() ([]period.Period, error)
	Analyze(ctx context.Context, label string) (*analysis.PeriodResult, error)
	Historic(ctx context.Context, labels []string) (*service.HistoricReport, error)
	Systemic(ctx context.Context, labels []string) (*service.SystemicReport, error)
}

// File names written by Export
const (
	HistoricFile = "historic.json"
	SystemicFile = "systemic.json"
)

// AnalysisFile returns the export file name of one period
func AnalysisFile(label string) string {
	return "analysis_" + label + ".json"
}

// Export writes one analysis file per available period plus the historic and systemic
// views into dir, creating it if needed. It returns the written paths in write order.
func Export(ctx context.Context, src Source, dir string) ([]string, error) {
	logger := logging.GetLogger("report")

	periods, err := src.Periods()
	if err != nil {
		return nil, err
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("dataset covers no complete half-year")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var written []string
	write := func(name string, v interface{}) error {
		path := filepath.Join(dir, name)
		if err := WriteJSONFile(path, v); err != nil {
			return err
		}
		written = append(written, path)
		logger.Debug("Wrote %s", path)
		return nil
	}

	for _, p := range periods {
		res, err := src.Analyze(ctx, p.Label())
		if err != nil {
			return written, err
		}
		if err := write(AnalysisFile(p.Label()), res); err != nil {
			return written, err
		}
	}

	historic, err := src.Historic(ctx, nil)
	if err != nil {
		return written, err
	}
	if err := write(HistoricFile, historic); err != nil {
		return written, err
	}

	systemic, err := src.Systemic(ctx, nil)
	if err != nil {
		return written, err
	}
	if err := write(SystemicFile, systemic); err != nil {
		return written, err
	}

	logger.Info("Exported %d files to %s", len(written), dir)
	return written, nil
}

// WriteJSONFile writes v as indented JSON
func WriteJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
