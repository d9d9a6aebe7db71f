package commands

import (
	"context"
	"fmt"

	"github.com/moolen/casa/internal/config"
	"github.com/moolen/casa/internal/records"
	"github.com/moolen/casa/internal/service"
	"github.com/spf13/cobra"
)

// sourceFlags selects the record files and settings a command analyses
type sourceFlags struct {
	dataDir        string
	caseFiles      []string
	volumeFiles    []string
	configPath     string
	thresholdFlag  string
	minPaxOverride int64
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dataDir, "data-dir", ".", "Directory searched for *inad* case files and *bazl*/*volume* passenger files")
	cmd.Flags().StringSliceVar(&f.caseFiles, "cases", nil, "INAD case files (CSV, YAML or JSON); overrides discovery in --data-dir")
	cmd.Flags().StringSliceVar(&f.volumeFiles, "volumes", nil, "Passenger volume files (CSV, YAML or JSON); overrides discovery in --data-dir")
	cmd.Flags().StringVar(&f.configPath, "config", "", "Analysis settings YAML file (optional)")
	cmd.Flags().StringVar(&f.thresholdFlag, "threshold-method", "", "Override the threshold method (median, trimmed_mean, mean)")
	cmd.Flags().Int64Var(&f.minPaxOverride, "min-pax", -1, "Override the minimum passenger volume for a reliable route")
}

// settings reads --config or returns the defaults
func (f *sourceFlags) settings() (*config.Settings, error) {
	if f.configPath == "" {
		return config.DefaultSettings(), nil
	}
	return config.LoadSettingsFile(f.configPath)
}

// loader reads explicit files when given, otherwise discovers them in --data-dir
func (f *sourceFlags) loader() service.Loader {
	return func(opts records.LoadOptions) (*records.Dataset, error) {
		if len(f.caseFiles) == 0 && len(f.volumeFiles) == 0 {
			return records.LoadDir(f.dataDir, opts)
		}
		if len(f.caseFiles) == 0 {
			return nil, fmt.Errorf("--cases is required when --volumes is given")
		}
		return records.Load(records.Files{Cases: f.caseFiles, Volumes: f.volumeFiles}, opts)
	}
}

// newService builds a service, loads the dataset and applies command line overrides
func (f *sourceFlags) newService(ctx context.Context, opts service.Options) (*service.AnalysisService, error) {
	settings, err := f.settings()
	if err != nil {
		return nil, err
	}
	if f.thresholdFlag != "" {
		method := f.thresholdFlag
		settings.Analysis.ThresholdMethod = &method
	}
	if f.minPaxOverride >= 0 {
		minPax := f.minPaxOverride
		settings.Analysis.MinPax = &minPax
	}

	opts.Loader = f.loader()
	svc, err := service.New(settings, opts)
	if err != nil {
		return nil, err
	}
	if err := svc.Reload(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

// source bundles the flags shared by every reporting command
type source struct {
	sourceFlags
	jsonOutput bool
}

func (s *source) register(cmd *cobra.Command) {
	s.sourceFlags.register(cmd)
	cmd.Flags().BoolVar(&s.jsonOutput, "json", false, "Print JSON instead of tables")
}
