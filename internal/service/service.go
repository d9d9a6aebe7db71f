// Package service holds the loaded dataset and analysis settings of a running casa
// instance and answers period, historic and systemic queries against them.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moolen/casa/internal/analysis"
	"github.com/moolen/casa/internal/cache"
	"github.com/moolen/casa/internal/config"
	"github.com/moolen/casa/internal/logging"
	"github.com/moolen/casa/internal/metrics"
	"github.com/moolen/casa/internal/period"
	"github.com/moolen/casa/internal/records"
	"github.com/moolen/casa/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoDataset is returned by queries issued before a dataset was loaded
	ErrNoDataset = errors.New("no dataset loaded")

	// ErrUnknownPeriod is returned for a well-formed period the dataset does not cover
	ErrUnknownPeriod = errors.New("period not available")

	// ErrNoLoader is returned by Reload when the service was built without a Loader
	ErrNoLoader = errors.New("no dataset loader configured")
)

// Loader reads a fresh dataset. It is called again whenever exclusion codes change,
// since they decide which cases are included.
type Loader func(opts records.LoadOptions) (*records.Dataset, error)

// Options configures an AnalysisService. Every field is optional.
type Options struct {
	Loader       Loader
	SettingsPath string // UpdateConfig persists settings here when set
	Cache        *cache.ResultCache
	Metrics      *metrics.Metrics
	Tracer       trace.Tracer
	Parallelism  int
}

// AnalysisService is safe for concurrent use.
type AnalysisService struct {
	mu       sync.RWMutex
	dataset  *records.Dataset
	settings *config.Settings
	cfg      analysis.Config

	opts     Options
	analyzer *analysis.Analyzer
	logger   *logging.Logger
}

// New creates a service with the given settings; nil selects config.DefaultSettings.
func New(settings *config.Settings, opts Options) (*AnalysisService, error) {
	if settings == nil {
		settings = config.DefaultSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	cfg, err := settings.AnalysisConfig()
	if err != nil {
		return nil, err
	}
	if opts.Tracer == nil {
		opts.Tracer = tracing.Tracer("casa/service")
	}

	a := analysis.NewAnalyzer()
	if opts.Parallelism > 0 {
		a = a.WithParallelism(opts.Parallelism)
	}

	return &AnalysisService{
		settings: settings,
		cfg:      cfg,
		opts:     opts,
		analyzer: a,
		logger:   logging.GetLogger("service"),
	}, nil
}

// Load replaces the dataset and drops every cached result.
func (s *AnalysisService) Load(ds *records.Dataset) {
	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()

	s.clearCache()
	s.opts.Metrics.SetDatasetCases(len(ds.Cases))
	s.logger.InfoWithFields("Dataset activated",
		logging.Field("revision", ds.Revision),
		logging.Field("cases", len(ds.Cases)),
		logging.Field("periods", len(ds.Periods())))
}

// Reload reads the dataset again through the configured Loader.
func (s *AnalysisService) Reload(ctx context.Context) error {
	if s.opts.Loader == nil {
		return ErrNoLoader
	}
	_, span := s.opts.Tracer.Start(ctx, "service.reload")
	defer span.End()

	s.mu.RLock()
	opts := records.LoadOptions{ExcludeCodes: s.settings.Exclusions()}
	s.mu.RUnlock()

	ds, err := s.opts.Loader(opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to reload dataset: %w", err)
	}
	s.Load(ds)
	return nil
}

// Status describes the loaded dataset and active configuration.
type Status struct {
	Loaded     bool            `json:"loaded"`
	Revision   string          `json:"revision,omitempty"`
	Cases      int             `json:"cases"`
	VolumeRows int             `json:"volumeRows"`
	Sources    []string        `json:"sources"`
	LoadedAt   *time.Time      `json:"loadedAt,omitempty"`
	Periods    []string        `json:"periods"`
	Config     analysis.Config `json:"config"`
	Cache      *cache.Stats    `json:"cache,omitempty"`
}

// Status returns a snapshot of the service state.
func (s *AnalysisService) Status() Status {
	s.mu.RLock()
	ds, cfg := s.dataset, s.cfg
	s.mu.RUnlock()

	st := Status{Config: cfg, Sources: []string{}, Periods: []string{}}
	if ds != nil {
		loadedAt := ds.LoadedAt
		st.Loaded = true
		st.Revision = ds.Revision
		st.Cases = len(ds.Cases)
		st.VolumeRows = len(ds.Volumes)
		st.Sources = append(st.Sources, ds.Sources...)
		st.LoadedAt = &loadedAt
		st.Periods = period.Labels(ds.Periods())
	}
	if s.opts.Cache != nil {
		stats := s.opts.Cache.Stats()
		st.Cache = &stats
	}
	return st
}

// Periods lists the periods fully covered by the dataset, oldest first.
func (s *AnalysisService) Periods() ([]period.Period, error) {
	s.mu.RLock()
	ds := s.dataset
	s.mu.RUnlock()

	if ds == nil {
		return nil, ErrNoDataset
	}
	return ds.Periods(), nil
}

// Config returns the active analysis configuration.
func (s *AnalysisService) Config() analysis.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Settings returns a copy of the active settings.
func (s *AnalysisService) Settings() *config.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := *s.settings
	cp.Analysis = s.settings.Analysis.Clone()
	cp.Partners = s.settings.PartnerMap()
	if s.settings.ExcludeCodes != nil {
		codes := s.settings.Exclusions()
		cp.ExcludeCodes = &codes
	}
	return &cp
}

// UpdateConfig layers o on top of the current analysis overrides. The previous
// configuration stays active when validation or persisting fails.
func (s *AnalysisService) UpdateConfig(ctx context.Context, o analysis.Overrides) (analysis.Config, error) {
	_, span := s.opts.Tracer.Start(ctx, "service.updateConfig")
	defer span.End()

	s.mu.Lock()
	next := *s.settings
	next.Analysis = next.Analysis.Merge(o)
	cfg, err := next.AnalysisConfig()
	if err != nil {
		s.mu.Unlock()
		span.RecordError(err)
		return analysis.Config{}, err
	}
	if s.opts.SettingsPath != "" {
		if err := config.WriteSettingsFile(s.opts.SettingsPath, &next); err != nil {
			s.mu.Unlock()
			span.RecordError(err)
			return analysis.Config{}, err
		}
	}
	s.settings = &next
	s.cfg = cfg
	s.mu.Unlock()

	s.clearCache()
	s.logger.InfoWithFields("Analysis configuration updated", logging.Field("config", cfg.Signature()))
	return cfg, nil
}

// ApplySettings activates a complete settings document, typically from the config
// watcher. A changed exclusion list triggers a dataset reload.
func (s *AnalysisService) ApplySettings(ctx context.Context, next *config.Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	cfg, err := next.AnalysisConfig()
	if err != nil {
		return err
	}

	s.mu.Lock()
	exclusionsChanged := !sameExclusions(s.settings, next)
	cp := *next
	s.settings = &cp
	s.cfg = cfg
	loaded := s.dataset != nil
	s.mu.Unlock()

	s.logger.InfoWithFields("Settings applied",
		logging.Field("config", cfg.Signature()),
		logging.Field("exclusions_changed", exclusionsChanged))

	if exclusionsChanged && loaded && s.opts.Loader != nil {
		return s.Reload(ctx)
	}
	s.clearCache()
	return nil
}

// Analyze runs the funnel for one period.
func (s *AnalysisService) Analyze(ctx context.Context, label string) (*analysis.PeriodResult, error) {
	ctx, span := s.opts.Tracer.Start(ctx, "service.analyze",
		trace.WithAttributes(attribute.String("period", label)))
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	periods, err := snap.resolve([]string{label})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	runID := uuid.NewString()
	span.SetAttributes(attribute.String("run.id", runID))
	return s.analyzeOne(ctx, snap, periods[0], runID)
}

// HistoricReport is the per-period overview across a series.
type HistoricReport struct {
	Periods []analysis.PeriodSnapshot `json:"semesters"`
	Trend   analysis.HistoricTrend    `json:"trend"`
}

// SystemicReport lists routes flagged repeatedly across a series.
type SystemicReport struct {
	Periods []string                 `json:"periods"`
	Cases   []analysis.SystemicCase  `json:"cases"`
	Summary analysis.SystemicSummary `json:"summary"`
}

// Historic analyses the given periods, or every available period when labels is empty.
func (s *AnalysisService) Historic(ctx context.Context, labels []string) (*HistoricReport, error) {
	series, _, err := s.Series(ctx, labels)
	if err != nil {
		return nil, err
	}
	return &HistoricReport{Periods: series.Periods, Trend: series.Trend}, nil
}

// Systemic detects recurring routes over the given periods, or every available period
// when labels is empty.
func (s *AnalysisService) Systemic(ctx context.Context, labels []string) (*SystemicReport, error) {
	series, results, err := s.Series(ctx, labels)
	if err != nil {
		return nil, err
	}
	analysed := make([]string, 0, len(results))
	for _, r := range results {
		analysed = append(analysed, r.Period)
	}
	return &SystemicReport{Periods: analysed, Cases: series.Cases, Summary: series.Systemic}, nil
}

// Series analyses the periods in chronological order and folds them. Period results
// come from the cache where possible.
func (s *AnalysisService) Series(ctx context.Context, labels []string) (*analysis.SeriesResult, []*analysis.PeriodResult, error) {
	ctx, span := s.opts.Tracer.Start(ctx, "service.series",
		trace.WithAttributes(attribute.StringSlice("periods", labels)))
	defer span.End()

	snap, err := s.snapshot()
	if err != nil {
		return nil, nil, err
	}
	periods, err := snap.resolve(labels)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	runID := uuid.NewString()
	span.SetAttributes(attribute.String("run.id", runID))

	results := make([]*analysis.PeriodResult, len(periods))
	g, gctx := errgroup.WithContext(ctx)
	if s.opts.Parallelism > 0 {
		g.SetLimit(s.opts.Parallelism)
	}
	for i, p := range periods {
		g.Go(func() error {
			res, err := s.analyzeOne(gctx, snap, p, runID)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	return analysis.BuildSeries(results, snap.cfg), results, nil
}

func (s *AnalysisService) analyzeOne(ctx context.Context, snap *snapshot, p period.Period, runID string) (*analysis.PeriodResult, error) {
	logger := s.logger.WithFields(logging.Field("run_id", runID), logging.Field("period", p.Label()))

	key := cache.Key(p.Label(), snap.revision(), snap.cfg)
	if s.opts.Cache != nil {
		if res, ok := s.opts.Cache.Get(key); ok {
			s.opts.Metrics.ObserveCache(true)
			logger.Debug("Serving cached result")
			return res, nil
		}
		s.opts.Metrics.ObserveCache(false)
	}

	start := time.Now()
	res, err := s.analyzer.AnalyzePeriod(ctx, snap.dataset.Input(p, snap.cfg, snap.partners))
	if err != nil {
		logger.Error("Analysis failed: %v", err)
		return nil, err
	}
	duration := time.Since(start)
	s.opts.Metrics.ObserveAnalysis(p.Label(), duration, res.Summary)

	if s.opts.Cache != nil {
		s.opts.Cache.Put(key, res)
	}
	logger.InfoWithFields("Period analyzed",
		logging.Field("high_priority", res.Summary.HighPriority),
		logging.Field("watch_list", res.Summary.WatchList),
		logging.Field("duration_ms", duration.Milliseconds()))
	return res, nil
}

func (s *AnalysisService) clearCache() {
	if s.opts.Cache != nil {
		s.opts.Cache.Clear()
	}
}

// snapshot is a consistent view of the mutable state for one request.
type snapshot struct {
	dataset  *records.Dataset
	cfg      analysis.Config
	partners map[string][]string
}

func (s *AnalysisService) snapshot() (*snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, ErrNoDataset
	}
	return &snapshot{dataset: s.dataset, cfg: s.cfg, partners: s.settings.PartnerMap()}, nil
}

// revision identifies the dataset plus everything outside analysis.Config that shapes
// a result.
func (snap *snapshot) revision() string {
	if len(snap.partners) == 0 {
		return snap.dataset.Revision
	}
	airlines := make([]string, 0, len(snap.partners))
	for a := range snap.partners {
		airlines = append(airlines, a)
	}
	sort.Strings(airlines)

	var b strings.Builder
	b.WriteString(snap.dataset.Revision)
	for _, a := range airlines {
		b.WriteString("|" + a + "=" + strings.Join(snap.partners[a], ","))
	}
	return b.String()
}

// resolve parses labels into chronological periods the dataset covers. An empty list
// selects every available period.
func (snap *snapshot) resolve(labels []string) ([]period.Period, error) {
	available := snap.dataset.Periods()
	if len(labels) == 0 {
		if len(available) == 0 {
			return nil, fmt.Errorf("%w: dataset covers no complete half-year", ErrUnknownPeriod)
		}
		return available, nil
	}

	periods, err := period.Sort(labels)
	if err != nil {
		return nil, err
	}
	covered := period.Labels(available)
	for _, p := range periods {
		if !slices.Contains(covered, p.Label()) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPeriod, p.Label())
		}
	}
	return periods, nil
}

func sameExclusions(a, b *config.Settings) bool {
	ea, eb := a.Exclusions(), b.Exclusions()
	if (ea == nil) != (eb == nil) {
		return false
	}
	ea, eb = slices.Clone(ea), slices.Clone(eb)
	sort.Strings(ea)
	sort.Strings(eb)
	return slices.Equal(ea, eb)
}
