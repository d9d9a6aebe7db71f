package analysis

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/moolen/casa/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Analyzer sequences the funnel for one period and the systemic fold across periods.
// It holds no state besides its logger and is safe for concurrent use.
type Analyzer struct {
	logger      *logging.Logger
	parallelism int
}

// NewAnalyzer creates a new analyzer instance
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		logger:      logging.GetLogger("analysis"),
		parallelism: runtime.NumCPU(),
	}
}

// WithParallelism bounds how many periods AnalyzeSeries computes at once.
// Values below 1 are treated as 1.
func (a *Analyzer) WithParallelism(n int) *Analyzer {
	if n < 1 {
		n = 1
	}
	return &Analyzer{logger: a.logger, parallelism: n}
}

// PeriodInput is everything one period analysis needs
type PeriodInput struct {
	Label   string
	Cases   []Case // already scoped to the period
	Volumes VolumeResolver
	Config  Config
}

// AnalyzePeriod runs Step 1 through classification for a single period.
// Configuration and structural errors are returned before any computation.
func (a *Analyzer) AnalyzePeriod(ctx context.Context, in PeriodInput) (*PeriodResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := in.Config.Validate(); err != nil {
		return nil, fmt.Errorf("period %s: %w", in.Label, err)
	}
	if err := ValidateCases(in.Cases); err != nil {
		return nil, fmt.Errorf("period %s: %w", in.Label, err)
	}

	start := time.Now()
	cfg := in.Config

	airlines := FilterAirlines(in.Cases, cfg)
	routes := FilterRoutes(in.Cases, airlines, cfg)
	scored := ScoreRoutes(routes, in.Volumes, cfg)

	threshold, err := ComputeThreshold(scored, cfg)
	if err != nil {
		return nil, fmt.Errorf("period %s: %w", in.Label, err)
	}
	metrics := ClassifyAll(scored, threshold, cfg)
	summary := Summarize(in.Cases, metrics, threshold, cfg.ThresholdMethod)

	a.logger.DebugWithFields("Analyzed period",
		logging.Field("period", in.Label),
		logging.Field("airlines", len(airlines)),
		logging.Field("routes", len(routes)),
		logging.Field("threshold", summary.Threshold),
		logging.Field("high_priority", summary.HighPriority),
		logging.Field("watch_list", summary.WatchList),
		logging.Field("duration", time.Since(start)))

	return &PeriodResult{
		Period:    in.Label,
		Airlines:  airlines,
		Routes:    routes,
		Metrics:   metrics,
		Threshold: threshold,
		Summary:   summary,
		Quality:   assessQuality(in.Cases, metrics),
		Config:    cfg,
	}, nil
}

// AnalyzeSeries analyses every period with cfg, in parallel, and folds the results.
// Results keep the order of periods, which must be chronological for trends to make sense.
func (a *Analyzer) AnalyzeSeries(ctx context.Context, cfg Config, periods []PeriodInput) (*SeriesResult, []*PeriodResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	results := make([]*PeriodResult, len(periods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)

	for i, p := range periods {
		p.Config = cfg
		g.Go(func() error {
			res, err := a.AnalyzePeriod(gctx, p)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return BuildSeries(results, cfg), results, nil
}

// BuildSeries folds already computed period results, in the given order.
func BuildSeries(results []*PeriodResult, cfg Config) *SeriesResult {
	snapshots := make([]PeriodSnapshot, 0, len(results))
	classified := make([]ClassifiedPeriod, 0, len(results))
	for _, r := range results {
		snapshots = append(snapshots, PeriodSnapshot{
			Period:            r.Period,
			Summary:           r.Summary,
			Threshold:         r.Summary.Threshold,
			HighPriorityCount: r.Summary.HighPriority,
			WatchListCount:    r.Summary.WatchList,
			TotalInad:         r.Summary.TotalInad,
		})
		classified = append(classified, ClassifiedPeriod{Period: r.Period, Routes: r.Metrics})
	}

	cases := DetectSystemic(classified, cfg)
	return &SeriesResult{
		Periods:  snapshots,
		Trend:    ComputeHistoricTrend(snapshots),
		Cases:    cases,
		Systemic: SummarizeSystemic(cases),
	}
}

func assessQuality(cases []Case, metrics []RouteMetric) DataQuality {
	q := DataQuality{TotalCases: len(cases)}
	for _, c := range cases {
		if c.Included {
			q.IncludedCases++
		}
	}
	q.ExcludedCases = q.TotalCases - q.IncludedCases
	for _, m := range metrics {
		if m.Pax == 0 {
			q.RoutesWithoutVolume++
		}
		if !m.Reliable {
			q.UnreliableRoutes++
		}
	}
	return q
}
