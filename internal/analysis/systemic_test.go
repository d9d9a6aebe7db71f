package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flagged(airline, origin string, p Priority, density float64) RouteMetric {
	return RouteMetric{Airline: airline, Origin: origin, Priority: p, Density: densityPtr(density), Reliable: true, Pax: 50000}
}

func TestDetectSystemic_Scenario(t *testing.T) {
	cfg := DefaultConfig()
	periods := []ClassifiedPeriod{
		{Period: "2024-H1", Routes: []RouteMetric{flagged("ZZ", "DXB", PriorityWatchList, 0.20)}},
		{Period: "2024-H2", Routes: []RouteMetric{flagged("ZZ", "DXB", PriorityHigh, 0.30)}},
	}

	cases := DetectSystemic(periods, cfg)
	require.Len(t, cases, 1)

	c := cases[0]
	assert.Equal(t, "ZZ", c.Airline)
	assert.Equal(t, "DXB", c.Origin)
	assert.Equal(t, 2, c.Appearances)
	assert.True(t, c.Recurring)
	assert.Equal(t, 2, c.MaxConsecutive)
	assert.Equal(t, TrendWorsening, c.Trend)
	assert.Equal(t, PriorityHigh, c.LatestPriority)
	require.Len(t, c.History, 2)
	assert.Equal(t, "2024-H1", c.History[0].Period)
	assert.Equal(t, PriorityWatchList, c.History[0].Priority)
	assert.Equal(t, "2024-H2", c.History[1].Period)
}

func TestDetectSystemic_NonContiguousAppearancesStillRecur(t *testing.T) {
	cfg := DefaultConfig()
	periods := []ClassifiedPeriod{
		{Period: "2023-H1", Routes: []RouteMetric{flagged("ZZ", "DXB", PriorityHigh, 0.5)}},
		{Period: "2023-H2", Routes: []RouteMetric{flagged("ZZ", "DXB", PriorityClear, 0.05)}},
		{Period: "2024-H1", Routes: nil},
		{Period: "2024-H2", Routes: []RouteMetric{flagged("ZZ", "DXB", PriorityWatchList, 0.5)}},
	}

	cases := DetectSystemic(periods, cfg)
	require.Len(t, cases, 1)
	assert.Equal(t, 2, cases[0].Appearances)
	assert.True(t, cases[0].Recurring)
	assert.Equal(t, 1, cases[0].MaxConsecutive)
	assert.Equal(t, TrendStable, cases[0].Trend)
}

func TestDetectSystemic_Filtering(t *testing.T) {
	periods := []ClassifiedPeriod{
		{Period: "2024-H1", Routes: []RouteMetric{
			flagged("AA", "JFK", PriorityClear, 0.01),
			flagged("BB", "LHR", PriorityHigh, 0.4),
			{Airline: "CC", Origin: "CAI", Priority: PriorityUnreliable},
			{Airline: "DD", Origin: "IST", Priority: PriorityNoData},
		}},
		{Period: "2024-H2", Routes: []RouteMetric{
			flagged("AA", "JFK", PriorityClear, 0.02),
			{Airline: "CC", Origin: "CAI", Priority: PriorityUnreliable},
		}},
	}

	t.Run("never flagged routes are absent", func(t *testing.T) {
		assert.Empty(t, DetectSystemic(periods, DefaultConfig()))
	})

	t.Run("single appearance is emitted when one period suffices", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.SystemicPeriods = 1
		cases := DetectSystemic(periods, cfg)
		require.Len(t, cases, 1)
		assert.Equal(t, "BB", cases[0].Airline)
		assert.Equal(t, TrendStable, cases[0].Trend)
		assert.True(t, cases[0].Recurring)
	})
}

func TestDetectSystemic_OutputOrderAndRecurringProperty(t *testing.T) {
	cfg := DefaultConfig()
	periods := []ClassifiedPeriod{
		{Period: "2023-H2", Routes: []RouteMetric{flagged("BB", "LHR", PriorityWatchList, 0.2)}},
		{Period: "2024-H1", Routes: []RouteMetric{
			flagged("AA", "JFK", PriorityHigh, 0.3),
			flagged("BB", "LHR", PriorityWatchList, 0.2),
		}},
		{Period: "2024-H2", Routes: []RouteMetric{
			flagged("AA", "JFK", PriorityHigh, 0.3),
			flagged("BB", "LHR", PriorityHigh, 0.35),
		}},
	}

	cases := DetectSystemic(periods, cfg)
	require.Len(t, cases, 2)
	assert.Equal(t, "BB", cases[0].Airline)
	assert.Equal(t, 3, cases[0].Appearances)
	assert.Equal(t, "AA", cases[1].Airline)
	for _, c := range cases {
		assert.Equal(t, c.Appearances >= cfg.SystemicPeriods, c.Recurring)
		assert.Equal(t, len(c.History), c.Appearances)
	}
}

func TestDetectSystemic_DuplicateRouteInOnePeriod(t *testing.T) {
	periods := []ClassifiedPeriod{
		{Period: "2024-H1", Routes: []RouteMetric{
			flagged("AA", "JFK", PriorityHigh, 0.3),
			flagged("AA", "JFK", PriorityHigh, 0.3),
		}},
	}
	assert.Empty(t, DetectSystemic(periods, DefaultConfig()))
}

func TestHistoryTrend(t *testing.T) {
	tests := []struct {
		name     string
		history  []HistoryEntry
		expected Trend
	}{
		{"single entry", []HistoryEntry{{Density: densityPtr(0.2)}}, TrendStable},
		{"more than ten percent up", []HistoryEntry{{Density: densityPtr(0.2)}, {Density: densityPtr(0.23)}}, TrendWorsening},
		{"more than ten percent down", []HistoryEntry{{Density: densityPtr(0.3)}, {Density: densityPtr(0.2)}}, TrendImproving},
		{"within ten percent", []HistoryEntry{{Density: densityPtr(0.2)}, {Density: densityPtr(0.21)}}, TrendStable},
		{"middle entries ignored", []HistoryEntry{{Density: densityPtr(0.2)}, {Density: densityPtr(9)}, {Density: densityPtr(0.2)}}, TrendStable},
		{"nil first density", []HistoryEntry{{Density: nil}, {Density: densityPtr(0.5)}}, TrendStable},
		{"zero first density", []HistoryEntry{{Density: densityPtr(0)}, {Density: densityPtr(0.5)}}, TrendStable},
		{"nil last density", []HistoryEntry{{Density: densityPtr(0.5)}, {Density: nil}}, TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, historyTrend(tt.history))
		})
	}
}

func TestComputeHistoricTrend(t *testing.T) {
	tests := []struct {
		name      string
		snapshots []PeriodSnapshot
		expected  HistoricTrend
	}{
		{
			name:     "no periods",
			expected: HistoricTrend{Direction: DirectionFlat},
		},
		{
			name: "more flagged routes",
			snapshots: []PeriodSnapshot{
				{Period: "2024-H1", HighPriorityCount: 1, WatchListCount: 2},
				{Period: "2024-H2", HighPriorityCount: 3, WatchListCount: 1},
			},
			expected: HistoricTrend{Direction: DirectionUp, HighPriorityChange: 2, WatchListChange: -1, TotalChange: 1},
		},
		{
			name: "fewer flagged routes ignoring the middle",
			snapshots: []PeriodSnapshot{
				{Period: "2023-H2", HighPriorityCount: 4, WatchListCount: 4},
				{Period: "2024-H1", HighPriorityCount: 10, WatchListCount: 10},
				{Period: "2024-H2", HighPriorityCount: 2, WatchListCount: 3},
			},
			expected: HistoricTrend{Direction: DirectionDown, HighPriorityChange: -2, WatchListChange: -1, TotalChange: -3},
		},
		{
			name: "same total is flat",
			snapshots: []PeriodSnapshot{
				{Period: "2024-H1", HighPriorityCount: 2, WatchListCount: 1},
				{Period: "2024-H2", HighPriorityCount: 1, WatchListCount: 2},
			},
			expected: HistoricTrend{Direction: DirectionFlat, HighPriorityChange: -1, WatchListChange: 1, TotalChange: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeHistoricTrend(tt.snapshots))
		})
	}
}

func TestSummarizeSystemic(t *testing.T) {
	cases := []SystemicCase{
		{Trend: TrendWorsening, Recurring: true},
		{Trend: TrendStable, Recurring: true},
		{Trend: TrendImproving, Recurring: true},
	}
	assert.Equal(t, SystemicSummary{Total: 3, Worsening: 1, Recurring: 3}, SummarizeSystemic(cases))
}
