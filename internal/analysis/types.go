package analysis

import "time"

// ============================================================================
// INPUT RECORDS
// ============================================================================

// Case is a single inadmissible-passenger record.
// Included is false when the refusal code is in the exclusion set; such cases never
// count toward any threshold.
type Case struct {
	Airline  string    `json:"airline"`
	Origin   string    `json:"origin"` // Last-stop station code, e.g. "DXB"
	Date     time.Time `json:"date"`
	Included bool      `json:"included"`
}

// VolumeRecord is the aggregated passenger volume of an airline at an airport over the
// analysis window.
type VolumeRecord struct {
	Airline string `json:"airline"`
	Airport string `json:"airport"`
	Pax     int64  `json:"pax"`
}

// ============================================================================
// CLASSIFICATION LABELS
// ============================================================================

// Priority is the label assigned to a scored route
type Priority string

const (
	PriorityHigh       Priority = "HIGH_PRIORITY"
	PriorityWatchList  Priority = "WATCH_LIST"
	PriorityClear      Priority = "CLEAR"
	PriorityUnreliable Priority = "UNRELIABLE"
	PriorityNoData     Priority = "NO_DATA"
)

// AllPriorities lists every label in reporting order.
func AllPriorities() []Priority {
	return []Priority{PriorityHigh, PriorityWatchList, PriorityClear, PriorityUnreliable, PriorityNoData}
}

// Flagged reports whether the label counts toward systemic detection.
func (p Priority) Flagged() bool {
	return p == PriorityHigh || p == PriorityWatchList
}

// Trend describes how a systemic route's density moved across its history
type Trend string

const (
	TrendWorsening Trend = "WORSENING"
	TrendImproving Trend = "IMPROVING"
	TrendStable    Trend = "STABLE"
)

// Direction is the period-over-period movement of the flagged route count
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// ============================================================================
// FUNNEL OUTPUT
// ============================================================================

// AirlineCount is a Step 1 row.
type AirlineCount struct {
	Airline   string `json:"airline"`
	InadCount int    `json:"inadCount"`
}

// RouteCount is a Step 2 row.
type RouteCount struct {
	Airline   string `json:"airline"`
	Origin    string `json:"origin"`
	InadCount int    `json:"inadCount"`
}

// RouteMetric is a Step 3 row: a scored and classified route.
// Density is nil iff Pax is zero. Confidence is zero whenever Reliable is false.
type RouteMetric struct {
	Airline    string   `json:"airline"`
	Origin     string   `json:"origin"`
	InadCount  int      `json:"inad"`
	Pax        int64    `json:"pax"`
	Density    *float64 `json:"density"`
	Confidence int      `json:"confidence"`
	Reliable   bool     `json:"reliable"`
	Priority   Priority `json:"priority,omitempty"`
}

// Summary counts routes per label for one period.
type Summary struct {
	TotalInad    int             `json:"totalInad"`
	HighPriority int             `json:"highPriority"`
	WatchList    int             `json:"watchList"`
	Clear        int             `json:"clear"`
	Unreliable   int             `json:"unreliable"`
	NoData       int             `json:"noData"`
	Threshold    float64         `json:"threshold"` // rounded for presentation
	Method       ThresholdMethod `json:"method"`
}

// Flagged returns HIGH_PRIORITY plus WATCH_LIST.
func (s Summary) Flagged() int {
	return s.HighPriority + s.WatchList
}

// DataQuality reports properties of the input without rejecting it.
type DataQuality struct {
	TotalCases          int `json:"totalCases"`
	IncludedCases       int `json:"includedCases"`
	ExcludedCases       int `json:"excludedCases"`
	RoutesWithoutVolume int `json:"routesWithoutVolume"`
	UnreliableRoutes    int `json:"unreliableRoutes"`
}

// PeriodResult is the complete analysis of one reporting period.
type PeriodResult struct {
	Period    string         `json:"period"`
	Airlines  []AirlineCount `json:"airlines"`
	Routes    []RouteCount   `json:"step2Routes"`
	Metrics   []RouteMetric  `json:"routes"`
	Threshold float64        `json:"threshold"`
	Summary   Summary        `json:"summary"`
	Quality   DataQuality    `json:"dataQuality"`
	Config    Config         `json:"config"`
}

// ============================================================================
// CROSS-PERIOD OUTPUT
// ============================================================================

// ClassifiedPeriod is one element of the series consumed by DetectSystemic.
type ClassifiedPeriod struct {
	Period string
	Routes []RouteMetric
}

// HistoryEntry records one flagged appearance of a route.
type HistoryEntry struct {
	Period   string   `json:"period"`
	Priority Priority `json:"priority"`
	Density  *float64 `json:"density"`
}

// SystemicCase is a route flagged in at least SystemicPeriods periods.
//
// Recurring counts appearances anywhere in the series. MaxConsecutive is the longest
// run of adjacent flagged periods and is informational only.
type SystemicCase struct {
	Airline        string         `json:"airline"`
	Origin         string         `json:"origin"`
	Appearances    int            `json:"appearances"`
	Recurring      bool           `json:"recurring"`
	MaxConsecutive int            `json:"maxConsecutive"`
	Trend          Trend          `json:"trend"`
	LatestPriority Priority       `json:"latestPriority"`
	History        []HistoryEntry `json:"history"`
}

// SystemicSummary aggregates a list of systemic cases.
type SystemicSummary struct {
	Total     int `json:"totalSystemic"`
	Worsening int `json:"worsening"`
	Recurring int `json:"recurring"`
}

// PeriodSnapshot is the per-period row of a historic series.
type PeriodSnapshot struct {
	Period            string  `json:"period"`
	Summary           Summary `json:"summary"`
	Threshold         float64 `json:"threshold"`
	HighPriorityCount int     `json:"highPriorityCount"`
	WatchListCount    int     `json:"watchListCount"`
	TotalInad         int     `json:"totalInad"`
}

// HistoricTrend compares the flagged route count of the first and last period.
type HistoricTrend struct {
	Direction          Direction `json:"direction"`
	HighPriorityChange int       `json:"highPriorityChange"`
	WatchListChange    int       `json:"watchListChange"`
	TotalChange        int       `json:"totalChange"`
}

// SeriesResult is the cross-period analysis of an ordered list of periods.
type SeriesResult struct {
	Periods  []PeriodSnapshot `json:"semesters"`
	Trend    HistoricTrend    `json:"trend"`
	Cases    []SystemicCase   `json:"cases"`
	Systemic SystemicSummary  `json:"systemic"`
}
