// Package analysis implements the INAD route risk engine.
//
// # Overview
//
// The engine turns inadmissible-passenger (INAD) cases and passenger volumes into a
// ranked, labelled list of airline/route combinations, and folds several reporting
// periods together to find routes that keep getting flagged.
//
// # Pipeline
//
// A single period is analysed by a strictly linear funnel:
//
//  1. FilterAirlines: airlines with at least MinInad included cases
//  2. FilterRoutes: (airline, origin) pairs of those airlines with at least MinInad cases
//  3. ScoreRoutes: density per 1000 passengers, reliability and confidence per route
//  4. ComputeThreshold: one density pivot derived from the reliable routes
//  5. ClassifyAll: first-match rule table assigning one of five priorities
//
// DetectSystemic runs separately over an ordered series of classified periods.
//
// # Determinism
//
// Every function is pure. Given identical cases, volumes and Config the Analyzer returns
// identical results, including slice order, so a result cache keyed by Config.Signature
// is correct without invalidation beyond a config or data change.
//
// # Usage Example
//
//	analyzer := analysis.NewAnalyzer()
//	result, err := analyzer.AnalyzePeriod(ctx, analysis.PeriodInput{
//		Label:   "2024-H1",
//		Cases:   cases,
//		Volumes: analysis.NewPartnerResolver(table, partners),
//		Config:  analysis.DefaultConfig(),
//	})
package analysis
