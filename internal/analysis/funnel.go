package analysis

import "sort"

// FilterAirlines is Step 1 of the funnel: included cases grouped by airline, keeping
// airlines with at least cfg.MinInad cases. Rows are ordered by count descending, ties by
// airline code.
func FilterAirlines(cases []Case, cfg Config) []AirlineCount {
	counts := make(map[string]int)
	for _, c := range cases {
		if !c.Included {
			continue
		}
		counts[c.Airline]++
	}

	result := make([]AirlineCount, 0, len(counts))
	for airline, n := range counts {
		if n >= cfg.MinInad {
			result = append(result, AirlineCount{Airline: airline, InadCount: n})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].InadCount != result[j].InadCount {
			return result[i].InadCount > result[j].InadCount
		}
		return result[i].Airline < result[j].Airline
	})
	return result
}

// FilterRoutes is Step 2 of the funnel: included cases of airlines that survived Step 1,
// grouped by (airline, origin), keeping routes with at least cfg.MinInad cases.
// The airline set of the output is always a subset of the airlines argument.
func FilterRoutes(cases []Case, airlines []AirlineCount, cfg Config) []RouteCount {
	allowed := make(map[string]struct{}, len(airlines))
	for _, a := range airlines {
		allowed[a.Airline] = struct{}{}
	}

	counts := make(map[routeKey]int)
	for _, c := range cases {
		if !c.Included {
			continue
		}
		if _, ok := allowed[c.Airline]; !ok {
			continue
		}
		counts[routeKey{airline: c.Airline, origin: c.Origin}]++
	}

	result := make([]RouteCount, 0, len(counts))
	for key, n := range counts {
		if n >= cfg.MinInad {
			result = append(result, RouteCount{Airline: key.airline, Origin: key.origin, InadCount: n})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].InadCount != result[j].InadCount {
			return result[i].InadCount > result[j].InadCount
		}
		if result[i].Airline != result[j].Airline {
			return result[i].Airline < result[j].Airline
		}
		return result[i].Origin < result[j].Origin
	})
	return result
}

type routeKey struct {
	airline string
	origin  string
}
