package analysis

import "time"

var testDate = time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

func makeCases(airline, origin string, n int, included bool) []Case {
	cases := make([]Case, n)
	for i := range cases {
		cases[i] = Case{Airline: airline, Origin: origin, Date: testDate, Included: included}
	}
	return cases
}

func concatCases(groups ...[]Case) []Case {
	var out []Case
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func densityPtr(v float64) *float64 {
	return &v
}

func metric(airline, origin string, inad int, pax int64, reliable bool) RouteMetric {
	return RouteMetric{
		Airline:   airline,
		Origin:    origin,
		InadCount: inad,
		Pax:       pax,
		Density:   Density(inad, pax),
		Reliable:  reliable,
	}
}
