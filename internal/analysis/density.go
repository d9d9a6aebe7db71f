package analysis

// VolumeResolver returns the passenger volume of an airline at an airport.
// Implementations return 0 for unknown pairs and never a negative value.
type VolumeResolver interface {
	Volume(airline, airport string) int64
}

// VolumeTable is a direct (airline, airport) lookup.
type VolumeTable struct {
	pax map[routeKey]int64
}

// NewVolumeTable sums the records per (airline, airport).
func NewVolumeTable(records []VolumeRecord) *VolumeTable {
	t := &VolumeTable{pax: make(map[routeKey]int64, len(records))}
	for _, r := range records {
		t.pax[routeKey{airline: r.Airline, origin: r.Airport}] += r.Pax
	}
	return t
}

// Volume implements VolumeResolver
func (t *VolumeTable) Volume(airline, airport string) int64 {
	if t == nil {
		return 0
	}
	return t.pax[routeKey{airline: airline, origin: airport}]
}

// Len returns the number of distinct (airline, airport) pairs
func (t *VolumeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.pax)
}

// PartnerResolver adds the volume of declared partner airlines at the same airport to the
// volume of the base resolver. With an empty mapping it behaves exactly like base.
type PartnerResolver struct {
	base     VolumeResolver
	partners map[string][]string
}

// NewPartnerResolver wraps base with a partner mapping (airline -> partner airlines).
// The mapping is copied; later changes by the caller have no effect.
func NewPartnerResolver(base VolumeResolver, partners map[string][]string) *PartnerResolver {
	copied := make(map[string][]string, len(partners))
	for airline, list := range partners {
		copied[airline] = append([]string(nil), list...)
	}
	return &PartnerResolver{base: base, partners: copied}
}

// Volume implements VolumeResolver
func (r *PartnerResolver) Volume(airline, airport string) int64 {
	total := r.base.Volume(airline, airport)
	for _, partner := range r.partners[airline] {
		if partner == airline {
			continue
		}
		total += r.base.Volume(partner, airport)
	}
	return total
}

// ScoreRoutes is Step 3: density, reliability and confidence for every Step 2 route.
// Output order follows the input order. Priority is left empty; see ClassifyAll.
func ScoreRoutes(routes []RouteCount, volumes VolumeResolver, cfg Config) []RouteMetric {
	metrics := make([]RouteMetric, 0, len(routes))
	for _, r := range routes {
		var pax int64
		if volumes != nil {
			pax = volumes.Volume(r.Airline, r.Origin)
		}
		if pax < 0 {
			pax = 0
		}

		reliable := pax >= cfg.MinPax
		metrics = append(metrics, RouteMetric{
			Airline:    r.Airline,
			Origin:     r.Origin,
			InadCount:  r.InadCount,
			Pax:        pax,
			Density:    Density(r.InadCount, pax),
			Confidence: Confidence(r.InadCount, pax, reliable),
			Reliable:   reliable,
		})
	}
	return metrics
}

// Density returns cases per thousand passengers, or nil when pax is zero.
func Density(inad int, pax int64) *float64 {
	if pax <= 0 {
		return nil
	}
	d := float64(inad) / float64(pax) * DensityScale
	return &d
}
