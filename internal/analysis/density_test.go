package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRoutes_Scenario(t *testing.T) {
	cfg := DefaultConfig()
	table := NewVolumeTable([]VolumeRecord{{Airline: "ZZ", Airport: "DXB", Pax: 50000}})

	metrics := ScoreRoutes([]RouteCount{{Airline: "ZZ", Origin: "DXB", InadCount: 12}}, table, cfg)
	require.Len(t, metrics, 1)

	m := metrics[0]
	assert.True(t, m.Reliable)
	assert.Equal(t, int64(50000), m.Pax)
	require.NotNil(t, m.Density)
	assert.InDelta(t, 0.24, *m.Density, 1e-12)
	assert.Equal(t, 56, m.Confidence)
	assert.Empty(t, m.Priority)
}

func TestScoreRoutes_MissingVolume(t *testing.T) {
	cfg := DefaultConfig()
	metrics := ScoreRoutes([]RouteCount{{Airline: "ZZ", Origin: "DXB", InadCount: 40}}, NewVolumeTable(nil), cfg)
	require.Len(t, metrics, 1)

	assert.Equal(t, int64(0), metrics[0].Pax)
	assert.Nil(t, metrics[0].Density)
	assert.False(t, metrics[0].Reliable)
	assert.Equal(t, 0, metrics[0].Confidence)
}

func TestScoreRoutes_NilResolver(t *testing.T) {
	metrics := ScoreRoutes([]RouteCount{{Airline: "ZZ", Origin: "DXB", InadCount: 7}}, nil, DefaultConfig())
	require.Len(t, metrics, 1)
	assert.Nil(t, metrics[0].Density)
}

func TestScoreRoutes_Properties(t *testing.T) {
	cfg := DefaultConfig()
	table := NewVolumeTable([]VolumeRecord{
		{Airline: "AA", Airport: "JFK", Pax: 4999},
		{Airline: "AA", Airport: "ORD", Pax: 5000},
		{Airline: "BB", Airport: "LHR", Pax: 2_000_000},
		{Airline: "CC", Airport: "DXB", Pax: 1},
	})
	routes := []RouteCount{
		{Airline: "AA", Origin: "JFK", InadCount: 30},
		{Airline: "AA", Origin: "ORD", InadCount: 6},
		{Airline: "BB", Origin: "LHR", InadCount: 500},
		{Airline: "CC", Origin: "DXB", InadCount: 6},
		{Airline: "DD", Origin: "IST", InadCount: 9},
	}

	for _, m := range ScoreRoutes(routes, table, cfg) {
		assert.Equal(t, m.Pax == 0, m.Density == nil, "%s/%s density nil iff pax zero", m.Airline, m.Origin)
		assert.GreaterOrEqual(t, m.Confidence, 0)
		assert.LessOrEqual(t, m.Confidence, 100)
		if !m.Reliable {
			assert.Equal(t, 0, m.Confidence)
		}
		if m.Density != nil {
			assert.GreaterOrEqual(t, *m.Density, 0.0)
		}
	}
}

func TestPartnerResolver(t *testing.T) {
	table := NewVolumeTable([]VolumeRecord{
		{Airline: "LX", Airport: "DXB", Pax: 30000},
		{Airline: "WK", Airport: "DXB", Pax: 20000},
		{Airline: "WK", Airport: "CAI", Pax: 9000},
	})

	t.Run("no mapping behaves like the base table", func(t *testing.T) {
		r := NewPartnerResolver(table, nil)
		assert.Equal(t, table.Volume("LX", "DXB"), r.Volume("LX", "DXB"))
		assert.Equal(t, int64(0), r.Volume("LX", "CAI"))
	})

	t.Run("partner volume at the same origin is added", func(t *testing.T) {
		r := NewPartnerResolver(table, map[string][]string{"LX": {"WK"}})
		assert.Equal(t, int64(50000), r.Volume("LX", "DXB"))
		assert.Equal(t, int64(9000), r.Volume("LX", "CAI"))
		assert.Equal(t, int64(20000), r.Volume("WK", "DXB"), "mapping is directional")
	})

	t.Run("self reference is not double counted", func(t *testing.T) {
		r := NewPartnerResolver(table, map[string][]string{"LX": {"LX", "WK"}})
		assert.Equal(t, int64(50000), r.Volume("LX", "DXB"))
	})

	t.Run("mapping is copied", func(t *testing.T) {
		partners := map[string][]string{"LX": {"WK"}}
		r := NewPartnerResolver(table, partners)
		partners["LX"][0] = "XX"
		assert.Equal(t, int64(50000), r.Volume("LX", "DXB"))
	})
}

func TestVolumeTable_SumsDuplicates(t *testing.T) {
	table := NewVolumeTable([]VolumeRecord{
		{Airline: "LX", Airport: "DXB", Pax: 1000},
		{Airline: "LX", Airport: "DXB", Pax: 500},
	})
	assert.Equal(t, int64(1500), table.Volume("LX", "DXB"))
	assert.Equal(t, 1, table.Len())
}
