package period

import (
	"testing"
	"time"

	"github.com/moolen/casa/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		label   string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{label: "2024-H1", start: day(2024, time.January, 1), end: day(2024, time.June, 30)},
		{label: "2024-H2", start: day(2024, time.July, 1), end: day(2024, time.December, 31)},
		{label: " 2023-h2 ", start: day(2023, time.July, 1), end: day(2023, time.December, 31)},
		{label: "2024-H3", wantErr: true},
		{label: "2024", wantErr: true},
		{label: "24-H1", wantErr: true},
		{label: "abcd-H1", wantErr: true},
		{label: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			p, err := Parse(tt.label)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLabel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.start, p.Start)
			assert.Equal(t, tt.end, p.End)
		})
	}
}

func TestLabelAndDisplayName(t *testing.T) {
	p := New(2024, H2)
	assert.Equal(t, "2024-H2", p.Label())
	assert.Equal(t, "2024 H2 (Jul-Dec)", p.DisplayName())
	assert.Equal(t, "2024 H1 (Jan-Jun)", New(2024, H1).DisplayName())
	assert.Equal(t, New(2025, H1), p.Next())
}

func TestContains(t *testing.T) {
	p := New(2024, H1)
	assert.True(t, p.Contains(day(2024, time.January, 1)))
	assert.True(t, p.Contains(time.Date(2024, time.June, 30, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(day(2024, time.July, 1)))
	assert.False(t, p.Contains(day(2023, time.December, 31)))
}

func TestOf(t *testing.T) {
	assert.Equal(t, "2024-H1", Of(day(2024, time.June, 30)).Label())
	assert.Equal(t, "2024-H2", Of(day(2024, time.July, 1)).Label())
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name     string
		dates    []time.Time
		expected []string
	}{
		{"no data", nil, []string{}},
		{"single month covers nothing", []time.Time{day(2024, time.March, 1)}, []string{}},
		{
			"full first half",
			[]time.Time{day(2024, time.January, 5), day(2024, time.June, 2)},
			[]string{"2024-H1"},
		},
		{
			"partial halves at both ends are skipped",
			[]time.Time{day(2023, time.March, 1), day(2024, time.December, 1), day(2025, time.February, 1)},
			[]string{"2023-H2", "2024-H1", "2024-H2"},
		},
		{
			"order of dates does not matter",
			[]time.Time{day(2024, time.December, 31), day(2024, time.January, 1)},
			[]string{"2024-H1", "2024-H2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Labels(Available(tt.dates))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSortAndParseList(t *testing.T) {
	periods, err := ParseList("2024-H2, 2023-H1,2024-H1,2024-H2")
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-H1", "2024-H1", "2024-H2"}, Labels(periods))

	_, err = ParseList(" , ")
	assert.ErrorIs(t, err, ErrInvalidLabel)

	_, err = Sort([]string{"2024-H1", "bogus"})
	assert.ErrorIs(t, err, ErrInvalidLabel)
}

func TestSelect(t *testing.T) {
	cases := []analysis.Case{
		{Airline: "LX", Origin: "DXB", Date: day(2024, time.February, 1)},
		{Airline: "LX", Origin: "DXB", Date: day(2024, time.August, 1)},
		{Airline: "WK", Origin: "CAI", Date: day(2024, time.June, 30)},
	}
	got := Select(cases, New(2024, H1))
	require.Len(t, got, 2)
	assert.Equal(t, "LX", got[0].Airline)
	assert.Equal(t, "WK", got[1].Airline)

	assert.Empty(t, Select(cases, New(2025, H1)))
}
