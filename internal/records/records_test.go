package records

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/moolen/casa/internal/analysis"
	"github.com/moolen/casa/internal/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-03", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-15T22:10:00Z", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15.03.2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15 March 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := ParseDate("   ")
	assert.Error(t, err)
}

func TestReadCases_CSV(t *testing.T) {
	input := `Airline,Origin,Date,Code
LX,DXB,2024-01-10,A1
LX,DXB,2024-02-10,E
WK,CAI,2024-03,C8
,,,
`
	cases, err := ReadCases(strings.NewReader(input), FormatCSV, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, cases, 3)

	assert.Equal(t, analysis.Case{Airline: "LX", Origin: "DXB", Date: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Included: true}, cases[0])
	assert.False(t, cases[1].Included, "E is excluded by default")
	assert.False(t, cases[2].Included, "C8 is excluded by default")
}

func TestReadCases_ExclusionOptions(t *testing.T) {
	input := "airline,origin,date,code\nLX,DXB,2024-01-10,E\nLX,DXB,2024-01-11,A1\n"

	t.Run("empty list excludes nothing", func(t *testing.T) {
		cases, err := ReadCases(strings.NewReader(input), FormatCSV, LoadOptions{ExcludeCodes: []string{}})
		require.NoError(t, err)
		assert.True(t, cases[0].Included)
		assert.True(t, cases[1].Included)
	})

	t.Run("custom list", func(t *testing.T) {
		cases, err := ReadCases(strings.NewReader(input), FormatCSV, LoadOptions{ExcludeCodes: []string{" A1 "}})
		require.NoError(t, err)
		assert.True(t, cases[0].Included)
		assert.False(t, cases[1].Included)
	})

	t.Run("codes match exactly", func(t *testing.T) {
		cases, err := ReadCases(strings.NewReader(input), FormatCSV, LoadOptions{ExcludeCodes: []string{"e"}})
		require.NoError(t, err)
		assert.True(t, cases[0].Included)
	})
}

func TestReadCases_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
		index int
	}{
		{"missing airline", "airline,origin,date,code\n,DXB,2024-01-10,A1\n", "airline", 0},
		{"missing origin", "airline,origin,date,code\nLX,DXB,2024-01-10,A1\nLX,,2024-01-10,A1\n", "origin", 1},
		{"missing date", "airline,origin,date,code\nLX,DXB,,A1\n", "date", 0},
		{"bad date", "airline,origin,date,code\nLX,DXB,not a date at all,A1\n", "date", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCases(strings.NewReader(tt.input), FormatCSV, LoadOptions{})
			var se *analysis.StructuralError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
			assert.Equal(t, tt.index, se.Index)
		})
	}
}

func TestReadCases_YAMLAndJSON(t *testing.T) {
	yamlInput := `
- airline: LX
  origin: DXB
  date: 2024-01-10
  code: A1
- airline: WK
  origin: CAI
  date: "2024-08"
  code: G
`
	cases, err := ReadCases(strings.NewReader(yamlInput), FormatYAML, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), cases[0].Date)
	assert.True(t, cases[0].Included)
	assert.False(t, cases[1].Included)

	jsonInput := `[{"airline":"LX","origin":"DXB","date":"2024-01-10","code":"A1"}]`
	cases, err = ReadCases(strings.NewReader(jsonInput), FormatJSON, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "DXB", cases[0].Origin)
}

func TestReadVolumes(t *testing.T) {
	input := `airline,airport,pax,date
LX,DXB,12'345,2024-01
LX,DXB,"1,000",
WK,CAI,500,2024-07
`
	volumes, err := ReadVolumes(strings.NewReader(input), FormatCSV)
	require.NoError(t, err)
	require.Len(t, volumes, 3)
	assert.Equal(t, int64(12345), volumes[0].Pax)
	assert.True(t, volumes[0].Dated())
	assert.Equal(t, int64(1000), volumes[1].Pax)
	assert.False(t, volumes[1].Dated())

	jsonInput := `[{"airline":"LX","airport":"DXB","pax":50000}]`
	volumes, err = ReadVolumes(strings.NewReader(jsonInput), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), volumes[0].Pax)
}

func TestReadVolumes_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"negative pax", "airline,airport,pax\nLX,DXB,-5\n", "pax"},
		{"missing pax", "airline,airport,pax\nLX,DXB,\n", "pax"},
		{"non numeric pax", "airline,airport,pax\nLX,DXB,many\n", "pax"},
		{"missing airport", "airline,airport,pax\nLX,,10\n", "airport"},
		{"missing airline", "airline,airport,pax\n,DXB,10\n", "airline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadVolumes(strings.NewReader(tt.input), FormatCSV)
			var se *analysis.StructuralError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestFormatOf(t *testing.T) {
	for path, expected := range map[string]Format{"a.csv": FormatCSV, "b.YAML": FormatYAML, "c.yml": FormatYAML, "d.json": FormatJSON} {
		got, err := FormatOf(path)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
	_, err := FormatOf("cases.xlsx")
	assert.Error(t, err)
}

func TestDiscoverAndLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2024/inad_h1.csv", "airline,origin,date,code\nLX,DXB,2024-01-10,A1\nLX,DXB,2024-06-20,A1\n")
	writeFile(t, dir, "2024/inad_h2.yaml", "- {airline: LX, origin: DXB, date: \"2024-12-01\", code: A1}\n")
	writeFile(t, dir, "bazl_2024.csv", "airline,airport,pax,date\nLX,DXB,1000,2024-02\nLX,DXB,2000,2024-09\nWK,DXB,700,\n")
	writeFile(t, dir, "notes.txt", "ignored")

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Len(t, files.Cases, 2)
	assert.Len(t, files.Volumes, 1)

	ds, err := LoadDir(dir, LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, ds.Cases, 3)
	assert.Len(t, ds.Sources, 3)
	assert.Len(t, ds.Revision, 16)

	assert.Equal(t, []string{"2024-H1", "2024-H2"}, period.Labels(ds.Periods()))

	h1, _ := period.Parse("2024-H1")
	assert.Equal(t, []analysis.VolumeRecord{
		{Airline: "LX", Airport: "DXB", Pax: 1000},
		{Airline: "WK", Airport: "DXB", Pax: 700},
	}, ds.VolumesFor(h1))
	assert.Len(t, ds.CasesFor(h1), 2)

	input := ds.Input(h1, analysis.DefaultConfig(), map[string][]string{"LX": {"WK"}})
	assert.Equal(t, "2024-H1", input.Label)
	assert.Equal(t, int64(1700), input.Volumes.Volume("LX", "DXB"))

	again, err := LoadDir(dir, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, ds.Revision, again.Revision)
}

func TestDiscover_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := Discover(dir)
	assert.ErrorIs(t, err, ErrNoCaseFiles)

	writeFile(t, dir, "inad.csv", "airline,origin,date,code\n")
	_, err = Discover(dir)
	assert.ErrorIs(t, err, ErrNoVolumeFiles)

	_, err = Discover(filepath.Join(dir, "inad.csv"))
	assert.Error(t, err)
}
