package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moolen/casa/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	var cases strings.Builder
	cases.WriteString("airline,origin,date,code\n")
	for day := 1; day <= 8; day++ {
		cases.WriteString("LX,DXB,2024-02-0" + string(rune('0'+day)) + ",A1\n")
	}
	cases.WriteString("WK,CAI,2024-01-15,A1\n")
	cases.WriteString("WK,CAI,2024-06-15,E\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "inad_2024.csv"), []byte(cases.String()), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bazl_2024.csv"), []byte("airline,airport,pax\nLX,DXB,16'000\n"), 0o600))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand_JSON(t *testing.T) {
	dir := writeDataDir(t)

	out, err := run(t, "analyze", "--data-dir", dir, "--period", "2024-H1", "--json", "--env-file", "")
	require.NoError(t, err)

	var res analysis.PeriodResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "2024-H1", res.Period)
	require.Len(t, res.Metrics, 1)
	assert.Equal(t, int64(16000), res.Metrics[0].Pax)
	assert.Equal(t, 1, res.Quality.ExcludedCases)
}

func TestPeriodsCommand(t *testing.T) {
	dir := writeDataDir(t)

	out, err := run(t, "periods", "--data-dir", dir, "--json", "--env-file", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"periods":["2024-H1"]}`, out)
}

func TestExportCommand(t *testing.T) {
	dir := writeDataDir(t)
	outDir := filepath.Join(t.TempDir(), "site")

	out, err := run(t, "export", "--data-dir", dir, "--out", outDir, "--env-file", "")
	require.NoError(t, err)
	assert.Contains(t, out, "analysis_2024-H1.json")
	assert.FileExists(t, filepath.Join(outDir, "systemic.json"))
}
