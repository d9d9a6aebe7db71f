package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/moolen/casa/internal/records"
)

const (
	defaultOutputDir = "./testdata"
	defaultCases     = 2000
	defaultYears     = 2
	defaultAirlines  = 12
	defaultAirports  = 25
)

// refusalCodes mixes counted codes with codes excluded by default
var refusalCodes = []string{"A1", "A2", "B1", "C1", "C3", "D1", "E", "G", "I"}

// route is one airline/origin pair with its yearly passenger volume
type route struct {
	airline string
	origin  string
	pax     int64
}

// generator holds the synthetic network for one run
type generator struct {
	rng          *rand.Rand
	routes       []route
	distribution string
}

func main() {
	outputDir := flag.String("output-dir", defaultOutputDir, "Output directory for generated files")
	caseCount := flag.Int("cases", defaultCases, "INAD cases per year")
	years := flag.Int("years", defaultYears, "Number of years ending with the previous calendar year")
	airlines := flag.Int("airlines", defaultAirlines, "Number of airlines")
	airports := flag.Int("airports", defaultAirports, "Number of origin airports")
	distribution := flag.String("distribution", "skewed", "Distribution pattern: 'uniform' or 'skewed'")
	seed := flag.Int64("seed", 0, "Random seed (0 = use current time)")

	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	fmt.Printf("Generating INAD data with:\n")
	fmt.Printf("  Output directory: %s\n", *outputDir)
	fmt.Printf("  Cases per year: %d\n", *caseCount)
	fmt.Printf("  Years: %d\n", *years)
	fmt.Printf("  Network: %d airlines x %d airports\n", *airlines, *airports)
	fmt.Printf("  Distribution: %s\n", *distribution)
	fmt.Printf("  Seed: %d\n", *seed)
	fmt.Println()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	g := newGenerator(*seed, *airlines, *airports, *distribution)
	if len(g.routes) == 0 {
		fmt.Fprintln(os.Stderr, "No routes generated; increase --airlines or --airports")
		os.Exit(1)
	}
	lastYear := time.Now().Year() - 1

	for year := lastYear - *years + 1; year <= lastYear; year++ {
		casesPath := filepath.Join(*outputDir, fmt.Sprintf("inad_%d.csv", year))
		volumesPath := filepath.Join(*outputDir, fmt.Sprintf("bazl_%d.csv", year))

		if err := writeCSV(casesPath, g.cases(year, *caseCount)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", casesPath, err)
			os.Exit(1)
		}
		if err := writeCSV(volumesPath, g.volumes(year)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", volumesPath, err)
			os.Exit(1)
		}
		fmt.Printf("  ✓ %d: %s, %s\n", year, filepath.Base(casesPath), filepath.Base(volumesPath))
	}

	// Round trip through the loader so broken output fails here, not in the server
	ds, err := records.LoadDir(*outputDir, records.LoadOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generated data does not load: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n✓ Generated %d cases covering %d period(s)\n", len(ds.Cases), len(ds.Periods()))
}

func newGenerator(seed int64, airlines, airports int, distribution string) *generator {
	g := &generator{rng: rand.New(rand.NewSource(seed)), distribution: distribution}
	for a := 0; a < airlines; a++ {
		airline := code(a, 2)
		// Each airline serves a random subset of the airports
		for p := 0; p < airports; p++ {
			if g.rng.Float64() < 0.4 {
				continue
			}
			g.routes = append(g.routes, route{
				airline: airline,
				origin:  code(p, 3),
				pax:     int64(2000 + g.rng.Intn(400000)),
			})
		}
	}
	return g
}

// cases returns the header and n case rows dated in year
func (g *generator) cases(year, n int) [][]string {
	rows := [][]string{{"airline", "origin", "date", "code"}}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := start.AddDate(1, 0, 0).Sub(start).Hours() / 24

	for i := 0; i < n; i++ {
		r := g.selectRoute()
		date := start.AddDate(0, 0, g.rng.Intn(int(days)))
		rows = append(rows, []string{
			r.airline,
			r.origin,
			date.Format("2006-01-02"),
			refusalCodes[g.rng.Intn(len(refusalCodes))],
		})
	}
	// Pin both ends of the year so every half-year is covered
	first, last := g.routes[0], g.routes[len(g.routes)-1]
	rows = append(rows,
		[]string{first.airline, first.origin, start.Format("2006-01-02"), "A1"},
		[]string{last.airline, last.origin, start.AddDate(1, 0, -1).Format("2006-01-02"), "A1"},
	)
	return rows
}

// volumes returns one monthly passenger row per route
func (g *generator) volumes(year int) [][]string {
	rows := [][]string{{"airline", "airport", "date", "pax"}}
	for _, r := range g.routes {
		for m := time.January; m <= time.December; m++ {
			monthly := r.pax/12 + int64(g.rng.Intn(int(r.pax/60)+1))
			rows = append(rows, []string{
				r.airline,
				r.origin,
				time.Date(year, m, 1, 0, 0, 0, 0, time.UTC).Format("2006-01"),
				strconv.FormatInt(monthly, 10),
			})
		}
	}
	return rows
}

// selectRoute selects a route based on the distribution pattern
func (g *generator) selectRoute() route {
	if g.distribution == "skewed" {
		// 80% of cases on 20% of routes
		hot := max(1, len(g.routes)/5)
		if g.rng.Float64() < 0.8 {
			return g.routes[g.rng.Intn(hot)]
		}
	}
	return g.routes[g.rng.Intn(len(g.routes))]
}

// code turns an index into an uppercase code of the given width: 0 -> AA, 27 -> BB
func code(i, width int) string {
	b := make([]byte, width)
	for w := width - 1; w >= 0; w-- {
		b[w] = byte('A' + i%26)
		i /= 26
	}
	return string(b)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
