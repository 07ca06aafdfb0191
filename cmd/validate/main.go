// Command validate checks a dataset before it is published: rejected CSV rows,
// operational years outside the timeline, authored categories that disagree
// with the consumption threshold, monotonic aggregates and consumption series,
// and the geometry every snapshot draws.
//
// Usage:
//
//	go run ./cmd/validate [-dataset dir] [-threshold 55]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/datacenter-atlas/internal/dataset"
	"github.com/couchcryptid/datacenter-atlas/internal/domain"
	"github.com/couchcryptid/datacenter-atlas/internal/observability"
	"github.com/couchcryptid/datacenter-atlas/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dataset", "", "dataset directory (default: embedded seed)")
	threshold := flag.Float64("threshold", 0, "high-consumption threshold in MWh (default: dataset baseline)")
	flag.Parse()

	os.Exit(run(*dir, *threshold))
}

func run(dir string, threshold float64) int {
	// Fixed clock so two builds of the same snapshot compare equal.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Data Center Dataset Validation ===")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fsys := dataset.Seed()
	if dir != "" {
		fsys = dataset.Dir(dir)
	}
	ds, err := dataset.Load(fsys, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	p := pipeline.New(pipeline.Options{HighConsumptionMWh: threshold}, nil, logger, observability.NewMetricsForTesting())
	if err := p.Load(context.Background(), ds); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load pipeline: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCSV(ds),
		validateYears(ds, p),
		validateCategories(p),
		validateAggregates(p),
		validateSeries(p),
		validateSnapshots(p),
	}

	fmt.Println()
	allPassed := true
	for _, ph := range phases {
		status := "\033[32mPASS\033[0m"
		if !ph.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(ph.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", ph.name, status)
	}

	fmt.Println()
	fmt.Printf("Dataset %s: %d entities, %d energy rows, %d water rows\n",
		ds.Version, len(ds.Entities), len(ds.Energy.Records), len(ds.Water.Records))

	for _, ph := range phases {
		if ph.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", ph.name)
		for i, e := range ph.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateCSV(ds *dataset.Dataset) *phase {
	p := &phase{name: "Consumption CSV rows"}
	for file, result := range map[string]domain.ParseResult{
		dataset.EnergyFile: ds.Energy,
		dataset.WaterFile:  ds.Water,
	} {
		for _, rej := range result.Rejected {
			p.errorf("%s line %d: %s", file, rej.Line, rej.Reason)
		}
		if len(result.Records) == 0 {
			p.errorf("%s: no usable rows", file)
		}
	}
	return p
}

func validateYears(ds *dataset.Dataset, pl *pipeline.Pipeline) *phase {
	p := &phase{name: "Operational years within timeline"}
	got, want := ds.YearRange(), pl.Years()
	if got.Min < want.Min {
		p.errorf("earliest data center opens in %d, before the timeline starts in %d", got.Min, want.Min)
	}
	if got.Max > want.Max {
		p.errorf("latest data center opens in %d, after the timeline ends in %d", got.Max, want.Max)
	}
	return p
}

func validateSeries(pl *pipeline.Pipeline) *phase {
	p := &phase{name: "Consumption series cumulative"}
	energy, water, err := pl.Series()
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	for name, series := range map[string][]domain.ConsumptionPoint{"energy": energy, "water": water} {
		for i, pt := range series {
			if pt.People < 0 {
				p.errorf("%s %d: negative population baseline %.2f", name, pt.Year, pt.People)
			}
			if i > 0 && pt.DC < series[i-1].DC {
				p.errorf("%s %d: cumulative %.2f below %.2f", name, pt.Year, pt.DC, series[i-1].DC)
			}
		}
	}
	return p
}

func validateCategories(pl *pipeline.Pipeline) *phase {
	p := &phase{name: "Categories match threshold"}
	info, err := pl.Info()
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	mismatches, err := pl.CategoryMismatches()
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	for _, dc := range mismatches {
		p.errorf("%d %q: %.1f MWh is authored %s (threshold %.1f MWh)",
			dc.ID, dc.Name, dc.EnergyConsumption, dc.Category, info.ThresholdMWh)
	}
	return p
}

func validateAggregates(pl *pipeline.Pipeline) *phase {
	p := &phase{name: "Aggregates monotonic and deterministic"}
	var prev domain.YearlyAggregate
	for i, year := range pl.Years().Years() {
		agg, err := pl.AggregatesForYear(year)
		if err != nil {
			p.errorf("year %d: %v", year, err)
			return p
		}
		again, _ := pl.AggregatesForYear(year)
		if diff := cmp.Diff(agg, again); diff != "" {
			p.errorf("year %d: repeated aggregation differs:\n%s", year, diff)
		}
		if i > 0 {
			if agg.Count < prev.Count {
				p.errorf("year %d: count %d below %d", year, agg.Count, prev.Count)
			}
			for _, m := range domain.Metrics {
				if agg.Cumulative[m] < prev.Cumulative[m] {
					p.errorf("year %d: cumulative %s %.2f below %.2f", year, m, agg.Cumulative[m], prev.Cumulative[m])
				}
			}
		}
		prev = agg
	}
	return p
}

func validateSnapshots(pl *pipeline.Pipeline) *phase {
	p := &phase{name: "Snapshot geometry"}
	ctx := context.Background()
	for _, year := range pl.Years().Years() {
		snap, err := pl.Snapshot(ctx, year)
		if err != nil {
			p.errorf("year %d: %v", year, err)
			return p
		}
		for _, m := range snap.Markers {
			if !m.Radar.Closed() {
				p.errorf("year %d marker %d: radar path is not closed", year, m.ID)
			}
			for _, metric := range domain.Metrics {
				if v := m.Normalized[metric]; v < 0 || v > 1 {
					p.errorf("year %d marker %d: %s normalised to %.2f", year, m.ID, metric, v)
				}
			}
		}
		for _, c := range []domain.Chart{snap.Energy, snap.Water} {
			if len(c.Points) > 0 && !c.Stacked.Closed() {
				p.errorf("year %d: %s stacked area is not closed", year, c.Metric)
			}
			if sum := c.DCPercent + c.PeoplePercent; sum < 99.999 || sum > 100.001 {
				p.errorf("year %d: %s split sums to %.3f%%", year, c.Metric, sum)
			}
		}
	}
	return p
}
