// Package domain models the Data Center Alley datasets and the pure
// computations the atlas draws from them.
//
// # Data Sources
//
// Two kinds of static input feed the package, both loaded once at startup by
// the dataset package:
//
//   - Entities: one [DataCenter] per facility with its operational year and
//     four raw magnitudes (energy MWh, water litres, noise dB, building area
//     sqft). Entities are never mutated after loading.
//   - Consumption CSVs: one file per family (energy, water), one row per year.
//
// # CSV Conventions
//
// Row layout (header line discarded):
//
//	year,region,per_capita,dc_per_day
//	2010,Loudoun,"10.4","6,030"
//
// Numeric fields may be quoted and carry thousands separators, which are
// stripped before parsing. A row with too few fields, a non-integer year, or
// a non-numeric, infinite or negative value is rejected with a reason and the
// parser moves on. See [ReadConsumptionCSV].
//
// The per-day data-center column is annualised with [DaysPerYear] and
// accumulated across years, so a consumption series never decreases. The
// per-capita column is multiplied by an interpolated population
// ([PopulationModel]) to give the residential baseline it is stacked on.
//
// # Aggregation
//
// For a selected year Y, the cumulative value of a metric is the sum over
// every entity with YearOperational <= Y. Means divide by the qualifying
// count and are 0 for an empty cohort. Years outside the configured range
// are clamped to the nearest bound. See [Aggregator].
//
// # Zero-Division Policies
//
// Every ratio in the package goes through [SafeDivide] with a named
// [ZeroDivisionPolicy]:
//
//	normalization, means      ZeroFallback       0
//	two-way percent split     EvenSplitFallback  50 / 50
//	linear scale, zero width  maps to RangeMin
//
// # Geometry
//
// Projected shapes are [Path] values: ordered SVG commands rendered with
// two-decimal coordinates. Area, radar and band shapes always end with a
// close command; only [Polyline] is left open. Map positions use Web
// Mercator with 512 px tiles ([MercatorWorld]).
//
// # Heuristics
//
// The population anchors ([DefaultPopulationAnchors]) and the high-consumption
// threshold ([DefaultHighConsumptionMWh]) are authored estimates with no
// derivation behind them. The dataset file can override both.
package domain
