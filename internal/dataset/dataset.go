// Package dataset loads the static data center seed: the entity file and the
// energy and water consumption CSVs.
package dataset

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/datacenter-atlas/internal/domain"
)

// File names inside a dataset directory.
const (
	EntitiesFile = "datacenters.yaml"
	EnergyFile   = "energy.csv"
	WaterFile    = "water.csv"
)

//go:embed data/datacenters.yaml data/energy.csv data/water.csv
var seed embed.FS

// Seed returns the embedded dataset.
func Seed() fs.FS {
	sub, err := fs.Sub(seed, "data")
	if err != nil {
		panic(err) // static path
	}
	return sub
}

// Dir returns a dataset stored on disk.
func Dir(path string) fs.FS {
	return os.DirFS(path)
}

// Baseline holds the authored heuristics the residential series is built from.
type Baseline struct {
	EnergyPerCapitaMWh    float64                   `yaml:"energy_per_capita_mwh" validate:"gt=0"`
	WaterPerCapitaGallons float64                   `yaml:"water_per_capita_gallons" validate:"gt=0"`
	HighConsumptionMWh    float64                   `yaml:"high_consumption_mwh" validate:"gt=0"`
	Population            []domain.PopulationAnchor `yaml:"population" validate:"required,min=1,dive"`
}

type entitiesFile struct {
	Version  int                 `yaml:"version" validate:"eq=1"`
	Region   string              `yaml:"region"`
	Baseline Baseline            `yaml:"baseline"`
	Entities []domain.DataCenter `yaml:"entities" validate:"required,min=1,dive"`
}

// Dataset is the immutable, fully parsed seed.
type Dataset struct {
	// Version is a content hash of the three files. It changes whenever any
	// input byte changes and keys memoised results.
	Version  string
	Region   string
	Baseline Baseline
	Entities []domain.DataCenter
	Energy   domain.ParseResult
	Water    domain.ParseResult
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates a dataset from fsys. Malformed CSV rows are not
// errors; they are logged and kept in Energy.Rejected and Water.Rejected.
func Load(fsys fs.FS, logger *slog.Logger) (*Dataset, error) {
	h := sha256.New()

	raw, err := readFile(fsys, EntitiesFile, h)
	if err != nil {
		return nil, err
	}
	var file entitiesFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", EntitiesFile, err)
	}
	if err := validate.Struct(file); err != nil {
		return nil, fmt.Errorf("validate %s: %w", EntitiesFile, err)
	}
	if err := checkUniqueIDs(file.Entities); err != nil {
		return nil, fmt.Errorf("validate %s: %w", EntitiesFile, err)
	}

	ds := &Dataset{
		Region:   file.Region,
		Baseline: file.Baseline,
		Entities: file.Entities,
	}

	for _, csvFile := range []struct {
		name   string
		schema domain.Schema
		dst    *domain.ParseResult
	}{
		{EnergyFile, domain.EnergySchema, &ds.Energy},
		{WaterFile, domain.WaterSchema, &ds.Water},
	} {
		data, err := readFile(fsys, csvFile.name, h)
		if err != nil {
			return nil, err
		}
		result, err := domain.ReadConsumptionCSV(bytes.NewReader(data), csvFile.schema)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", csvFile.name, err)
		}
		for _, rej := range result.Rejected {
			logger.Debug("csv row rejected", "file", csvFile.name, "line", rej.Line, "reason", rej.Reason)
		}
		if len(result.Rejected) > 0 {
			logger.Info("csv rows skipped", "file", csvFile.name, "rejected", len(result.Rejected), "accepted", len(result.Records))
		}
		*csvFile.dst = result
	}

	ds.Version = hex.EncodeToString(h.Sum(nil))[:12]
	return ds, nil
}

func readFile(fsys fs.FS, name string, h hash.Hash) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	h.Write([]byte(name))
	h.Write(data)
	return data, nil
}

// ErrDuplicateID is returned when two entities share an ID.
var ErrDuplicateID = errors.New("duplicate data center id")

func checkUniqueIDs(entities []domain.DataCenter) error {
	seen := make(map[int]bool, len(entities))
	for _, dc := range entities {
		if seen[dc.ID] {
			return fmt.Errorf("%w: %d", ErrDuplicateID, dc.ID)
		}
		seen[dc.ID] = true
	}
	return nil
}

// YearRange is the span of operational years covered by the entities.
func (d *Dataset) YearRange() domain.YearRange {
	if len(d.Entities) == 0 {
		return domain.DefaultYearRange
	}
	r := domain.YearRange{Min: d.Entities[0].YearOperational, Max: d.Entities[0].YearOperational}
	for _, dc := range d.Entities[1:] {
		r.Min = min(r.Min, dc.YearOperational)
		r.Max = max(r.Max, dc.YearOperational)
	}
	return r
}

// Population returns the interpolation model for the authored anchors.
func (d *Dataset) Population() domain.PopulationModel {
	return domain.NewPopulationModel(d.Baseline.Population...)
}
