// Package file writes baked year snapshots to a directory tree that a static
// front end can serve without the API.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/datacenter-atlas/internal/adapter/geojson"
	"github.com/couchcryptid/datacenter-atlas/internal/domain"
)

// Files written per year directory.
const (
	SnapshotFile = "snapshot.json"
	MarkersFile  = "datacenters.geojson"
	EnergySVG    = "energy.svg"
	WaterSVG     = "water.svg"
)

// Writer lays snapshots out as <dir>/<year>/{snapshot.json,datacenters.geojson,energy.svg,water.svg}.
// It implements pipeline.SnapshotLoader.
type Writer struct {
	dir    string
	frame  domain.ChartFrame
	logger *slog.Logger
}

// NewWriter creates a Writer rooted at dir. Charts are drawn in frame.
func NewWriter(dir string, frame domain.ChartFrame, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, frame: frame, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "file" }

// LoadBatch writes every snapshot. Files are replaced atomically so a reader
// never sees a half-written year.
func (w *Writer) LoadBatch(ctx context.Context, snapshots []domain.Snapshot) error {
	for i := range snapshots {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writeYear(&snapshots[i]); err != nil {
			return err
		}
	}
	w.logger.Info("snapshots written", "dir", w.dir, "count", len(snapshots))
	return nil
}

func (w *Writer) writeYear(snap *domain.Snapshot) error {
	dir := filepath.Join(w.dir, strconv.Itoa(snap.Year))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot %d: %w", snap.Year, err)
	}
	if err := writeAtomic(filepath.Join(dir, SnapshotFile), data); err != nil {
		return err
	}

	markers, err := geojson.FromMarkers(snap.Markers).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode markers %d: %w", snap.Year, err)
	}
	if err := writeAtomic(filepath.Join(dir, MarkersFile), markers); err != nil {
		return err
	}

	if err := writeAtomic(filepath.Join(dir, EnergySVG), ChartSVG(snap.Energy, w.frame, snap.Color)); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, WaterSVG), ChartSVG(snap.Water, w.frame, snap.Color))
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// Chart margins around the plotting frame.
const (
	marginLeft   = 60
	marginTop    = 10
	marginRight  = 20
	marginBottom = 40
)

// ChartSVG renders a stacked-area chart: the residential band stacked on the
// data center band, which is drawn in the year colour, with value axis ticks.
func ChartSVG(c domain.Chart, frame domain.ChartFrame, color string) []byte {
	width := frame.Width + marginLeft + marginRight
	height := frame.Height + marginTop + marginBottom
	if color == "" {
		color = domain.TimelinePalette[0]
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%g" height="%g" viewBox="0 0 %g %g">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `  <g transform="translate(%d,%d)">`+"\n", marginLeft, marginTop)
	if !c.Stacked.IsEmpty() {
		fmt.Fprintf(&b, `    <path class="people" d="%s" fill="#9ca3af" fill-opacity="0.8"/>`+"\n", c.Stacked)
	}
	if !c.Base.IsEmpty() {
		fmt.Fprintf(&b, `    <path class="dc" d="%s" fill="%s" fill-opacity="0.8"/>`+"\n", c.Base, html.EscapeString(color))
	}
	for _, t := range c.Ticks {
		fmt.Fprintf(&b, `    <text x="-6" y="%.2f" text-anchor="end" font-size="9">%s</text>`+"\n",
			t.Y, html.EscapeString(t.Label))
	}
	fmt.Fprintf(&b, `    <text x="%g" y="%g" text-anchor="middle" font-size="10">%s %.0f%% data centers / %.0f%% residents</text>`+"\n",
		frame.Width/2, frame.Height+28, html.EscapeString(string(c.Metric)), c.DCPercent, c.PeoplePercent)
	b.WriteString("  </g>\n</svg>\n")
	return []byte(b.String())
}
