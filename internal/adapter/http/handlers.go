package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/datacenter-atlas/internal/adapter/geojson"
	"github.com/couchcryptid/datacenter-atlas/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type normalizeResponse struct {
	Metric     domain.Metric `json:"metric"`
	Value      float64       `json:"value"`
	Normalized float64       `json:"normalized"`
}

type pathResponse struct {
	D      domain.Path `json:"d"`
	Closed bool        `json:"closed"`
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	info, err := s.atlas.Info()
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, info)
}

func (s *Server) handleAggregates(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(chi.URLParam(r, "year"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	agg, err := s.atlas.AggregatesForYear(year)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, agg)
}

func (s *Server) handleAggregateSeries(w http.ResponseWriter, r *http.Request) {
	series, err := s.atlas.AggregateSeries()
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, series)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(chi.URLParam(r, "year"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	snap, err := s.atlas.Snapshot(r.Context(), year)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	metric, err := domain.ParseMetric(chi.URLParam(r, "metric"))
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	raw, err := finiteParam(r.URL.Query().Get("value"))
	if err != nil || raw < 0 {
		s.renderError(w, r, badRequest("value must be a non-negative number"))
		return
	}
	norm, err := s.atlas.Normalize(metric, raw)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, normalizeResponse{Metric: metric, Value: raw, Normalized: norm})
}

// handleDataCenters returns the entities operational by ?year= (default: all
// years) as a GeoJSON feature collection.
func (s *Server) handleDataCenters(w http.ResponseWriter, r *http.Request) {
	year := domain.DefaultYearRange.Max
	if q := r.URL.Query().Get("year"); q != "" {
		y, err := yearParam(q)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		year = y
	} else if info, err := s.atlas.Info(); err == nil {
		year = info.Years.Max
	}
	entities, err := s.atlas.DataCenters(year)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, geojson.FromDataCenters(entities))
}

type timelineResponse struct {
	Year       int     `json:"year"`
	Position   float64 `json:"position"`
	Highlights []int   `json:"highlights"`
}

// handleTimeline maps a slider drag (?x=&width=) to the year it selects.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	info, err := s.atlas.Info()
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	q := r.URL.Query()
	x, errX := finiteParam(q.Get("x"))
	width, errW := finiteParam(q.Get("width"))
	if errX != nil || errW != nil {
		s.renderError(w, r, badRequest("x and width must be finite numbers"))
		return
	}
	year := domain.YearAtPosition(x, width, info.Years)
	render.JSON(w, r, timelineResponse{
		Year:       year,
		Position:   domain.PositionOfYear(year, info.Years),
		Highlights: domain.HighlightYears(year, info.Years),
	})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	var req domain.PathRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.renderError(w, r, badRequest("invalid JSON body"))
		return
	}
	if err := validate.Struct(req); err != nil {
		s.renderError(w, r, err)
		return
	}
	path, err := s.atlas.ProjectPath(req)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, pathResponse{D: path, Closed: path.Closed()})
}

// finiteParam parses a query value, rejecting NaN and infinities.
func finiteParam(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	return v, nil
}

func yearParam(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, badRequest("year must be an integer")
	}
	return year, nil
}
