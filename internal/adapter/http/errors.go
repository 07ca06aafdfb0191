package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/datacenter-atlas/internal/domain"
	"github.com/couchcryptid/datacenter-atlas/internal/pipeline"
)

// problem is an RFC 7807 style error body.
type problem struct {
	Status    int    `json:"status"`
	Title     string `json:"title"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Render implements render.Renderer.
func (p *problem) Render(_ http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

type badRequestError string

func (e badRequestError) Error() string { return string(e) }

func badRequest(msg string) error { return badRequestError(msg) }

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	p := &problem{
		Status:    http.StatusInternalServerError,
		Title:     http.StatusText(http.StatusInternalServerError),
		Detail:    err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	}

	var bre badRequestError
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, pipeline.ErrNotReady):
		p.Status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUnknownMetric),
		errors.Is(err, domain.ErrUnknownPathKind),
		errors.Is(err, domain.ErrInvalidPathRequest),
		errors.As(err, &bre),
		errors.As(err, &verr):
		p.Status = http.StatusBadRequest
	default:
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", p.RequestID,
			"error", err,
		)
	}
	p.Title = http.StatusText(p.Status)

	if rerr := render.Render(w, r, p); rerr != nil {
		s.logger.Error("render error response", "error", rerr)
	}
}
