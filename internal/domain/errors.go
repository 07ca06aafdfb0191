package domain

import "errors"

var (
	ErrUnknownMetric      = errors.New("unknown metric")
	ErrUnknownPathKind    = errors.New("unknown path kind")
	ErrInvalidPathRequest = errors.New("invalid path request")
)
