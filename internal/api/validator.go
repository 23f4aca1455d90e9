package api

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tejusbharadwaj/agrotelemetry/internal/config"
	"github.com/tejusbharadwaj/agrotelemetry/internal/models"
	"github.com/tejusbharadwaj/agrotelemetry/internal/normalize"
)

// RequestValidator turns query strings into validated query parameters.
type RequestValidator struct {
	defaultLimit       int
	maxLimit           int
	defaultSeriesLimit int
	maxSeriesLimit     int
}

func NewRequestValidator(cfg config.QueryConfig) *RequestValidator {
	return &RequestValidator{
		defaultLimit:       orDefault(cfg.DefaultLimit, 200),
		maxLimit:           orDefault(cfg.MaxLimit, 2000),
		defaultSeriesLimit: orDefault(cfg.DefaultSeriesLimit, 5000),
		maxSeriesLimit:     orDefault(cfg.MaxSeriesLimit, 20000),
	}
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// SeriesParams are the validated parameters of a series request.
type SeriesParams struct {
	VariablePath string
	Start        *time.Time
	End          *time.Time
	Limit        int
}

// DataFilter validates the parameters of GET /data.
func (v *RequestValidator) DataFilter(q url.Values) (models.ObservationFilter, error) {
	start, end, err := timeRange(q)
	if err != nil {
		return models.ObservationFilter{}, err
	}
	limit, err := parseLimit(q.Get("limit"), v.defaultLimit, v.maxLimit)
	if err != nil {
		return models.ObservationFilter{}, err
	}

	return models.ObservationFilter{
		DeviceEUI:    q.Get("eui"),
		VariablePath: q.Get("variable_path"),
		VariableName: q.Get("variable_name"),
		Start:        start,
		End:          end,
		Limit:        limit,
	}, nil
}

// Series validates the parameters of GET /devices/{id}/series.
func (v *RequestValidator) Series(q url.Values) (SeriesParams, error) {
	path := q.Get("variable_path")
	if path == "" {
		return SeriesParams{}, fmt.Errorf("variable_path is required")
	}
	start, end, err := timeRange(q)
	if err != nil {
		return SeriesParams{}, err
	}
	limit, err := parseLimit(q.Get("limit"), v.defaultSeriesLimit, v.maxSeriesLimit)
	if err != nil {
		return SeriesParams{}, err
	}
	return SeriesParams{VariablePath: path, Start: start, End: end, Limit: limit}, nil
}

func parseLimit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > max {
		return 0, fmt.Errorf("limit must be an integer between 1 and %d", max)
	}
	return limit, nil
}

func timeRange(q url.Values) (start, end *time.Time, err error) {
	if start, err = parseTimeParam(q, "start"); err != nil {
		return nil, nil, err
	}
	if end, err = parseTimeParam(q, "end"); err != nil {
		return nil, nil, err
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, fmt.Errorf("start time must be before end time")
	}
	return start, end, nil
}

func parseTimeParam(q url.Values, name string) (*time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	t, ok := normalize.ParseTime(raw)
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q is not an ISO-8601 timestamp", name, raw)
	}
	return &t, nil
}
