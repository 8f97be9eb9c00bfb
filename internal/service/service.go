// Package service builds the dashboard views served by the API: it renders
// the warehouse queries, maps the stringly-typed statement rows onto typed
// view rows, and enriches the executive dashboard template with live
// aggregates.
package service

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"scctower/internal/domain"
)

// DashboardService answers the dashboard read endpoints from the warehouse.
// All queries go through rows, so repeated requests within the freshness
// window never touch the warehouse twice.
type DashboardService struct {
	rows   domain.CachedExecutor
	schema string
	ttl    time.Duration
	logger *slog.Logger

	// template is the baseline executive dashboard parsed from metrics.yaml.
	// Enrichment works on copies; the template itself is never mutated.
	template domain.ExecutiveDashboard
}

// NewDashboardService parses the embedded dashboard template and returns a
// service reading through rows against the given schema.
func NewDashboardService(rows domain.CachedExecutor, schema string, ttl time.Duration, logger *slog.Logger) (*DashboardService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var doc struct {
		ExecutiveDashboard domain.ExecutiveDashboard `yaml:"executive_dashboard"`
	}
	if err := yaml.Unmarshal(metricsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}
	return &DashboardService{
		rows:     rows,
		schema:   schema,
		ttl:      ttl,
		logger:   logger,
		template: doc.ExecutiveDashboard,
	}, nil
}

// The warehouse statement API returns every column as a string, and rows may
// carry SQL NULLs. The coercions below are deliberately tolerant: a missing,
// null, or malformed value becomes the zero value rather than failing the
// whole response.

func str(r domain.Row, key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func num(r domain.Row, key string) float64 {
	switch v := r[key].(type) {
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func whole(r domain.Row, key string) int {
	return int(num(r, key))
}
