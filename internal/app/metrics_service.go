// Package app holds the application services over the domain ports.
package app

import (
	"context"

	"github.com/aidengindin/ownhealth/internal/domain"
)

// MetricsService resolves a metric name to its typed fetch path and
// returns the kind-erased series for serialization.
type MetricsService struct {
	store domain.MetricStore
}

// NewMetricsService creates a MetricsService backed by the given store.
func NewMetricsService(store domain.MetricStore) *MetricsService {
	return &MetricsService{store: store}
}

// FetchMetric fetches the series for one user and one metric name,
// optionally bounded by an inclusive time range. Unknown names fail
// with domain.ErrUnknownMetric, inverted ranges with
// domain.ErrInvalidRange.
func (s *MetricsService) FetchMetric(ctx context.Context, name string, userID domain.UserID, r domain.TimeRange) (domain.SeriesData, error) {
	kind, err := domain.ParseMetricKind(name)
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	switch kind {
	case domain.MetricHeartRate:
		return s.store.FetchHeartRate(ctx, userID, r)
	case domain.MetricWeight:
		return s.store.FetchWeight(ctx, userID, r)
	case domain.MetricHydration:
		return s.store.FetchHydration(ctx, userID, r)
	case domain.MetricVO2Max:
		return s.store.FetchVO2Max(ctx, userID, r)
	case domain.MetricSleepDuration:
		return s.store.FetchSleepDuration(ctx, userID, r)
	case domain.MetricSleepStage:
		return s.store.FetchSleepStages(ctx, userID, r)
	default:
		return nil, domain.ErrUnknownMetric
	}
}
