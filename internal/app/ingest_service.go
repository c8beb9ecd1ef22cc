package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/aidengindin/ownhealth/internal/domain"
	"github.com/aidengindin/ownhealth/internal/provider"
)

const maxBackoff = 30 * time.Second

// IngestService pulls series from provider adapters and persists them.
// Retryable provider failures (timeout, rate limit, transport) are
// retried with capped exponential backoff; the rest are terminal for
// that kind.
type IngestService struct {
	writer    domain.MetricWriter
	creds     domain.CredentialRepository
	providers []provider.DataProvider

	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
}

// IngestOption customizes an IngestService.
type IngestOption func(*IngestService)

// WithRetryBudget sets how many retries a retryable failure gets.
func WithRetryBudget(n int) IngestOption {
	return func(s *IngestService) { s.maxRetries = n }
}

// WithBaseDelay sets the first backoff delay.
func WithBaseDelay(d time.Duration) IngestOption {
	return func(s *IngestService) { s.baseDelay = d }
}

// WithRateLimit bounds the request rate toward provider APIs.
func WithRateLimit(limit rate.Limit, burst int) IngestOption {
	return func(s *IngestService) { s.limiter = rate.NewLimiter(limit, burst) }
}

// NewIngestService creates an IngestService over the given providers.
func NewIngestService(writer domain.MetricWriter, creds domain.CredentialRepository, providers []provider.DataProvider, opts ...IngestOption) *IngestService {
	s := &IngestService{
		writer:     writer,
		creds:      creds,
		providers:  providers,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		maxRetries: 3,
		baseDelay:  time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SyncUser pulls every supported kind from every provider the user has
// credentials for. Providers without stored credentials are skipped.
// The first terminal failure aborts the sync.
func (s *IngestService) SyncUser(ctx context.Context, userID domain.UserID) error {
	for _, p := range s.providers {
		secret, err := s.creds.Get(ctx, p.ProviderID(), userID)
		if errors.Is(err, domain.ErrCredentialsNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		creds, err := p.DecodeCredentials(secret)
		if err != nil {
			return fmt.Errorf("%s: %w", p.ProviderID(), err)
		}

		for _, kind := range p.SupportedMetrics() {
			series, err := s.fetchWithRetry(ctx, p, userID, kind, creds)
			if err != nil {
				return fmt.Errorf("%s: fetch %s: %w", p.ProviderID(), kind, err)
			}
			if err := s.store(ctx, userID, series); err != nil {
				return fmt.Errorf("%s: store %s: %w", p.ProviderID(), kind, err)
			}
			log.Printf("ingested %d %s points for user %s from %s", series.Len(), kind, userID, p.ProviderID())
		}
	}
	return nil
}

func (s *IngestService) fetchWithRetry(ctx context.Context, p provider.DataProvider, userID domain.UserID, kind domain.MetricKind, creds provider.Credentials) (domain.SeriesData, error) {
	delay := s.baseDelay
	for attempt := 0; ; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		series, err := p.Fetch(ctx, userID, kind, creds)
		if err == nil {
			return series, nil
		}
		if !provider.Retryable(err) || attempt >= s.maxRetries {
			return nil, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		if delay *= 2; delay > maxBackoff {
			delay = maxBackoff
		}
	}
}

func (s *IngestService) store(ctx context.Context, userID domain.UserID, series domain.SeriesData) error {
	switch series.Kind() {
	case domain.MetricHeartRate:
		return insertAs(series, func(pts []domain.DataPoint[uint16]) error {
			return s.writer.InsertHeartRate(ctx, userID, pts)
		})
	case domain.MetricWeight:
		return insertAs(series, func(pts []domain.DataPoint[float64]) error {
			return s.writer.InsertWeight(ctx, userID, pts)
		})
	case domain.MetricHydration:
		return insertAs(series, func(pts []domain.DataPoint[float64]) error {
			return s.writer.InsertHydration(ctx, userID, pts)
		})
	case domain.MetricVO2Max:
		return insertAs(series, func(pts []domain.DataPoint[float64]) error {
			return s.writer.InsertVO2Max(ctx, userID, pts)
		})
	case domain.MetricSleepDuration:
		return insertAs(series, func(pts []domain.DataPoint[int32]) error {
			return s.writer.InsertSleepDuration(ctx, userID, pts)
		})
	case domain.MetricSleepStage:
		return insertAs(series, func(pts []domain.DataPoint[domain.SleepStage]) error {
			return s.writer.InsertSleepStages(ctx, userID, pts)
		})
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownMetric, series.Kind())
	}
}

func insertAs[V domain.Value](series domain.SeriesData, insert func([]domain.DataPoint[V]) error) error {
	s, ok := series.(domain.Series[V])
	if !ok {
		return fmt.Errorf("%s series carries an unexpected value type", series.Kind())
	}
	return insert(s.Points())
}
