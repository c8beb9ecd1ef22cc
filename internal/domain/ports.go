package domain

import (
	"context"
	"time"
)

// MetricStore is the read port over the backing store: one typed fetch
// per kind, optionally bounded by an inclusive time range. Points come
// back ordered by timestamp ascending; a user with no rows is a success
// with an empty series.
type MetricStore interface {
	FetchHeartRate(ctx context.Context, userID UserID, r TimeRange) (Series[uint16], error)
	FetchWeight(ctx context.Context, userID UserID, r TimeRange) (Series[float64], error)
	FetchHydration(ctx context.Context, userID UserID, r TimeRange) (Series[float64], error)
	FetchVO2Max(ctx context.Context, userID UserID, r TimeRange) (Series[float64], error)
	FetchSleepDuration(ctx context.Context, userID UserID, r TimeRange) (Series[int32], error)
	FetchSleepStages(ctx context.Context, userID UserID, r TimeRange) (Series[SleepStage], error)
}

// MetricWriter is the write port used by the ingest path.
type MetricWriter interface {
	InsertHeartRate(ctx context.Context, userID UserID, points []DataPoint[uint16]) error
	InsertWeight(ctx context.Context, userID UserID, points []DataPoint[float64]) error
	InsertHydration(ctx context.Context, userID UserID, points []DataPoint[float64]) error
	InsertVO2Max(ctx context.Context, userID UserID, points []DataPoint[float64]) error
	InsertSleepDuration(ctx context.Context, userID UserID, points []DataPoint[int32]) error
	InsertSleepStages(ctx context.Context, userID UserID, points []DataPoint[SleepStage]) error
}

// CredentialRecord is one stored provider credential. Secret is the
// sealed blob; it is opaque everywhere outside the owning adapter.
type CredentialRecord struct {
	ProviderID string
	UserID     UserID
	Secret     []byte
	UpdatedAt  time.Time
}

// CredentialRepository is the port for provider-credential persistence,
// keyed by (provider_id, user_id). Get returns ErrCredentialsNotFound
// when no record exists.
type CredentialRepository interface {
	Put(ctx context.Context, providerID string, userID UserID, secret []byte) error
	Get(ctx context.Context, providerID string, userID UserID) ([]byte, error)
	Delete(ctx context.Context, providerID string, userID UserID) error
}
