// Package provider defines the contract an external data source must
// implement to feed series into the system.
package provider

import (
	"context"
	"errors"

	"github.com/aidengindin/ownhealth/internal/domain"
)

// Failure taxonomy for adapter fetches. Timeout, RateLimit and Transport
// are retryable; the rest are terminal.
var (
	ErrNotImplemented = errors.New("provider: metric not implemented")
	ErrTimeout        = errors.New("provider: request timed out")
	ErrAuthentication = errors.New("provider: credentials rejected")
	ErrAuthorization  = errors.New("provider: insufficient scope")
	ErrRateLimit      = errors.New("provider: rate limited")
	ErrTransport      = errors.New("provider: transport failure")
	ErrDecode         = errors.New("provider: malformed upstream payload")
)

// Retryable reports whether an ingest attempt may retry after err.
func Retryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTransport)
}

// Credentials is an opaque credential object handed to an adapter. The
// concrete shape is adapter-specific (password pair, OAuth token, API
// key). Credentials are never serialized outside the system; Redacted
// is the only form that may reach a log line.
type Credentials interface {
	Redacted() string
}

// DataProvider is implemented once per external data source.
type DataProvider interface {
	// ProviderID is the stable machine identifier, globally unique
	// across adapters. It keys stored credentials.
	ProviderID() string
	// ProviderName is the human-readable label.
	ProviderName() string
	// SupportedMetrics lists the kinds this adapter can produce.
	SupportedMetrics() []domain.MetricKind
	// DecodeCredentials rehydrates the adapter's credential shape from
	// a stored secret.
	DecodeCredentials(secret []byte) (Credentials, error)
	// Fetch pulls the series for one user and one kind. A kind outside
	// SupportedMetrics fails with ErrNotImplemented.
	Fetch(ctx context.Context, userID domain.UserID, kind domain.MetricKind, creds Credentials) (domain.SeriesData, error)
}

// Supports reports whether p advertises kind.
func Supports(p DataProvider, kind domain.MetricKind) bool {
	for _, k := range p.SupportedMetrics() {
		if k == kind {
			return true
		}
	}
	return false
}
