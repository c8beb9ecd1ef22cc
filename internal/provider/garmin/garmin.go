// Package garmin implements the provider contract for Garmin Connect.
package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/aidengindin/ownhealth/internal/domain"
	"github.com/aidengindin/ownhealth/internal/provider"
)

const defaultBaseURL = "https://apis.garmin.com"

// Credentials holds the OAuth2 token issued by Garmin for one user.
type Credentials struct {
	Token *oauth2.Token
}

// Redacted returns a loggable description without the token material.
func (c *Credentials) Redacted() string {
	return "garmin_connect: oauth2 token (redacted)"
}

// Provider pulls wellness data from the Garmin Connect REST surface.
type Provider struct {
	baseURL string
	client  *http.Client
}

// Option customizes a Provider.
type Option func(*Provider)

// WithBaseURL points the provider at a different API root, used in tests.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// WithHTTPClient sets the base HTTP client the OAuth2 transport wraps.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// New creates a Garmin Connect provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ProviderID returns the stable machine identifier.
func (p *Provider) ProviderID() string { return "garmin_connect" }

// ProviderName returns the human-readable label.
func (p *Provider) ProviderName() string { return "Garmin Connect" }

// SupportedMetrics lists the kinds this adapter can produce.
func (p *Provider) SupportedMetrics() []domain.MetricKind {
	return []domain.MetricKind{domain.MetricHeartRate, domain.MetricWeight}
}

// DecodeCredentials rehydrates a stored secret into OAuth2 credentials.
func (p *Provider) DecodeCredentials(secret []byte) (provider.Credentials, error) {
	var tok oauth2.Token
	if err := json.Unmarshal(secret, &tok); err != nil {
		return nil, fmt.Errorf("%w: credential blob: %v", provider.ErrDecode, err)
	}
	return &Credentials{Token: &tok}, nil
}

// Fetch pulls the series for one user and one kind.
func (p *Provider) Fetch(ctx context.Context, userID domain.UserID, kind domain.MetricKind, creds provider.Credentials) (domain.SeriesData, error) {
	if !provider.Supports(p, kind) {
		return nil, fmt.Errorf("%w: %s does not support %s", provider.ErrNotImplemented, p.ProviderID(), kind)
	}
	gc, ok := creds.(*Credentials)
	if !ok || gc.Token == nil {
		return nil, fmt.Errorf("%w: not garmin_connect credentials", provider.ErrAuthentication)
	}

	switch kind {
	case domain.MetricHeartRate:
		return p.fetchHeartRate(ctx, userID, gc)
	case domain.MetricWeight:
		return p.fetchWeight(ctx, userID, gc)
	default:
		return nil, fmt.Errorf("%w: %s", provider.ErrNotImplemented, kind)
	}
}

type heartRateSample struct {
	HeartRate        int32 `json:"heartRate"`
	TimestampSeconds int64 `json:"timestampSeconds"`
}

type heartRatePayload struct {
	Samples []heartRateSample `json:"samples"`
}

func (p *Provider) fetchHeartRate(ctx context.Context, userID domain.UserID, creds *Credentials) (domain.SeriesData, error) {
	var payload heartRatePayload
	if err := p.get(ctx, creds, "/wellness-api/rest/heartRate", userID, &payload); err != nil {
		return nil, err
	}
	points := make([]domain.DataPoint[uint16], 0, len(payload.Samples))
	for _, s := range payload.Samples {
		v, err := domain.DecodeHeartRate(s.HeartRate)
		if err != nil {
			return nil, fmt.Errorf("%w: heart rate %d", provider.ErrDecode, s.HeartRate)
		}
		points = append(points, domain.NewDataPoint(v, time.Unix(s.TimestampSeconds, 0)))
	}
	return domain.NewHeartRateSeries(points), nil
}

type weightSample struct {
	WeightInGrams    float64 `json:"weightInGrams"`
	TimestampSeconds int64   `json:"timestampSeconds"`
}

type weightPayload struct {
	Samples []weightSample `json:"samples"`
}

func (p *Provider) fetchWeight(ctx context.Context, userID domain.UserID, creds *Credentials) (domain.SeriesData, error) {
	var payload weightPayload
	if err := p.get(ctx, creds, "/wellness-api/rest/weight", userID, &payload); err != nil {
		return nil, err
	}
	points := make([]domain.DataPoint[float64], 0, len(payload.Samples))
	for _, s := range payload.Samples {
		// Upstream reports grams; the domain unit is kg.
		points = append(points, domain.NewDataPoint(s.WeightInGrams/1000, time.Unix(s.TimestampSeconds, 0)))
	}
	return domain.NewWeightSeries(points), nil
}

func (p *Provider) get(ctx context.Context, creds *Credentials, path string, userID domain.UserID, dst any) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(creds.Token))

	u := fmt.Sprintf("%s%s?userId=%s", p.baseURL, path, url.QueryEscape(userID.String()))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", provider.ErrTransport, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return provider.ErrAuthentication
	case resp.StatusCode == http.StatusForbidden:
		return provider.ErrAuthorization
	case resp.StatusCode == http.StatusTooManyRequests:
		return provider.ErrRateLimit
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: unexpected status %d", provider.ErrTransport, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", provider.ErrDecode, err)
	}
	return nil
}

func classifyTransport(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: token refresh rejected", provider.ErrAuthentication)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", provider.ErrTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", provider.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", provider.ErrTransport, err)
}
