package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/aidengindin/ownhealth/internal/adapter/memory"
	"github.com/aidengindin/ownhealth/internal/app"
	"github.com/aidengindin/ownhealth/internal/domain"
	"github.com/aidengindin/ownhealth/internal/provider"
)

type fakeCreds struct{}

func (fakeCreds) Redacted() string { return "fake credentials" }

type fakeProvider struct {
	id        string
	supported []domain.MetricKind
	fetchFn   func(ctx context.Context, userID domain.UserID, kind domain.MetricKind, creds provider.Credentials) (domain.SeriesData, error)
	attempts  int
}

func (p *fakeProvider) ProviderID() string                    { return p.id }
func (p *fakeProvider) ProviderName() string                  { return "Fake" }
func (p *fakeProvider) SupportedMetrics() []domain.MetricKind { return p.supported }

func (p *fakeProvider) DecodeCredentials([]byte) (provider.Credentials, error) {
	return fakeCreds{}, nil
}

func (p *fakeProvider) Fetch(ctx context.Context, userID domain.UserID, kind domain.MetricKind, creds provider.Credentials) (domain.SeriesData, error) {
	p.attempts++
	return p.fetchFn(ctx, userID, kind, creds)
}

func newIngest(t *testing.T, db *memory.DB, p provider.DataProvider, opts ...app.IngestOption) *app.IngestService {
	t.Helper()
	opts = append([]app.IngestOption{
		app.WithBaseDelay(time.Millisecond),
		app.WithRateLimit(rate.Inf, 1),
	}, opts...)
	return app.NewIngestService(db, db, []provider.DataProvider{p}, opts...)
}

func heartRateSeries(ts time.Time) domain.SeriesData {
	return domain.NewHeartRateSeries([]domain.DataPoint[uint16]{domain.NewDataPoint(uint16(72), ts)})
}

func TestSyncUser_StoresFetchedSeries(t *testing.T) {
	db := memory.New()
	user := domain.NewUserID()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	p := &fakeProvider{
		id:        "fake_watch",
		supported: []domain.MetricKind{domain.MetricHeartRate},
		fetchFn: func(context.Context, domain.UserID, domain.MetricKind, provider.Credentials) (domain.SeriesData, error) {
			return heartRateSeries(ts), nil
		},
	}
	_ = db.Put(context.Background(), "fake_watch", user, []byte("tok"))

	if err := newIngest(t, db, p).SyncUser(context.Background(), user); err != nil {
		t.Fatalf("sync: %v", err)
	}
	series, err := db.FetchHeartRate(context.Background(), user, domain.TimeRange{})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if series.Len() != 1 || series.Points()[0].Value != 72 {
		t.Fatalf("unexpected stored points: %v", series.Points())
	}
}

func TestSyncUser_SkipsProviderWithoutCredentials(t *testing.T) {
	db := memory.New()
	p := &fakeProvider{
		id:        "fake_watch",
		supported: []domain.MetricKind{domain.MetricHeartRate},
		fetchFn: func(context.Context, domain.UserID, domain.MetricKind, provider.Credentials) (domain.SeriesData, error) {
			return heartRateSeries(time.Now()), nil
		},
	}
	if err := newIngest(t, db, p).SyncUser(context.Background(), domain.NewUserID()); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if p.attempts != 0 {
		t.Fatalf("provider fetched without credentials: %d attempts", p.attempts)
	}
}

func TestSyncUser_RetriesTransientFailures(t *testing.T) {
	db := memory.New()
	user := domain.NewUserID()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var calls int
	p := &fakeProvider{
		id:        "fake_watch",
		supported: []domain.MetricKind{domain.MetricHeartRate},
		fetchFn: func(context.Context, domain.UserID, domain.MetricKind, provider.Credentials) (domain.SeriesData, error) {
			if calls++; calls < 3 {
				return nil, provider.ErrTransport
			}
			return heartRateSeries(ts), nil
		},
	}
	_ = db.Put(context.Background(), "fake_watch", user, []byte("tok"))

	if err := newIngest(t, db, p, app.WithRetryBudget(5)).SyncUser(context.Background(), user); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if p.attempts != 3 {
		t.Fatalf("got %d attempts, want 3", p.attempts)
	}
}

func TestSyncUser_TerminalFailureNotRetried(t *testing.T) {
	db := memory.New()
	user := domain.NewUserID()

	p := &fakeProvider{
		id:        "fake_watch",
		supported: []domain.MetricKind{domain.MetricHeartRate},
		fetchFn: func(context.Context, domain.UserID, domain.MetricKind, provider.Credentials) (domain.SeriesData, error) {
			return nil, provider.ErrAuthentication
		},
	}
	_ = db.Put(context.Background(), "fake_watch", user, []byte("tok"))

	err := newIngest(t, db, p, app.WithRetryBudget(5)).SyncUser(context.Background(), user)
	if !errors.Is(err, provider.ErrAuthentication) {
		t.Fatalf("want ErrAuthentication, got %v", err)
	}
	if p.attempts != 1 {
		t.Fatalf("terminal failure retried: %d attempts", p.attempts)
	}
}

func TestSyncUser_RetryBudgetExhausted(t *testing.T) {
	db := memory.New()
	user := domain.NewUserID()

	p := &fakeProvider{
		id:        "fake_watch",
		supported: []domain.MetricKind{domain.MetricHeartRate},
		fetchFn: func(context.Context, domain.UserID, domain.MetricKind, provider.Credentials) (domain.SeriesData, error) {
			return nil, provider.ErrRateLimit
		},
	}
	_ = db.Put(context.Background(), "fake_watch", user, []byte("tok"))

	err := newIngest(t, db, p, app.WithRetryBudget(2)).SyncUser(context.Background(), user)
	if !errors.Is(err, provider.ErrRateLimit) {
		t.Fatalf("want ErrRateLimit, got %v", err)
	}
	if p.attempts != 3 {
		t.Fatalf("got %d attempts, want initial try plus 2 retries", p.attempts)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{provider.ErrTimeout, true},
		{provider.ErrRateLimit, true},
		{provider.ErrTransport, true},
		{provider.ErrAuthentication, false},
		{provider.ErrAuthorization, false},
		{provider.ErrNotImplemented, false},
		{provider.ErrDecode, false},
	}
	for _, tc := range tests {
		if got := provider.Retryable(tc.err); got != tc.want {
			t.Errorf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
