package adapthttp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	adapthttp "github.com/aidengindin/ownhealth/internal/adapter/http"
	"github.com/aidengindin/ownhealth/internal/adapter/memory"
	"github.com/aidengindin/ownhealth/internal/app"
	"github.com/aidengindin/ownhealth/internal/domain"
)

const testUserID = "550e8400-e29b-41d4-a716-446655440000"

func newHandler(t *testing.T, store domain.MetricStore) http.Handler {
	t.Helper()
	db := memory.New()
	ingest := app.NewIngestService(db, db, nil)
	return adapthttp.New(app.NewMetricsService(store), ingest).Handler()
}

func seededDB(t *testing.T) (*memory.DB, domain.UserID) {
	t.Helper()
	db := memory.New()
	user, err := domain.ParseUserID(testUserID)
	if err != nil {
		t.Fatal(err)
	}
	err = db.InsertHeartRate(context.Background(), user, []domain.DataPoint[uint16]{
		domain.NewDataPoint(uint16(72), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		domain.NewDataPoint(uint16(75), time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return db, user
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func bodyEqual(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var g, w any
	if err := json.Unmarshal(rec.Body.Bytes(), &g); err != nil {
		t.Fatalf("invalid body %s: %v", rec.Body.Bytes(), err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("invalid expected JSON: %v", err)
	}
	if !reflect.DeepEqual(g, w) {
		t.Fatalf("body: got %s, want %s", rec.Body.Bytes(), want)
	}
}

func TestGetHeartRate(t *testing.T) {
	db, _ := seededDB(t)
	rec := get(t, newHandler(t, db), "/metric/heart_rate?user_id="+testUserID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	bodyEqual(t, rec, `{"points":[{"value":72,"timestamp":1704067200},{"value":75,"timestamp":1704067260}],"unit":"bpm"}`)
}

func TestGetHeartRate_FromBound(t *testing.T) {
	db, _ := seededDB(t)
	rec := get(t, newHandler(t, db), "/metric/heart_rate?user_id="+testUserID+"&from=2024-01-01T00:00:30Z")

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	bodyEqual(t, rec, `{"points":[{"value":75,"timestamp":1704067260}],"unit":"bpm"}`)
}

func TestGetSleepStage(t *testing.T) {
	db := memory.New()
	user, _ := domain.ParseUserID(testUserID)
	_ = db.InsertSleepStages(context.Background(), user, []domain.DataPoint[domain.SleepStage]{
		domain.NewDataPoint(domain.SleepREM, time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)),
	})
	rec := get(t, newHandler(t, db), "/metric/sleep_stage?user_id="+testUserID)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	bodyEqual(t, rec, `{"points":[{"value":"rem","timestamp":1704164400}],"unit":""}`)
}

func TestGetUnknownMetric(t *testing.T) {
	rec := get(t, newHandler(t, memory.New()), "/metric/unknown_xyz?user_id="+testUserID)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rec.Code)
	}
}

func TestGetEmptyWeight(t *testing.T) {
	rec := get(t, newHandler(t, memory.New()), "/metric/weight?user_id="+testUserID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	bodyEqual(t, rec, `{"points":[],"unit":"kg"}`)
}

// failingStore reports the configured error on the heart-rate path.
type failingStore struct {
	domain.MetricStore
	err error
}

func (f *failingStore) FetchHeartRate(context.Context, domain.UserID, domain.TimeRange) (domain.Series[uint16], error) {
	return domain.NewHeartRateSeries(nil), f.err
}

func TestGetHeartRate_DecodeRange(t *testing.T) {
	store := &failingStore{
		MetricStore: memory.New(),
		err:         &domain.DecodeRangeError{Kind: domain.MetricHeartRate, Column: "value", Value: int32(70000)},
	}
	rec := get(t, newHandler(t, store), "/metric/heart_rate?user_id="+testUserID)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}
	// No partial series, and no internal detail in the body.
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if _, ok := body["points"]; ok {
		t.Fatal("partial series leaked into error response")
	}
}

func TestGetHeartRate_StoreUnavailable(t *testing.T) {
	store := &failingStore{MetricStore: memory.New(), err: domain.ErrStoreUnavailable}
	rec := get(t, newHandler(t, store), "/metric/heart_rate?user_id="+testUserID)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want 503", rec.Code)
	}
}

func TestGetMetric_BadRequests(t *testing.T) {
	h := newHandler(t, memory.New())
	tests := []struct {
		name   string
		target string
	}{
		{"missing user_id", "/metric/heart_rate"},
		{"bad user_id", "/metric/heart_rate?user_id=nope"},
		{"bad from", "/metric/heart_rate?user_id=" + testUserID + "&from=yesterday"},
		{"bad to", "/metric/heart_rate?user_id=" + testUserID + "&to=2024-13-01"},
		{"inverted range", "/metric/heart_rate?user_id=" + testUserID + "&from=2024-01-02T00:00:00Z&to=2024-01-01T00:00:00Z"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rec := get(t, h, tc.target); rec.Code != http.StatusBadRequest {
				t.Fatalf("status: got %d, want 400", rec.Code)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	rec := get(t, newHandler(t, memory.New()), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
}

func TestSync_BadUserID(t *testing.T) {
	h := newHandler(t, memory.New())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sync/not-a-uuid", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}
