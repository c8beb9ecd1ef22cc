// Package memory implements the store ports in memory for development
// and testing.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aidengindin/ownhealth/internal/domain"
)

// DB implements the metric store, metric writer, and credential
// repository ports in memory.
type DB struct {
	mu            sync.Mutex
	heartRate     map[domain.UserID][]domain.DataPoint[uint16]
	weight        map[domain.UserID][]domain.DataPoint[float64]
	hydration     map[domain.UserID][]domain.DataPoint[float64]
	vo2Max        map[domain.UserID][]domain.DataPoint[float64]
	sleepDuration map[domain.UserID][]domain.DataPoint[int32]
	sleepStage    map[domain.UserID][]domain.DataPoint[domain.SleepStage]
	creds         map[string][]byte
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		heartRate:     make(map[domain.UserID][]domain.DataPoint[uint16]),
		weight:        make(map[domain.UserID][]domain.DataPoint[float64]),
		hydration:     make(map[domain.UserID][]domain.DataPoint[float64]),
		vo2Max:        make(map[domain.UserID][]domain.DataPoint[float64]),
		sleepDuration: make(map[domain.UserID][]domain.DataPoint[int32]),
		sleepStage:    make(map[domain.UserID][]domain.DataPoint[domain.SleepStage]),
		creds:         make(map[string][]byte),
	}
}

// Ensure interfaces are met.
var (
	_ domain.MetricStore          = (*DB)(nil)
	_ domain.MetricWriter         = (*DB)(nil)
	_ domain.CredentialRepository = (*DB)(nil)
)

// fetch filters one user's points by the inclusive range and returns
// them sorted by timestamp ascending, ties in insertion order.
func fetch[V domain.Value](d *DB, m map[domain.UserID][]domain.DataPoint[V], userID domain.UserID, r domain.TimeRange) []domain.DataPoint[V] {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.DataPoint[V], 0)
	for _, p := range m[userID] {
		if r.Contains(p.Timestamp) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func insert[V domain.Value](d *DB, m map[domain.UserID][]domain.DataPoint[V], userID domain.UserID, points []domain.DataPoint[V]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m[userID] = append(m[userID], points...)
}

// FetchHeartRate returns the heart-rate series for a user.
func (d *DB) FetchHeartRate(_ context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[uint16], error) {
	return domain.NewHeartRateSeries(fetch(d, d.heartRate, userID, r)), nil
}

// FetchWeight returns the weight series for a user.
func (d *DB) FetchWeight(_ context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[float64], error) {
	return domain.NewWeightSeries(fetch(d, d.weight, userID, r)), nil
}

// FetchHydration returns the hydration series for a user.
func (d *DB) FetchHydration(_ context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[float64], error) {
	return domain.NewHydrationSeries(fetch(d, d.hydration, userID, r)), nil
}

// FetchVO2Max returns the VO2Max series for a user.
func (d *DB) FetchVO2Max(_ context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[float64], error) {
	return domain.NewVO2MaxSeries(fetch(d, d.vo2Max, userID, r)), nil
}

// FetchSleepDuration returns the sleep-duration series for a user.
func (d *DB) FetchSleepDuration(_ context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[int32], error) {
	return domain.NewSleepDurationSeries(fetch(d, d.sleepDuration, userID, r)), nil
}

// FetchSleepStages returns the sleep-stage series for a user.
func (d *DB) FetchSleepStages(_ context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[domain.SleepStage], error) {
	return domain.NewSleepStageSeries(fetch(d, d.sleepStage, userID, r)), nil
}

// InsertHeartRate stores heart-rate points for a user.
func (d *DB) InsertHeartRate(_ context.Context, userID domain.UserID, points []domain.DataPoint[uint16]) error {
	insert(d, d.heartRate, userID, points)
	return nil
}

// InsertWeight stores weight points for a user.
func (d *DB) InsertWeight(_ context.Context, userID domain.UserID, points []domain.DataPoint[float64]) error {
	insert(d, d.weight, userID, points)
	return nil
}

// InsertHydration stores hydration points for a user.
func (d *DB) InsertHydration(_ context.Context, userID domain.UserID, points []domain.DataPoint[float64]) error {
	insert(d, d.hydration, userID, points)
	return nil
}

// InsertVO2Max stores VO2Max points for a user.
func (d *DB) InsertVO2Max(_ context.Context, userID domain.UserID, points []domain.DataPoint[float64]) error {
	insert(d, d.vo2Max, userID, points)
	return nil
}

// InsertSleepDuration stores sleep-duration points for a user.
func (d *DB) InsertSleepDuration(_ context.Context, userID domain.UserID, points []domain.DataPoint[int32]) error {
	insert(d, d.sleepDuration, userID, points)
	return nil
}

// InsertSleepStages stores sleep-stage points for a user.
func (d *DB) InsertSleepStages(_ context.Context, userID domain.UserID, points []domain.DataPoint[domain.SleepStage]) error {
	insert(d, d.sleepStage, userID, points)
	return nil
}

func credKey(providerID string, userID domain.UserID) string {
	return providerID + "/" + userID.String()
}

// Put stores the secret for (providerID, userID).
func (d *DB) Put(_ context.Context, providerID string, userID domain.UserID, secret []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.creds[credKey(providerID, userID)] = append([]byte(nil), secret...)
	return nil
}

// Get returns the secret for (providerID, userID).
func (d *DB) Get(_ context.Context, providerID string, userID domain.UserID) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	secret, ok := d.creds[credKey(providerID, userID)]
	if !ok {
		return nil, domain.ErrCredentialsNotFound
	}
	return append([]byte(nil), secret...), nil
}

// Delete removes the secret for (providerID, userID).
func (d *DB) Delete(_ context.Context, providerID string, userID domain.UserID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.creds, credKey(providerID, userID))
	return nil
}
