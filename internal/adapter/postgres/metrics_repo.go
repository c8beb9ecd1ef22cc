package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aidengindin/ownhealth/internal/domain"
)

// rowDecoder scans the (value, timestamp) pair of the current row into a
// kind's scalar type, applying the kind's decode rule.
type rowDecoder[V domain.Value] func(rows *sql.Rows) (V, time.Time, error)

// fetchSeries runs the shared read path: compose the parameterized
// query, stream rows, decode each into a typed point. Decoding is
// fail-fast: the first row outside the kind's constraints aborts the
// whole fetch. Transport and scan failures surface as
// domain.ErrStoreUnavailable.
func fetchSeries[V domain.Value](
	ctx context.Context,
	d *DB,
	kind domain.MetricKind,
	userID domain.UserID,
	r domain.TimeRange,
	mk func([]domain.DataPoint[V]) domain.Series[V],
	decode rowDecoder[V],
) (domain.Series[V], error) {
	base := "SELECT value, timestamp FROM " + kind.Table()
	query, args := composeQuery(base, userID, r)

	rows, err := d.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return mk(nil), storeErr(err)
	}
	defer func() { _ = rows.Close() }()

	points := make([]domain.DataPoint[V], 0)
	for rows.Next() {
		v, ts, err := decode(rows)
		if err != nil {
			var decodeErr *domain.DecodeRangeError
			if errors.As(err, &decodeErr) {
				return mk(nil), err
			}
			return mk(nil), storeErr(err)
		}
		points = append(points, domain.NewDataPoint(v, ts))
	}
	if err := rows.Err(); err != nil {
		return mk(nil), storeErr(err)
	}
	return mk(points), nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

func scanHeartRate(rows *sql.Rows) (uint16, time.Time, error) {
	var v int32
	var ts time.Time
	if err := rows.Scan(&v, &ts); err != nil {
		return 0, time.Time{}, err
	}
	hr, err := domain.DecodeHeartRate(v)
	if err != nil {
		return 0, time.Time{}, err
	}
	return hr, ts, nil
}

func scanFloat(rows *sql.Rows) (float64, time.Time, error) {
	var v float64
	var ts time.Time
	err := rows.Scan(&v, &ts)
	return v, ts, err
}

func scanInt32(rows *sql.Rows) (int32, time.Time, error) {
	var v int32
	var ts time.Time
	err := rows.Scan(&v, &ts)
	return v, ts, err
}

func scanSleepStage(rows *sql.Rows) (domain.SleepStage, time.Time, error) {
	var v string
	var ts time.Time
	if err := rows.Scan(&v, &ts); err != nil {
		return "", time.Time{}, err
	}
	stage, err := domain.ParseSleepStage(v)
	if err != nil {
		return "", time.Time{}, err
	}
	return stage, ts, nil
}

// FetchHeartRate returns the heart-rate series for a user.
func (d *DB) FetchHeartRate(ctx context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[uint16], error) {
	return fetchSeries(ctx, d, domain.MetricHeartRate, userID, r, domain.NewHeartRateSeries, scanHeartRate)
}

// FetchWeight returns the weight series for a user.
func (d *DB) FetchWeight(ctx context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[float64], error) {
	return fetchSeries(ctx, d, domain.MetricWeight, userID, r, domain.NewWeightSeries, scanFloat)
}

// FetchHydration returns the hydration series for a user.
func (d *DB) FetchHydration(ctx context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[float64], error) {
	return fetchSeries(ctx, d, domain.MetricHydration, userID, r, domain.NewHydrationSeries, scanFloat)
}

// FetchVO2Max returns the VO2Max series for a user.
func (d *DB) FetchVO2Max(ctx context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[float64], error) {
	return fetchSeries(ctx, d, domain.MetricVO2Max, userID, r, domain.NewVO2MaxSeries, scanFloat)
}

// FetchSleepDuration returns the sleep-duration series for a user.
func (d *DB) FetchSleepDuration(ctx context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[int32], error) {
	return fetchSeries(ctx, d, domain.MetricSleepDuration, userID, r, domain.NewSleepDurationSeries, scanInt32)
}

// FetchSleepStages returns the sleep-stage series for a user.
func (d *DB) FetchSleepStages(ctx context.Context, userID domain.UserID, r domain.TimeRange) (domain.Series[domain.SleepStage], error) {
	return fetchSeries(ctx, d, domain.MetricSleepStage, userID, r, domain.NewSleepStageSeries, scanSleepStage)
}

// insertPoints writes a batch of points into a kind's table. conv maps
// the scalar to its SQL representation.
func insertPoints[V domain.Value](ctx context.Context, d *DB, kind domain.MetricKind, userID domain.UserID, points []domain.DataPoint[V], conv func(V) any) error {
	stmt := "INSERT INTO " + kind.Table() + "(user_id, value, timestamp) VALUES($1, $2, $3);"
	for _, p := range points {
		if _, err := d.sql.ExecContext(ctx, stmt, userID.String(), conv(p.Value), p.Timestamp.UTC()); err != nil {
			return storeErr(err)
		}
	}
	return nil
}

// InsertHeartRate stores heart-rate points for a user.
func (d *DB) InsertHeartRate(ctx context.Context, userID domain.UserID, points []domain.DataPoint[uint16]) error {
	return insertPoints(ctx, d, domain.MetricHeartRate, userID, points, func(v uint16) any { return int32(v) })
}

// InsertWeight stores weight points for a user.
func (d *DB) InsertWeight(ctx context.Context, userID domain.UserID, points []domain.DataPoint[float64]) error {
	return insertPoints(ctx, d, domain.MetricWeight, userID, points, func(v float64) any { return v })
}

// InsertHydration stores hydration points for a user.
func (d *DB) InsertHydration(ctx context.Context, userID domain.UserID, points []domain.DataPoint[float64]) error {
	return insertPoints(ctx, d, domain.MetricHydration, userID, points, func(v float64) any { return v })
}

// InsertVO2Max stores VO2Max points for a user.
func (d *DB) InsertVO2Max(ctx context.Context, userID domain.UserID, points []domain.DataPoint[float64]) error {
	return insertPoints(ctx, d, domain.MetricVO2Max, userID, points, func(v float64) any { return v })
}

// InsertSleepDuration stores sleep-duration points for a user.
func (d *DB) InsertSleepDuration(ctx context.Context, userID domain.UserID, points []domain.DataPoint[int32]) error {
	return insertPoints(ctx, d, domain.MetricSleepDuration, userID, points, func(v int32) any { return v })
}

// InsertSleepStages stores sleep-stage points for a user.
func (d *DB) InsertSleepStages(ctx context.Context, userID domain.UserID, points []domain.DataPoint[domain.SleepStage]) error {
	return insertPoints(ctx, d, domain.MetricSleepStage, userID, points, func(v domain.SleepStage) any { return string(v) })
}

// Interface checks.
var (
	_ domain.MetricStore  = (*DB)(nil)
	_ domain.MetricWriter = (*DB)(nil)
)
