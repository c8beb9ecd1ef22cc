package domain

import (
	"encoding/json"
	"time"
)

// Value is the closed union of scalar types a metric kind can carry.
type Value interface {
	uint16 | int32 | float64 | SleepStage
}

// DataPoint is a single measurement. Points are constructed by the store
// or by a provider adapter and never mutated afterwards.
type DataPoint[V Value] struct {
	Value     V
	Timestamp time.Time
}

// NewDataPoint builds a point with its timestamp normalized to UTC.
func NewDataPoint[V Value](value V, ts time.Time) DataPoint[V] {
	return DataPoint[V]{Value: value, Timestamp: ts.UTC()}
}

// Series is an ordered sequence of points of one kind with the kind's
// unit attached. Construct through the per-kind constructors so the
// scalar type always matches the kind.
type Series[V Value] struct {
	kind   MetricKind
	points []DataPoint[V]
}

func newSeries[V Value](kind MetricKind, points []DataPoint[V]) Series[V] {
	return Series[V]{kind: kind, points: points}
}

// NewHeartRateSeries builds a heart-rate series (bpm, unsigned 16-bit).
func NewHeartRateSeries(points []DataPoint[uint16]) Series[uint16] {
	return newSeries(MetricHeartRate, points)
}

// NewWeightSeries builds a weight series (kg).
func NewWeightSeries(points []DataPoint[float64]) Series[float64] {
	return newSeries(MetricWeight, points)
}

// NewHydrationSeries builds a hydration series (mL).
func NewHydrationSeries(points []DataPoint[float64]) Series[float64] {
	return newSeries(MetricHydration, points)
}

// NewVO2MaxSeries builds a VO2Max series (mL/kg/min).
func NewVO2MaxSeries(points []DataPoint[float64]) Series[float64] {
	return newSeries(MetricVO2Max, points)
}

// NewSleepDurationSeries builds a sleep-duration series (min).
func NewSleepDurationSeries(points []DataPoint[int32]) Series[int32] {
	return newSeries(MetricSleepDuration, points)
}

// NewSleepStageSeries builds a sleep-stage series (unitless).
func NewSleepStageSeries(points []DataPoint[SleepStage]) Series[SleepStage] {
	return newSeries(MetricSleepStage, points)
}

// Kind returns the metric kind of the series.
func (s Series[V]) Kind() MetricKind {
	return s.kind
}

// Unit returns the unit fixed by the series kind.
func (s Series[V]) Unit() Unit {
	return s.kind.Unit()
}

// Len returns the number of points.
func (s Series[V]) Len() int {
	return len(s.points)
}

// Points returns the points in store order.
func (s Series[V]) Points() []DataPoint[V] {
	return s.points
}

type pointJSON[V Value] struct {
	Value     V     `json:"value"`
	Timestamp int64 `json:"timestamp"`
}

type seriesJSON[V Value] struct {
	Points []pointJSON[V] `json:"points"`
	Unit   string         `json:"unit"`
}

// MarshalJSON encodes the series as {"points":[{"value","timestamp"}],
// "unit"} with timestamps as unix seconds (UTC) and the unit's display
// symbol. An empty series encodes an empty points array, never null.
func (s Series[V]) MarshalJSON() ([]byte, error) {
	pts := make([]pointJSON[V], 0, len(s.points))
	for _, p := range s.points {
		pts = append(pts, pointJSON[V]{Value: p.Value, Timestamp: p.Timestamp.Unix()})
	}
	return json.Marshal(seriesJSON[V]{Points: pts, Unit: s.Unit().Symbol()})
}

// SeriesData is the kind-erased view of a series, used where the
// concrete scalar type is fixed only at runtime by the requested metric
// name. Every Series[V] implements it.
type SeriesData interface {
	Kind() MetricKind
	Unit() Unit
	Len() int
	json.Marshaler
}

var (
	_ SeriesData = Series[uint16]{}
	_ SeriesData = Series[int32]{}
	_ SeriesData = Series[float64]{}
	_ SeriesData = Series[SleepStage]{}
)
