// Package domain contains the core metric model: units, metric kinds,
// data points and series, and the ports the adapters implement.
package domain

import (
	"fmt"
	"math"
)

// Unit is the physical or conventional unit attached to a series.
type Unit string

// The closed set of units.
const (
	UnitUnitless Unit = "unitless"
	UnitBPM      Unit = "bpm"
	UnitKg       Unit = "kg"
	UnitMl       Unit = "ml"
	UnitMlKgMin  Unit = "ml_kg_min"
	UnitMin      Unit = "min"
	UnitScore100 Unit = "score_100"
)

var unitSymbols = map[Unit]string{
	UnitUnitless: "",
	UnitBPM:      "bpm",
	UnitKg:       "kg",
	UnitMl:       "mL",
	UnitMlKgMin:  "mL/kg/min",
	UnitMin:      "min",
	UnitScore100: "/100",
}

// Symbol returns the display symbol used on the wire. Unitless is the
// empty string.
func (u Unit) Symbol() string {
	return unitSymbols[u]
}

// ParseUnit resolves the identifier form of a unit.
func ParseUnit(s string) (Unit, error) {
	u := Unit(s)
	if _, ok := unitSymbols[u]; !ok {
		return "", fmt.Errorf("unknown unit %q", s)
	}
	return u, nil
}

// MetricKind identifies one of the supported measurement kinds. Its
// string form is the external snake_case name, which is also the name of
// the backing table.
type MetricKind string

// The closed set of metric kinds.
const (
	MetricHeartRate     MetricKind = "heart_rate"
	MetricWeight        MetricKind = "weight"
	MetricHydration     MetricKind = "hydration"
	MetricVO2Max        MetricKind = "vo2_max"
	MetricSleepDuration MetricKind = "sleep_duration"
	MetricSleepStage    MetricKind = "sleep_stage"
)

type kindInfo struct {
	name string
	unit Unit
}

var kinds = map[MetricKind]kindInfo{
	MetricHeartRate:     {name: "Heart rate", unit: UnitBPM},
	MetricWeight:        {name: "Weight", unit: UnitKg},
	MetricHydration:     {name: "Hydration", unit: UnitMl},
	MetricVO2Max:        {name: "VO2Max", unit: UnitMlKgMin},
	MetricSleepDuration: {name: "Sleep duration", unit: UnitMin},
	MetricSleepStage:    {name: "Sleep stage", unit: UnitUnitless},
}

// ParseMetricKind resolves an external metric name. Matching is exact;
// unknown names yield ErrUnknownMetric.
func ParseMetricKind(s string) (MetricKind, error) {
	k := MetricKind(s)
	if _, ok := kinds[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
	}
	return k, nil
}

// Name returns the human-readable name of the kind.
func (k MetricKind) Name() string {
	return kinds[k].name
}

// Unit returns the unit every series of this kind carries.
func (k MetricKind) Unit() Unit {
	return kinds[k].unit
}

// Table returns the name of the backing table for the kind, identical to
// the external snake_case name.
func (k MetricKind) Table() string {
	return string(k)
}

// AllMetricKinds lists the supported kinds in declaration order.
func AllMetricKinds() []MetricKind {
	return []MetricKind{
		MetricHeartRate,
		MetricWeight,
		MetricHydration,
		MetricVO2Max,
		MetricSleepDuration,
		MetricSleepStage,
	}
}

// SleepStage is one phase of a sleep cycle. The string form is both the
// wire encoding and the database encoding.
type SleepStage string

// The closed set of sleep stages.
const (
	SleepAwake SleepStage = "awake"
	SleepLight SleepStage = "light"
	SleepDeep  SleepStage = "deep"
	SleepREM   SleepStage = "rem"
)

// ParseSleepStage validates the textual encoding of a sleep stage. A
// value outside the four variants is a decode-range failure.
func ParseSleepStage(s string) (SleepStage, error) {
	switch st := SleepStage(s); st {
	case SleepAwake, SleepLight, SleepDeep, SleepREM:
		return st, nil
	}
	return "", &DecodeRangeError{Kind: MetricSleepStage, Column: "value", Value: s}
}

// DecodeHeartRate narrows a stored heart-rate value to its unsigned
// 16-bit scalar. The column is signed in the store, so the range check
// happens here.
func DecodeHeartRate(v int32) (uint16, error) {
	if v < 0 || v > math.MaxUint16 {
		return 0, &DecodeRangeError{Kind: MetricHeartRate, Column: "value", Value: v}
	}
	return uint16(v), nil
}
