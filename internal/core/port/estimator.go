package port

import (
	"time"

	"tariffpilot/internal/core/domain"
)

// Estimators compute the next set-point from a snapshot. A nil result means
// "no change": the computed target equals the currently observed value and
// no write should be issued.

type StorageModeEstimator interface {
	Estimate(state domain.State, now time.Time) *domain.StorageMode
}

type BatteryReserveSocEstimator interface {
	Estimate(state domain.State, now time.Time) *domain.BatterySoc
}

// BatteryDischargeSlotEstimator plans discharge slots over the window
// [windowStart, windowStart+windowHours). An empty result means no slot is
// profitable and feasible.
type BatteryDischargeSlotEstimator interface {
	Estimate(state domain.State, windowStart time.Time, windowHours int) []domain.BatteryDischargeSlot
}

type BatteryMaxCurrentEstimator interface {
	EstimateChargeCurrent(state domain.State, now time.Time) *domain.BatteryCurrent
	EstimateDischargeCurrent(state domain.State, now time.Time) *domain.BatteryCurrent
}

type DhwEstimator interface {
	EstimateTargetTemperature(state domain.HvacState, now time.Time) *domain.Celsius
	EstimateDeltaTemperature(state domain.HvacState) domain.Celsius
}

type HeatingEstimator interface {
	EstimateTargetTemperature(state domain.HvacState, now time.Time) *domain.Celsius
	EstimateCurveHigh(state domain.HvacState) *domain.Celsius
	EstimateCurveLow(state domain.HvacState) *domain.Celsius
}

type CoolingEstimator interface {
	EstimateTargetTemperature(state domain.HvacState, now time.Time) *domain.Celsius
}
