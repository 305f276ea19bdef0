package domain

import (
	"fmt"
	"strings"
	"time"
)

// StorageMode is the inverter storage operating mode. It is a closed
// two-valued variant; the vendor string form only matters at the
// deserialization boundary.
type StorageMode int

const (
	StorageModeSelfUse StorageMode = iota
	StorageModeFeedInPriority
)

const (
	storageModeSelfUseString        = "Self Use"
	storageModeFeedInPriorityString = "Feed-in Priority"
)

func ParseStorageMode(s string) (StorageMode, error) {
	switch strings.TrimSpace(s) {
	case storageModeSelfUseString:
		return StorageModeSelfUse, nil
	case storageModeFeedInPriorityString:
		return StorageModeFeedInPriority, nil
	default:
		return StorageModeSelfUse, fmt.Errorf("unknown storage mode %q", s)
	}
}

func (m StorageMode) String() string {
	switch m {
	case StorageModeFeedInPriority:
		return storageModeFeedInPriorityString
	default:
		return storageModeSelfUseString
	}
}

// HVAC operating modes as reported by the heat pump climate entity.
const (
	HvacModeHeat = "heat"
	HvacModeCool = "cool"
	HvacModeOff  = "off"
)

// NumDischargeSlots is the number of discharge slots the inverter exposes.
const NumDischargeSlots = 2

// DischargeSlotState is the currently configured state of one inverter
// discharge slot.
type DischargeSlotState struct {
	Enabled bool
	Window  DailyWindow
	Current BatteryCurrent
}

// BatteryDischargeSlot is a planned discharge: drive the battery into the
// grid at Current during [Start, End).
type BatteryDischargeSlot struct {
	Start   time.Time
	End     time.Time
	Current BatteryCurrent
}

// State is the solar-side controller snapshot, built atomically at the top
// of each control tick and never mutated. All fields except the forecast
// series are mandatory; an absent forecast series behaves as zero energy or
// absent price for the affected hours.
type State struct {
	BatterySoc          BatterySoc
	BatteryReserveSoc   BatterySoc
	TempIndoor          Celsius
	TempOutdoor         Celsius
	AwayMode            bool
	EcoMode             bool
	StorageMode         StorageMode
	MaxChargeCurrent    BatteryCurrent
	MaxDischargeCurrent BatteryCurrent
	DischargeSlots      [NumDischargeSlots]DischargeSlotState
	HeatingMode         string
	CurrentPrice        EnergyPrice

	ProductionToday    []HourlyProductionEnergy
	ProductionTomorrow []HourlyProductionEnergy
	ProductionDay3     []HourlyProductionEnergy
	Weather            []HourlyWeather
	Prices             []HourlyPrice
}

// HvacState is the heat-pump-side controller snapshot.
type HvacState struct {
	EcoMode               bool
	DhwActual             Celsius
	DhwTarget             Celsius
	IndoorActual          Celsius
	HeatingTarget         Celsius
	HeatingMode           string
	CoolingTarget         Celsius
	CurveHigh             Celsius
	CurveLow              Celsius
	TemperatureAdjustment Celsius
}
