package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Celsius is a temperature. Plain arithmetic, no invariant.
type Celsius float64

func (c Celsius) Add(o Celsius) Celsius {
	return c + o
}

func (c Celsius) Sub(o Celsius) Celsius {
	return c - o
}

// Round returns the temperature rounded to the nearest integer degree.
func (c Celsius) Round() Celsius {
	return Celsius(math.Round(float64(c)))
}

// EnergyKwh is a non-negative amount of energy. Subtraction saturates at zero
// so estimators can compose deficits without guarding every operation.
type EnergyKwh float64

func Kwh(value float64) EnergyKwh {
	if value < 0 {
		panic(fmt.Sprintf("negative energy: %f kWh", value))
	}
	return EnergyKwh(value)
}

func (e EnergyKwh) Add(o EnergyKwh) EnergyKwh {
	return e + o
}

// SubSat subtracts saturating at zero.
func (e EnergyKwh) SubSat(o EnergyKwh) EnergyKwh {
	if o >= e {
		return 0
	}
	return e - o
}

func (e EnergyKwh) MulFloat(factor float64) EnergyKwh {
	if factor < 0 {
		panic(fmt.Sprintf("negative energy factor: %f", factor))
	}
	return EnergyKwh(float64(e) * factor)
}

func (e EnergyKwh) DivFloat(divisor float64) EnergyKwh {
	if divisor <= 0 {
		panic(fmt.Sprintf("non-positive energy divisor: %f", divisor))
	}
	return EnergyKwh(float64(e) / divisor)
}

// Ratio returns e/o as a plain number.
func (e EnergyKwh) Ratio(o EnergyKwh) float64 {
	if o == 0 {
		panic("energy ratio to zero")
	}
	return float64(e) / float64(o)
}

// ToCurrent converts the energy to the constant current that would move it
// through the battery at the given voltage over the given number of hours.
func (e EnergyKwh) ToCurrent(voltage BatteryVoltage, hours float64) BatteryCurrent {
	if voltage <= 0 {
		panic(fmt.Sprintf("non-positive battery voltage: %f", float64(voltage)))
	}
	if hours <= 0 {
		panic(fmt.Sprintf("non-positive hours: %f", hours))
	}
	return BatteryCurrent(float64(e) * 1000 / (float64(voltage) * hours))
}

// BatterySoc is a state of charge in percent, always within [0, 100].
// Arithmetic saturates at the domain bounds.
type BatterySoc float64

func Soc(value float64) BatterySoc {
	if value < 0 || value > 100 {
		panic(fmt.Sprintf("SoC out of range: %f", value))
	}
	return BatterySoc(value)
}

// ClampSoc builds a SoC from an unconstrained value, clamping into [0, 100].
func ClampSoc(value float64) BatterySoc {
	return BatterySoc(math.Min(100, math.Max(0, value)))
}

func (s BatterySoc) AddSat(o BatterySoc) BatterySoc {
	return ClampSoc(float64(s) + float64(o))
}

func (s BatterySoc) SubSat(o BatterySoc) BatterySoc {
	return ClampSoc(float64(s) - float64(o))
}

func (s BatterySoc) Round() BatterySoc {
	return BatterySoc(math.Round(float64(s)))
}

// ToEnergy converts the SoC to energy given the battery capacity.
func (s BatterySoc) ToEnergy(capacity EnergyKwh) EnergyKwh {
	return capacity.MulFloat(float64(s) / 100)
}

// SocFromEnergy converts an energy amount to the SoC it represents for the
// given capacity, clamped into [0, 100].
func SocFromEnergy(energy, capacity EnergyKwh) BatterySoc {
	if capacity <= 0 {
		panic("non-positive battery capacity")
	}
	return ClampSoc(float64(energy) / float64(capacity) * 100)
}

// BatteryCurrent is a non-negative current in amperes.
type BatteryCurrent float64

func Amps(value float64) BatteryCurrent {
	if value < 0 {
		panic(fmt.Sprintf("negative current: %f A", value))
	}
	return BatteryCurrent(value)
}

func (c BatteryCurrent) Add(o BatteryCurrent) BatteryCurrent {
	return c + o
}

func (c BatteryCurrent) SubSat(o BatteryCurrent) BatteryCurrent {
	if o >= c {
		return 0
	}
	return c - o
}

// BatteryVoltage is a battery voltage in volts.
type BatteryVoltage float64

func Volts(value float64) BatteryVoltage {
	if value < 0 {
		panic(fmt.Sprintf("negative voltage: %f V", value))
	}
	return BatteryVoltage(value)
}

// EnergyPrice is a monetary price per unit of energy. Binary operations
// require matching currency and unit; a mismatch is a programming error and
// panics. Amounts use decimal arithmetic to keep aggregation deterministic.
type EnergyPrice struct {
	Amount   decimal.Decimal
	Currency string
	Unit     string
}

const (
	CurrencyPLN = "PLN"
	UnitMWh     = "MWh"
)

func PlnPerMwh(amount decimal.Decimal) EnergyPrice {
	return EnergyPrice{Amount: amount, Currency: CurrencyPLN, Unit: UnitMWh}
}

func PlnPerMwhFloat(amount float64) EnergyPrice {
	return PlnPerMwh(decimal.NewFromFloat(amount))
}

func (p EnergyPrice) mustMatch(o EnergyPrice) {
	if p.Currency != o.Currency || p.Unit != o.Unit {
		panic(fmt.Sprintf("price mismatch: %s/%s vs %s/%s", p.Currency, p.Unit, o.Currency, o.Unit))
	}
}

func (p EnergyPrice) Add(o EnergyPrice) EnergyPrice {
	p.mustMatch(o)
	return EnergyPrice{Amount: p.Amount.Add(o.Amount), Currency: p.Currency, Unit: p.Unit}
}

func (p EnergyPrice) Sub(o EnergyPrice) EnergyPrice {
	p.mustMatch(o)
	return EnergyPrice{Amount: p.Amount.Sub(o.Amount), Currency: p.Currency, Unit: p.Unit}
}

func (p EnergyPrice) Cmp(o EnergyPrice) int {
	p.mustMatch(o)
	return p.Amount.Cmp(o.Amount)
}

func (p EnergyPrice) LessThan(o EnergyPrice) bool {
	return p.Cmp(o) < 0
}

func (p EnergyPrice) GreaterThan(o EnergyPrice) bool {
	return p.Cmp(o) > 0
}

// NonNegative clamps negative prices to zero.
func (p EnergyPrice) NonNegative() EnergyPrice {
	if p.Amount.IsNegative() {
		return EnergyPrice{Amount: decimal.Zero, Currency: p.Currency, Unit: p.Unit}
	}
	return p
}

func (p EnergyPrice) String() string {
	return fmt.Sprintf("%s %s/%s", p.Amount.String(), p.Currency, p.Unit)
}
