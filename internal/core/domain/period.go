package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrZeroTime          = errors.New("period start must be a valid datetime")
	ErrNotHourAligned    = errors.New("period start must be aligned to the hour")
	ErrNotQuarterAligned = errors.New("period start must be aligned to a 15-minute boundary")
)

// HourlyPeriod is the hour starting at Start, inclusive of the start and
// exclusive of the end.
type HourlyPeriod struct {
	start time.Time
}

func NewHourlyPeriod(start time.Time) (HourlyPeriod, error) {
	if start.IsZero() {
		return HourlyPeriod{}, ErrZeroTime
	}
	if start.Minute() != 0 || start.Second() != 0 || start.Nanosecond() != 0 {
		return HourlyPeriod{}, fmt.Errorf("%w: %s", ErrNotHourAligned, start)
	}
	return HourlyPeriod{start: start}, nil
}

// HourlyPeriodOf returns the period containing t.
func HourlyPeriodOf(t time.Time) HourlyPeriod {
	return HourlyPeriod{start: t.Truncate(time.Hour)}
}

func (p HourlyPeriod) Start() time.Time {
	return p.start
}

func (p HourlyPeriod) End() time.Time {
	return p.start.Add(time.Hour)
}

func (p HourlyPeriod) Contains(t time.Time) bool {
	return !t.Before(p.start) && t.Before(p.End())
}

func (p HourlyPeriod) Equal(o HourlyPeriod) bool {
	return p.start.Equal(o.start)
}

func (p HourlyPeriod) Before(o HourlyPeriod) bool {
	return p.start.Before(o.start)
}

// FifteenMinutePeriod is the quarter hour starting at Start.
type FifteenMinutePeriod struct {
	start time.Time
}

func NewFifteenMinutePeriod(start time.Time) (FifteenMinutePeriod, error) {
	if start.IsZero() {
		return FifteenMinutePeriod{}, ErrZeroTime
	}
	if start.Minute()%15 != 0 || start.Second() != 0 || start.Nanosecond() != 0 {
		return FifteenMinutePeriod{}, fmt.Errorf("%w: %s", ErrNotQuarterAligned, start)
	}
	return FifteenMinutePeriod{start: start}, nil
}

func (p FifteenMinutePeriod) Start() time.Time {
	return p.start
}

func (p FifteenMinutePeriod) End() time.Time {
	return p.start.Add(15 * time.Minute)
}

// Hour returns the hourly period containing this quarter hour.
func (p FifteenMinutePeriod) Hour() HourlyPeriod {
	return HourlyPeriodOf(p.start)
}

// HourlyPrice is the spot price for one hour.
type HourlyPrice struct {
	Period HourlyPeriod
	Price  EnergyPrice
}

// FifteenMinutePrice is the spot price for one quarter hour.
type FifteenMinutePrice struct {
	Period FifteenMinutePeriod
	Price  EnergyPrice
}

// HourlyProductionEnergy is the forecast photovoltaic energy for one hour.
type HourlyProductionEnergy struct {
	Period HourlyPeriod
	Energy EnergyKwh
}

// HourlyConsumptionEnergy is the estimated household consumption for one hour.
type HourlyConsumptionEnergy struct {
	Period HourlyPeriod
	Energy EnergyKwh
}

// HourlyWeather is the forecast outdoor conditions for one hour.
type HourlyWeather struct {
	Period      HourlyPeriod
	Temperature Celsius
	Humidity    float64
}

// TimeOfDay is a wall-clock time within a day.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day: %02d:%02d", hour, minute)
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// ParseTimeOfDay parses a "HH:MM" clock string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return NewTimeOfDay(hour, minute)
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// On returns the instant at this wall-clock time on the day of ref.
func (t TimeOfDay) On(ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour, t.Minute, 0, 0, ref.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// DailyWindow is a daily wall-clock interval [Start, End]. A window whose end
// is before its start wraps over midnight, e.g. 22:00-06:00.
type DailyWindow struct {
	Start TimeOfDay
	End   TimeOfDay
}

func ParseDailyWindow(start, end string) (DailyWindow, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return DailyWindow{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return DailyWindow{}, err
	}
	return DailyWindow{Start: s, End: e}, nil
}

// Contains reports whether the wall-clock time of t falls inside the window,
// handling midnight wrap by hour of day rather than calendar day. Both ends
// are inclusive at minute resolution; tariff windows flip on the boundary
// tick the scheduler fires at the end time, so the end minute belongs to
// the closing window.
func (w DailyWindow) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	start, end := w.Start.Minutes(), w.End.Minutes()
	if start <= end {
		return m >= start && m <= end
	}
	return m >= start || m <= end
}

func (w DailyWindow) String() string {
	return fmt.Sprintf("%s-%s", w.Start, w.End)
}
