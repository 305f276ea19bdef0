package forecast

import (
	"testing"
	"time"

	"tariffpilot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourAt(hour int) time.Time {
	return time.Date(2026, 1, 15, hour, 0, 0, 0, time.UTC)
}

func hourlyPrice(hour int, price float64) domain.HourlyPrice {
	return domain.HourlyPrice{
		Period: domain.HourlyPeriodOf(hourAt(hour)),
		Price:  domain.PlnPerMwhFloat(price),
	}
}

func quarterPrice(t *testing.T, hour, minute int, price float64) domain.FifteenMinutePrice {
	period, err := domain.NewFifteenMinutePeriod(time.Date(2026, 1, 15, hour, minute, 0, 0, time.UTC))
	require.NoError(t, err)
	return domain.FifteenMinutePrice{Period: period, Price: domain.PlnPerMwhFloat(price)}
}

func TestHourlyPricesFloorNegatives(t *testing.T) {
	view := NewPriceFromHourly([]domain.HourlyPrice{
		hourlyPrice(10, -50),
		hourlyPrice(11, 200),
	})
	items := view.Items()
	require.Len(t, items, 2)
	assert.True(t, items[0].Price.Amount.IsZero())
	assert.Equal(t, 0, items[1].Price.Cmp(domain.PlnPerMwhFloat(200)))
}

func TestQuarterHourlyMeanFloorsBeforeAveraging(t *testing.T) {
	view := NewPriceFromQuarterHourly([]domain.FifteenMinutePrice{
		quarterPrice(t, 10, 0, 100),
		quarterPrice(t, 10, 15, -50), // floored to 0, not -50
		quarterPrice(t, 10, 30, 200),
		quarterPrice(t, 10, 45, 100),
		quarterPrice(t, 11, 0, 300),
	})
	items := view.Items()
	require.Len(t, items, 2)

	assert.Equal(t, hourAt(10), items[0].Period.Start())
	assert.Equal(t, 0, items[0].Price.Cmp(domain.PlnPerMwhFloat(100)),
		"hour mean should be (100+0+200+100)/4")
	assert.Equal(t, 0, items[1].Price.Cmp(domain.PlnPerMwhFloat(300)),
		"a partial hour averages over the samples it has")
}

func TestFindMinHourPrefersChronologicallyFirstOnTies(t *testing.T) {
	view := NewPriceFromHourly([]domain.HourlyPrice{
		hourlyPrice(12, 300),
		hourlyPrice(10, 250),
		hourlyPrice(11, 250),
	})

	min := view.FindMinHour(hourAt(10), 6)
	require.NotNil(t, min)
	assert.Equal(t, hourAt(10), min.Period.Start())

	assert.Nil(t, view.FindMinHour(hourAt(14), 6), "no data in the window")
}

func TestFindPeakPeriodsThresholdInclusive(t *testing.T) {
	view := NewPriceFromHourly([]domain.HourlyPrice{
		hourlyPrice(16, 500),
		hourlyPrice(17, 750),
		hourlyPrice(18, 900),
		hourlyPrice(23, 1000), // outside the window
	})

	peaks := view.FindPeakPeriods(hourAt(16), 6, domain.PlnPerMwhFloat(750))
	require.Len(t, peaks, 2)
	assert.Equal(t, hourAt(17), peaks[0].Period.Start())
	assert.Equal(t, hourAt(18), peaks[1].Period.Start())
}

func TestSelectWindowBounds(t *testing.T) {
	view := NewPriceFromHourly([]domain.HourlyPrice{
		hourlyPrice(9, 100),
		hourlyPrice(10, 100),
		hourlyPrice(11, 100),
	})
	selected := view.Select(hourAt(10), hourAt(11))
	require.Len(t, selected, 1)
	assert.Equal(t, hourAt(10), selected[0].Period.Start())
}
