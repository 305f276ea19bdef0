package forecast

import (
	"testing"
	"time"

	"tariffpilot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pvHour(start time.Time, energy float64) domain.HourlyProductionEnergy {
	return domain.HourlyProductionEnergy{
		Period: domain.HourlyPeriodOf(start),
		Energy: domain.Kwh(energy),
	}
}

func TestProductionMergesDaysChronologically(t *testing.T) {
	today := []domain.HourlyProductionEnergy{
		pvHour(hourAt(12), 2.5),
		pvHour(hourAt(10), 1.0),
	}
	tomorrow := []domain.HourlyProductionEnergy{
		pvHour(hourAt(10).AddDate(0, 0, 1), 3.0),
	}

	view := NewProduction(today, tomorrow)
	items := view.Hourly(hourAt(0), 48)
	require.Len(t, items, 3)
	assert.Equal(t, hourAt(10), items[0].Period.Start())
	assert.Equal(t, hourAt(12), items[1].Period.Start())
	assert.Equal(t, hourAt(10).AddDate(0, 0, 1), items[2].Period.Start())
}

func TestProductionWindowSum(t *testing.T) {
	view := NewProduction([]domain.HourlyProductionEnergy{
		pvHour(hourAt(9), 1.0),
		pvHour(hourAt(10), 2.0),
		pvHour(hourAt(11), 3.0),
		pvHour(hourAt(12), 4.0),
	})

	// [10:00, 12:00) picks hours 10 and 11 only
	assert.InDelta(t, 5.0, float64(view.EstimateEnergyKwh(hourAt(10), 2)), 1e-9)
	assert.Len(t, view.Hourly(hourAt(10), 2), 2)

	// absent hours count as zero
	assert.EqualValues(t, 0, view.EstimateEnergyKwh(hourAt(20), 4))
}
