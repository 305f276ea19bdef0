package forecast

import (
	"sort"
	"time"

	"tariffpilot/internal/core/domain"
)

// Production is an hourly photovoltaic energy forecast over up to three
// days. Hours absent from the feed count as zero energy; there is no
// interpolation.
type Production struct {
	items []domain.HourlyProductionEnergy
}

// NewProduction concatenates per-day forecast series into a single
// chronological view.
func NewProduction(days ...[]domain.HourlyProductionEnergy) Production {
	var items []domain.HourlyProductionEnergy
	for _, day := range days {
		items = append(items, day...)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Period.Before(items[j].Period)
	})
	return Production{items: items}
}

// Hourly returns the forecast items whose period starts within
// [start, start+hours).
func (f Production) Hourly(start time.Time, hours int) []domain.HourlyProductionEnergy {
	end := start.Add(time.Duration(hours) * time.Hour)
	var out []domain.HourlyProductionEnergy
	for _, item := range f.items {
		s := item.Period.Start()
		if !s.Before(start) && s.Before(end) {
			out = append(out, item)
		}
	}
	return out
}

// EstimateEnergyKwh sums the forecast energy over [start, start+hours).
func (f Production) EstimateEnergyKwh(start time.Time, hours int) domain.EnergyKwh {
	var total domain.EnergyKwh
	for _, item := range f.Hourly(start, hours) {
		total = total.Add(item.Energy)
	}
	return total
}
