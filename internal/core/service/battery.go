package service

import (
	"sort"
	"time"

	"tariffpilot/internal/core/domain"
)

// EstimateBatteryReserveSoc converts a reserve energy amount to the SoC the
// inverter should hold, stacked on top of the configured minimum and safety
// margin and capped at max.
func EstimateBatteryReserveSoc(reserve, capacity domain.EnergyKwh, min, margin, max domain.BatterySoc) domain.BatterySoc {
	target := float64(min) + float64(margin) + float64(domain.SocFromEnergy(reserve, capacity))
	if target > float64(max) {
		target = float64(max)
	}
	return domain.ClampSoc(target)
}

// EstimateBatterySurplusEnergy returns how much energy the battery can give
// away after reserving the given amount plus the configured minimum and
// margin. SoC arithmetic saturates at zero, so an over-committed battery
// simply yields no surplus.
func EstimateBatterySurplusEnergy(reserve domain.EnergyKwh, currentSoc domain.BatterySoc,
	capacity domain.EnergyKwh, min, margin domain.BatterySoc) domain.EnergyKwh {

	soc := currentSoc.
		SubSat(domain.SocFromEnergy(reserve, capacity)).
		SubSat(min).
		SubSat(margin)
	return soc.ToEnergy(capacity)
}

// EstimateBatteryMaxSoc returns the SoC the battery would reach if the
// given surplus energy were charged into it, saturating at 100%.
func EstimateBatteryMaxSoc(surplus domain.EnergyKwh, currentSoc domain.BatterySoc, capacity domain.EnergyKwh) domain.BatterySoc {
	return currentSoc.AddSat(domain.SocFromEnergy(surplus, capacity))
}

// TotalSurplus answers "how much extra energy do we have over this window":
// the production total over the consumption total, floored at zero.
func TotalSurplus(consumptions []domain.HourlyConsumptionEnergy, productions []domain.HourlyProductionEnergy) domain.EnergyKwh {
	var cons, prod float64
	for _, c := range consumptions {
		cons += float64(c.Energy)
	}
	for _, p := range productions {
		prod += float64(p.Energy)
	}
	if prod <= cons {
		return 0
	}
	return domain.Kwh(prod - cons)
}

// MaximumCumulativeDeficit walks the per-hour net balance (production minus
// consumption) chronologically and returns the deepest cumulative shortfall.
// This is the largest instantaneous reserve the battery must hold at the
// start of the window, not the net end-of-window balance.
func MaximumCumulativeDeficit(consumptions []domain.HourlyConsumptionEnergy, productions []domain.HourlyProductionEnergy) domain.EnergyKwh {
	net := make(map[time.Time]float64)
	for _, p := range productions {
		net[p.Period.Start()] += float64(p.Energy)
	}
	for _, c := range consumptions {
		net[c.Period.Start()] -= float64(c.Energy)
	}

	starts := make([]time.Time, 0, len(net))
	for start := range net {
		starts = append(starts, start)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	var balance, lowest float64
	for _, start := range starts {
		balance += net[start]
		if balance < lowest {
			lowest = balance
		}
	}
	if lowest >= 0 {
		return 0
	}
	return domain.Kwh(-lowest)
}
