package forecast

import (
	"tariffpilot/internal/core/domain"
)

// Factory builds the four forecast views for a snapshot. The consumption
// model parameters are fixed configuration; everything else comes from the
// snapshot itself.
type Factory struct {
	EveningStartHour   int
	ConsumptionAway    domain.EnergyKwh
	ConsumptionDay     domain.EnergyKwh
	ConsumptionEvening domain.EnergyKwh

	HeatingCopAt7C      float64
	HeatingLossKwPerC   float64
	TempOutFallback     domain.Celsius
	HumidityOutFallback float64
}

func (f Factory) Production(state domain.State) Production {
	return NewProduction(state.ProductionToday, state.ProductionTomorrow, state.ProductionDay3)
}

func (f Factory) Consumption(state domain.State) Consumption {
	regular := RegularConsumption{
		AwayMode:         state.AwayMode,
		EveningStartHour: f.EveningStartHour,
		Away:             f.ConsumptionAway,
		Day:              f.ConsumptionDay,
		Evening:          f.ConsumptionEvening,
	}
	heating := HeatingConsumption{
		HeatingMode:      state.HeatingMode,
		EcoMode:          state.EcoMode,
		TempIndoor:       state.TempIndoor,
		Weather:          f.Weather(state),
		CopAt7C:          f.HeatingCopAt7C,
		HeatLossKwPerC:   f.HeatingLossKwPerC,
		TempOutFallback:  f.TempOutFallback,
		HumidityFallback: f.HumidityOutFallback,
	}
	return NewConsumption(regular, heating)
}

func (f Factory) Price(state domain.State) Price {
	return NewPriceFromHourly(state.Prices)
}

func (f Factory) Weather(state domain.State) Weather {
	return NewWeather(state.Weather)
}
