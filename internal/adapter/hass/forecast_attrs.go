package hass

import (
	"encoding/json"
	"time"

	"tariffpilot/internal/core/domain"
	"tariffpilot/internal/core/forecast"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Raw forecast attribute payloads as published by the host integrations.
// Parsing is forgiving: malformed items are skipped and the series goes on
// with whatever parsed, so a broken feed degrades to zero energy or an
// absent price for the affected hours.

type rawPvItem struct {
	PeriodStart string  `json:"period_start"`
	PvEstimate  float64 `json:"pv_estimate"`
}

type rawPriceItem struct {
	Start string          `json:"start"`
	Price decimal.Decimal `json:"price"`
}

type rawWeatherItem struct {
	Datetime    string  `json:"datetime"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// ParsePvForecast decodes one day of hourly PV energy.
func ParsePvForecast(payload string, logger *zap.Logger) []domain.HourlyProductionEnergy {
	var raw []rawPvItem
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		logger.Debug("pv forecast: undecodable payload", zap.Error(err))
		return nil
	}
	var out []domain.HourlyProductionEnergy
	for _, item := range raw {
		start, err := time.Parse(time.RFC3339, item.PeriodStart)
		if err != nil {
			continue
		}
		period, err := domain.NewHourlyPeriod(start)
		if err != nil {
			continue
		}
		if item.PvEstimate < 0 {
			continue
		}
		out = append(out, domain.HourlyProductionEnergy{
			Period: period,
			Energy: domain.Kwh(item.PvEstimate),
		})
	}
	return out
}

// ParsePriceForecast decodes spot price samples and aggregates them into
// the hourly view. Quarter-hour feeds are averaged per hour; either way
// negative prices are floored to zero before aggregation.
func ParsePriceForecast(payload string, logger *zap.Logger) []domain.HourlyPrice {
	var raw []rawPriceItem
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		logger.Debug("price forecast: undecodable payload", zap.Error(err))
		return nil
	}

	var quarters []domain.FifteenMinutePrice
	var hoursOnly = true
	for _, item := range raw {
		start, err := time.Parse(time.RFC3339, item.Start)
		if err != nil {
			continue
		}
		period, err := domain.NewFifteenMinutePeriod(start)
		if err != nil {
			continue
		}
		if start.Minute() != 0 {
			hoursOnly = false
		}
		quarters = append(quarters, domain.FifteenMinutePrice{
			Period: period,
			Price:  domain.PlnPerMwh(item.Price),
		})
	}

	if hoursOnly {
		hourly := make([]domain.HourlyPrice, 0, len(quarters))
		for _, q := range quarters {
			hourly = append(hourly, domain.HourlyPrice{Period: q.Period.Hour(), Price: q.Price})
		}
		return forecast.NewPriceFromHourly(hourly).Items()
	}
	return forecast.NewPriceFromQuarterHourly(quarters).Items()
}

// ParseWeatherForecast decodes hourly outdoor temperature and humidity.
func ParseWeatherForecast(payload string, logger *zap.Logger) []domain.HourlyWeather {
	var raw []rawWeatherItem
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		logger.Debug("weather forecast: undecodable payload", zap.Error(err))
		return nil
	}
	var out []domain.HourlyWeather
	for _, item := range raw {
		start, err := time.Parse(time.RFC3339, item.Datetime)
		if err != nil {
			continue
		}
		period, err := domain.NewHourlyPeriod(start)
		if err != nil {
			continue
		}
		out = append(out, domain.HourlyWeather{
			Period:      period,
			Temperature: domain.Celsius(item.Temperature),
			Humidity:    item.Humidity,
		})
	}
	return out
}
