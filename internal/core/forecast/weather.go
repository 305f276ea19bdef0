package forecast

import (
	"time"

	"tariffpilot/internal/core/domain"
)

// Weather is the hourly outdoor temperature and humidity forecast.
type Weather struct {
	items []domain.HourlyWeather
}

func NewWeather(items []domain.HourlyWeather) Weather {
	return Weather{items: items}
}

// FindByDatetime returns the forecast whose period starts exactly at the
// hour containing dt, or nil when the hour is not covered.
func (f Weather) FindByDatetime(dt time.Time) *domain.HourlyWeather {
	hour := dt.Truncate(time.Hour)
	for _, item := range f.items {
		if item.Period.Start().Equal(hour) {
			return &item
		}
	}
	return nil
}
