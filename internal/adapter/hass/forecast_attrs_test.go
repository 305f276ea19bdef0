package hass

import (
	"testing"
	"time"

	"tariffpilot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParsePvForecastSkipsMalformedItems(t *testing.T) {
	payload := `[
		{"period_start": "2026-01-15T10:00:00Z", "pv_estimate": 2.5},
		{"period_start": "not a timestamp", "pv_estimate": 1.0},
		{"period_start": "2026-01-15T11:30:00Z", "pv_estimate": 1.0},
		{"period_start": "2026-01-15T11:00:00Z", "pv_estimate": -0.5},
		{"period_start": "2026-01-15T12:00:00Z", "pv_estimate": 3.0}
	]`

	items := ParsePvForecast(payload, zap.NewNop())
	require.Len(t, items, 2, "bad timestamp, unaligned hour and negative estimate dropped")
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), items[0].Period.Start())
	assert.EqualValues(t, 2.5, items[0].Energy)
	assert.EqualValues(t, 3.0, items[1].Energy)
}

func TestParsePvForecastUndecodablePayload(t *testing.T) {
	assert.Nil(t, ParsePvForecast("{broken", zap.NewNop()))
}

func TestParsePriceForecastHourlySamples(t *testing.T) {
	payload := `[
		{"start": "2026-01-15T10:00:00Z", "price": "450.10"},
		{"start": "2026-01-15T11:00:00Z", "price": "-20"}
	]`

	items := ParsePriceForecast(payload, zap.NewNop())
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Price.Cmp(domain.PlnPerMwhFloat(450.10)))
	assert.True(t, items[1].Price.Amount.IsZero(), "negative price floored")
}

func TestParsePriceForecastQuarterHourlySamples(t *testing.T) {
	payload := `[
		{"start": "2026-01-15T10:00:00Z", "price": "100"},
		{"start": "2026-01-15T10:15:00Z", "price": "-100"},
		{"start": "2026-01-15T10:30:00Z", "price": "200"},
		{"start": "2026-01-15T10:45:00Z", "price": "100"}
	]`

	items := ParsePriceForecast(payload, zap.NewNop())
	require.Len(t, items, 1)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), items[0].Period.Start())
	// (100 + 0 + 200 + 100) / 4, the negative quarter floored before the mean
	assert.Equal(t, 0, items[0].Price.Cmp(domain.PlnPerMwhFloat(100)))
}

func TestParseWeatherForecast(t *testing.T) {
	payload := `[
		{"datetime": "2026-01-15T10:00:00Z", "temperature": -2.5, "humidity": 85},
		{"datetime": "garbage", "temperature": 1, "humidity": 50}
	]`

	items := ParseWeatherForecast(payload, zap.NewNop())
	require.Len(t, items, 1)
	assert.EqualValues(t, -2.5, items[0].Temperature)
	assert.EqualValues(t, 85, items[0].Humidity)
}
