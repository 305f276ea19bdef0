package forecast

import (
	"sort"
	"time"

	"tariffpilot/internal/core/domain"

	"github.com/shopspring/decimal"
)

// Price is the hourly spot price view. This is the single canonical
// aggregation path: negative sample prices are floored to zero before any
// grouping or averaging, so negative-priced consumption is never rewarded
// twice downstream.
type Price struct {
	items []domain.HourlyPrice
}

// NewPriceFromHourly builds the view from pre-hourly samples.
func NewPriceFromHourly(samples []domain.HourlyPrice) Price {
	items := make([]domain.HourlyPrice, 0, len(samples))
	for _, s := range samples {
		items = append(items, domain.HourlyPrice{Period: s.Period, Price: s.Price.NonNegative()})
	}
	sortHourlyPrices(items)
	return Price{items: items}
}

// NewPriceFromQuarterHourly builds the view from 15-minute samples by
// grouping samples by the hour of their period start and averaging each
// group. Empty hours are omitted.
func NewPriceFromQuarterHourly(samples []domain.FifteenMinutePrice) Price {
	type bucket struct {
		sum   decimal.Decimal
		count int64
		price domain.EnergyPrice
	}
	buckets := make(map[time.Time]*bucket)
	for _, s := range samples {
		hour := s.Period.Hour().Start()
		price := s.Price.NonNegative()
		b, ok := buckets[hour]
		if !ok {
			b = &bucket{price: price}
			buckets[hour] = b
		}
		b.sum = b.sum.Add(price.Amount)
		b.count++
	}

	items := make([]domain.HourlyPrice, 0, len(buckets))
	for hour, b := range buckets {
		mean := b.sum.Div(decimal.NewFromInt(b.count))
		items = append(items, domain.HourlyPrice{
			Period: domain.HourlyPeriodOf(hour),
			Price:  domain.EnergyPrice{Amount: mean, Currency: b.price.Currency, Unit: b.price.Unit},
		})
	}
	sortHourlyPrices(items)
	return Price{items: items}
}

func sortHourlyPrices(items []domain.HourlyPrice) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Period.Before(items[j].Period)
	})
}

// Items returns the aggregated hourly series in chronological order.
func (f Price) Items() []domain.HourlyPrice {
	return f.items
}

// Select returns the hours with start <= period start < end.
func (f Price) Select(start, end time.Time) []domain.HourlyPrice {
	var out []domain.HourlyPrice
	for _, item := range f.items {
		s := item.Period.Start()
		if !s.Before(start) && s.Before(end) {
			out = append(out, item)
		}
	}
	return out
}

// FindMinHour returns the cheapest hour within [start, start+hours), or nil
// if the window holds no prices. Ties keep the chronologically first hour.
func (f Price) FindMinHour(start time.Time, hours int) *domain.HourlyPrice {
	window := f.Select(start, start.Add(time.Duration(hours)*time.Hour))
	if len(window) == 0 {
		return nil
	}
	min := window[0]
	for _, item := range window[1:] {
		if item.Price.LessThan(min.Price) {
			min = item
		}
	}
	return &min
}

// FindPeakPeriods returns the hours within [start, start+hours) whose price
// is at or above the threshold, in chronological order.
func (f Price) FindPeakPeriods(start time.Time, hours int, threshold domain.EnergyPrice) []domain.HourlyPrice {
	var out []domain.HourlyPrice
	for _, item := range f.Select(start, start.Add(time.Duration(hours)*time.Hour)) {
		if !item.Price.LessThan(threshold) {
			out = append(out, item)
		}
	}
	return out
}
