// Package forecast collapses raw multi-point forecast series into daily
// summaries.
package forecast

import (
	"sort"
	"time"

	"weatherbot.app/models"
)

// Policy selects how a day's representative temperature is computed.
type Policy string

const (
	// PolicyMean uses the arithmetic mean of all samples of the day. This
	// is the default.
	PolicyMean Policy = "mean"
	// PolicyMinMax uses the midpoint of the day's minimum and maximum.
	PolicyMinMax Policy = "minmax"
)

// DefaultMaxDays is the forecast horizon used when the caller does not
// specify one.
const DefaultMaxDays = 5

// Aggregate partitions the series' samples by calendar date, taken in the
// series' own timezone, and emits one bucket per day in
// ascending date order, truncated to maxDays. The bucket's condition is the
// chronologically first sample of that day. Empty input yields an empty
// slice. Aggregation is pure: the same series always yields the same
// buckets.
func Aggregate(series *models.RawForecastSeries, maxDays int, policy Policy) []models.DailyForecast {
	if series == nil || len(series.Samples) == 0 {
		return []models.DailyForecast{}
	}
	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}

	zone := time.FixedZone("local", series.TimezoneOffset)

	type bucket struct {
		date      time.Time
		first     time.Time
		condition models.Condition
		sum       float64
		min       float64
		max       float64
		count     int
	}

	buckets := make(map[time.Time]*bucket)
	for _, sample := range series.Samples {
		local := sample.Time.In(zone)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone)

		b, ok := buckets[day]
		if !ok {
			b = &bucket{
				date:      day,
				first:     sample.Time,
				condition: sample.Condition,
				min:       sample.Temperature,
				max:       sample.Temperature,
			}
			buckets[day] = b
		}

		b.sum += sample.Temperature
		b.count++
		if sample.Temperature < b.min {
			b.min = sample.Temperature
		}
		if sample.Temperature > b.max {
			b.max = sample.Temperature
		}
		if sample.Time.Before(b.first) {
			b.first = sample.Time
			b.condition = sample.Condition
		}
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].date.Before(ordered[j].date)
	})

	if len(ordered) > maxDays {
		ordered = ordered[:maxDays]
	}

	result := make([]models.DailyForecast, 0, len(ordered))
	for _, b := range ordered {
		temp := b.sum / float64(b.count)
		if policy == PolicyMinMax {
			temp = (b.min + b.max) / 2
		}
		result = append(result, models.DailyForecast{
			Date:        b.date,
			Temperature: temp,
			TempMin:     b.min,
			TempMax:     b.max,
			Condition:   b.condition,
		})
	}
	return result
}
