// Package timeutil holds the timestamp rounding rules shared by the price
// service and the portfolio service. Historical hourly candles are keyed by
// Unix timestamps that are exact multiples of 3600, so every lookup and every
// stored transaction hour goes through these functions.
package timeutil

import "time"

const (
	secondsInHour = 3600
	halfHour      = 1800
)

// FirstHistoricalUnix is the Unix timestamp of the first priceable instant
// (2010-07-17T00:30:00Z). No transaction may reference anything at or
// before it.
const FirstHistoricalUnix int64 = 1279326600

// FirstCandleHourUnix is the hour FirstHistoricalUnix rounds to
// (2010-07-17T01:00:00Z), the first hourly candle ever stored. No candle
// row may carry an earlier timestamp.
const FirstCandleHourUnix int64 = 1279328400

// FirstHistoricalInstant is FirstHistoricalUnix as a UTC time.Time.
var FirstHistoricalInstant = time.Unix(FirstHistoricalUnix, 0).UTC()

// RoundToNearestHour rounds a Unix timestamp to the nearest full hour.
// Timestamps at 29 minutes and 59 seconds or less round down, 30 minutes or
// above rounds up to the next full hour. An exact hour is returned unchanged.
func RoundToNearestHour(unixTimestamp int64) int64 {
	remainder := unixTimestamp % secondsInHour
	if remainder < 0 {
		remainder += secondsInHour
	}
	if remainder < halfHour {
		return unixTimestamp - remainder
	}
	return unixTimestamp + (secondsInHour - remainder)
}

// RoundDownToHour rounds a Unix timestamp down to the nearest full hour.
func RoundDownToHour(unixTimestamp int64) int64 {
	remainder := unixTimestamp % secondsInHour
	if remainder < 0 {
		remainder += secondsInHour
	}
	return unixTimestamp - remainder
}

// LastValidTimestamp returns the last instant a transaction may reference:
// the 29th minute and 59th second of the previous hour in UTC. Anything later
// would round to an hour whose candle may still be open.
func LastValidTimestamp(now time.Time) time.Time {
	t := now.UTC().Add(-time.Hour)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 29, 59, 0, time.UTC)
}
