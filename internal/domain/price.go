package domain

import "github.com/shopspring/decimal"

// HourlyPricePoint represents one stored OHLC candle for a one-hour window.
// UnixTimestamp is always an exact multiple of 3600 and unique in the store.
// Points are immutable once stored and never deleted in normal operation.
type HourlyPricePoint struct {
	UnixTimestamp int64           `json:"unix_timestamp"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Close         decimal.Decimal `json:"close"`
	VolumeFrom    decimal.Decimal `json:"volumefrom"`
	VolumeTo      decimal.Decimal `json:"volumeto"`
}
