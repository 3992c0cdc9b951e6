package model

import "time"

// Weather is the ambient condition used by dynamic line rating.
type Weather struct {
	Timestamp     time.Time `json:"timestamp"`
	TemperatureC  float64   `json:"temperature"`
	WindSpeedMPS  float64   `json:"wind_speed"`
	IrradianceWM2 float64   `json:"irradiance"`
	Condition     string    `json:"condition"`
}

// MarketPrice is a wholesale clearing price.
type MarketPrice struct {
	Timestamp   time.Time `json:"timestamp"`
	PricePerMWh float64   `json:"price_per_mwh"`
	Currency    string    `json:"currency"`
	Region      string    `json:"region"`
}

// ForecastPoint is one hourly demand prediction.
type ForecastPoint struct {
	Timestamp time.Time `json:"timestamp"`
	DemandMW  float64   `json:"predicted_demand"`
}
