package models

import "time"

// WorkRecommendation is the kind of work the weather allows on a day
type WorkRecommendation string

const (
	RecommendInstallation WorkRecommendation = "installation"
	RecommendProduction   WorkRecommendation = "production"
)

// Conditions is a single weather reading.
type Conditions struct {
	Time          time.Time `json:"time"`
	Condition     string    `json:"condition"`
	Description   string    `json:"description"`
	Temperature   float64   `json:"temperature"`
	Precipitation float64   `json:"precipitation_mm"`
	Humidity      int       `json:"humidity"`
	WindSpeed     float64   `json:"wind_speed"`
	// SuitableForInstallation is derived from condition, temperature and precipitation
	SuitableForInstallation bool `json:"suitable_for_installation"`
}

// ForecastDay is the representative reading of one calendar day.
type ForecastDay struct {
	Date time.Time `json:"date"`
	Conditions
}

// InstallationSlot is a weather-safe day with a proposed work window.
type InstallationSlot struct {
	Date     time.Time   `json:"date"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	Forecast ForecastDay `json:"forecast"`
}
