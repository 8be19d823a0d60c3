package constants

import "time"

const (
	AppName            = "crewplan"
	DefaultKeyringUser = "database-connection"
	WeatherKeyringUser = "weather-api-key"
	DefaultConfigDir   = "~/.config/crewplan"
	DefaultConfigFile  = "config.yaml"
	DefaultDBFile      = "crewplan.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DateTimeFormat is used for naive timestamps on the command line and in messages
	DateTimeFormat = "2006-01-02 15:04"

	// DefaultTimezone is applied to naive timestamps
	DefaultTimezone = "Europe/Bratislava"
)

// Scheduling defaults
const (
	DefaultWeeklyHourCap  = 40.0
	DefaultPriority       = 3
	MinPriority           = 1
	MaxPriority           = 5
	DefaultHorizonDays    = 14
	DefaultMinInstallTemp = 5.0
	DefaultSuggestions    = 5

	// Score weights used by the employee selector
	ScoreCalendarFree = 10.0
	ScoreSlackWeight  = 5.0
	ScoreSpecialist   = 2.0
)

// Working-day defaults for free slot enumeration
const (
	DefaultWorkStartHour = 8
	DefaultWorkEndHour   = 17
	DefaultSlotHours     = 1.0
	DefaultSlotStep      = 30 * time.Minute
)

// Weather suitability thresholds
const (
	MinInstallFreezingTemp = 0.0
	MaxInstallPrecipMM     = 1.0
	ForecastNoonFromHour   = 11
	ForecastNoonToHour     = 14
	DefaultWeatherTemp     = 15.0
	DefaultWeatherHumidity = 50
)

// Oracle call defaults
const (
	OracleTimeout    = 10 * time.Second
	OracleRetryDelay = 250 * time.Millisecond
	OracleMaxRetries = 1
)

// DaemonLockfileName is written to the config home while the daemon runs
const DaemonLockfileName = "daemon.lock"
