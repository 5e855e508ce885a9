// Package config loads the planner settings from an optional config file,
// environment variables and built-in defaults.
package config

import (
	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	MapPath    string
	StopsPath  string
	RoutesPath string
	ResultsDir string

	WalkSpeedMPH    float64
	BikeSpeedMPH    float64
	DefaultSpeedMPH float64
	BusStopTimeSec  float64

	APIPort    int
	CORSOrigin string
}

// Load reads configuration from the given file. An empty path falls back to
// an optional ./data/config.yaml; a missing optional file is not an error.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("map_path", "data/city.osm")
	v.SetDefault("stops_path", "data/stops.csv")
	v.SetDefault("routes_path", "data/routes.csv")
	v.SetDefault("results_dir", "results")
	v.SetDefault("walk_speed_mph", 3.0)
	v.SetDefault("bike_speed_mph", 8.0)
	v.SetDefault("default_speed_mph", 25.0)
	v.SetDefault("bus_stop_time_sec", 30.0)
	v.SetDefault("api_port", 8080)
	v.SetDefault("cors_origin", "")

	v.SetEnvPrefix("TRIP_PLANNER")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./data/")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !stderrors.As(err, &notFound) {
				return nil, errors.Wrap(err, "reading config file")
			}
		}
	}

	return &Config{
		MapPath:         v.GetString("map_path"),
		StopsPath:       v.GetString("stops_path"),
		RoutesPath:      v.GetString("routes_path"),
		ResultsDir:      v.GetString("results_dir"),
		WalkSpeedMPH:    v.GetFloat64("walk_speed_mph"),
		BikeSpeedMPH:    v.GetFloat64("bike_speed_mph"),
		DefaultSpeedMPH: v.GetFloat64("default_speed_mph"),
		BusStopTimeSec:  v.GetFloat64("bus_stop_time_sec"),
		APIPort:         v.GetInt("api_port"),
		CORSOrigin:      v.GetString("cors_origin"),
	}, nil
}
