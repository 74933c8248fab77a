package cmd

import "time"

// Config carries the process configuration resolved from the environment.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// DispatchRadiusMeters is the initial courier search radius around the
	// restaurant before dispatch widens to the whole fleet.
	DispatchRadiusMeters float64

	// CourierPositionMaxAge is how old a courier's last location report may
	// be before the radius-bounded dispatch query ignores it.
	CourierPositionMaxAge time.Duration
}
