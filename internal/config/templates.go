package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Cupscan Configuration

[server]
# Address for the HTTP API
addr = ":8080"
# Request timeouts
read_timeout = "10s"
write_timeout = "10s"
# Grace period for in-flight requests on shutdown
shutdown_timeout = "5s"
# Allow cross-origin requests
cors_enabled = true

[database]
# SQLite database file; empty means <config dir>/cupscan.db
path = ""

[collector]
# Fetch bars on a schedule while the server runs
enabled = true
# Cron schedule with a seconds field
schedule = "0 */5 * * * *"
# Yahoo Finance chart interval: 1m, 5m, 15m
bar_interval = "5m"
# Yahoo Finance chart range: 1d, 3d, 5d
lookback = "3d"
# Per-request timeout
request_timeout = "15s"
# Retry budget for failed fetches
max_retries = 3
# Skip scheduled fetches outside US market hours
market_hours_only = false
# Symbols to track; empty means the built-in watchlist
symbols = []

[detection]
# Samples on each side of a candidate extremum
window_size = 5

# Minimum index gaps between consecutive pattern points
[detection.distance_thresholds]
a_b = 10
b_c = 10
c_d = 10
d_e = 10

# Minimum fractional price moves between pattern points
[detection.price_thresholds]
a_b = 0.005
b_c = 0.005
a_c = 0.005
c_d = 0.005
b_d = 0.005
d_e = 0.005

[logging]
# Log level: trace, debug, info, warn, error
level = "info"
# Write human-readable logs to stdout
console = true
# Also write to a rotating log file
file = true
# Log file path; empty means ~/.config/cupscan/logs/cupscan.log
file_path = ""
max_size_mb = 100
max_backups = 7
max_age_days = 30
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return fmt.Errorf("config file not found, created template at %s", path)
}
