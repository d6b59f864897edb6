package config

import "time"

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Root: "public",
			Argv: nil,
		},
		PHP: PHPConfig{
			ThrowRequestErrors: false,
			IniOverrides: map[string]string{
				"memory_limit":       "256M",
				"max_execution_time": "30",
			},
		},
		Pool: PoolConfig{
			MinWorkers:  4,
			MaxWorkers:  32,
			MaxJobs:     10000,
			IdleTimeout: Duration(60 * time.Second),
			MaxRSSBytes: 128 * 1024 * 1024,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}
