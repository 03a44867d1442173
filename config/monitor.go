package config

import "time"

// MonitorCfg configures background resource sampling.
type MonitorCfg struct {
	// SampleInterval is the cadence of host resource samples. Example: "60s".
	SampleInterval time.Duration `yaml:"sample_interval"`

	// HistorySize bounds the rolling snapshot history; the oldest sample is
	// dropped first. 1440 keeps 24h at one-minute resolution.
	HistorySize int `yaml:"history_size"`
}
