package config

import "time"

// CacheCfg configures the bounded local cache tier.
type CacheCfg struct {
	// MaxEntries caps the local tier by entry count; the least-recently-used
	// entry is evicted when the cap is reached. Example: 100.
	MaxEntries int `yaml:"max_entries"`

	// DefaultTTL is applied to cached artifacts unless the caller requests a
	// shorter lifetime for ephemeral ones. Example: "24h".
	DefaultTTL time.Duration `yaml:"default_ttl"`
}
