package config

import "time"

// QueueCfg configures the priority queue holding admitted-but-deferred work.
type QueueCfg struct {
	// MaxDepth is the hard capacity bound. A request arriving at a full queue
	// is rejected immediately, it is never parked. Example: 100.
	MaxDepth int `yaml:"max_depth"`

	// MaxWait bounds how long a task may sit queued before it resolves with a
	// timeout. It does not bound generation execution time. Example: "5m".
	MaxWait time.Duration `yaml:"max_wait"`

	// ReaperRate is how many expiry sweeps per second the reaper performs.
	// Example: 10.
	ReaperRate int `yaml:"reaper_rate"`
}
