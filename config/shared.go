package config

import "time"

// SharedCacheCfg configures the Redis-backed shared cache tier.
//
// Note: when nil, the pipeline runs local-tier only. Any error talking to the
// shared tier degrades to local-only operation, it never fails a request.
type SharedCacheCfg struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// KeyPrefix namespaces pipeline keys in a shared instance.
	// Example: "chartpipe:".
	KeyPrefix string `yaml:"key_prefix"`

	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// OpTimeout bounds a single shared-tier get or set before the operation
	// degrades to the local tier. Example: "3s".
	OpTimeout time.Duration `yaml:"op_timeout"`
}

func (cfg *SharedCacheCfg) Enabled() bool {
	return cfg != nil
}
