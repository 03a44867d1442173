package config

// Pipeline groups configuration of all pipeline subsystems.
// Optional sections can be disabled by setting them to nil.
type Pipeline struct {
	Limits LimitsCfg `yaml:"limits"`
	Cache  CacheCfg  `yaml:"cache"`
	Queue  QueueCfg  `yaml:"queue"`

	Monitor MonitorCfg `yaml:"monitor"`

	// SharedCache configures the external cache tier used for cross-process
	// warm reuse. If nil, the pipeline serves from the local tier alone.
	SharedCache *SharedCacheCfg `yaml:"shared_cache"`

	// Telemetry configures interval stats logging.
	// If nil, periodic telemetry logs are disabled.
	Telemetry *TelemetryCfg `yaml:"telemetry"`
}
