// Package config handles animtool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Animation  AnimationConfig  `yaml:"animation"`
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// AnimationConfig points at the declarative animation data.
type AnimationConfig struct {
	// ConfigDir is scanned for *.yaml state-machine declarations.
	ConfigDir string `yaml:"config_dir"`
}

// SimulationConfig holds playback-simulation settings.
type SimulationConfig struct {
	// TickRate is the simulated update frequency in Hz.
	TickRate float32 `yaml:"tick_rate"`
	// Duration is how long a simulation runs, in seconds.
	Duration float32 `yaml:"duration"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Animation: AnimationConfig{
			ConfigDir: "animations",
		},
		Simulation: SimulationConfig{
			TickRate: 60,
			Duration: 5,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
