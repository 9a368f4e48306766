package mixengine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds engine defaults loadable from a YAML file, mirroring
// doismellburning-samoyed's and agalue-sherpa-voice-assistant's
// yaml.v3-backed configuration structs. Every field has a sane zero-value
// fallback so a missing config file still produces a working engine.
type EngineConfig struct {
	SampleRate   int    `yaml:"sample_rate"`
	Format       string `yaml:"format"`
	BufferFrames int    `yaml:"buffer_frames"`
	MaxEffects   int    `yaml:"max_effects"`
	LogLevel     string `yaml:"log_level"`
	Backend      string `yaml:"backend"`
}

// DefaultConfig returns the configuration an Engine starts with if no
// file is loaded and no CLI flags override it.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		SampleRate:   48000,
		Format:       "S16",
		BufferFrames: DefaultBufferFrames,
		MaxEffects:   MaxNumEffects,
		LogLevel:     "info",
		Backend:      "malgo",
	}
}

// LoadConfig reads and merges a YAML config file over DefaultConfig. A
// missing path is not an error; it yields the defaults unchanged.
func LoadConfig(path string) (EngineConfig, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("mixengine: read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("mixengine: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseFormat maps a config/CLI format name to a SampleFormat.
func ParseFormat(name string) (SampleFormat, error) {
	switch name {
	case "U8":
		return FormatU8, nil
	case "S8":
		return FormatS8, nil
	case "U16":
		return FormatU16, nil
	case "S16":
		return FormatS16, nil
	case "U24":
		return FormatU24, nil
	case "S24":
		return FormatS24, nil
	case "U32":
		return FormatU32, nil
	case "S32":
		return FormatS32, nil
	case "FL32":
		return FormatFL32, nil
	case "FL64":
		return FormatFL64, nil
	default:
		return 0, fmt.Errorf("mixengine: unknown sample format %q", name)
	}
}
