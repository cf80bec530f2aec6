package pwatcher

import (
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// RAMMode selects how the heap size is computed.
type RAMMode string

const (
	// RAMAuto allocates a fraction of the host's memory.
	RAMAuto RAMMode = "auto"
	// RAMFixed allocates a fixed amount.
	RAMFixed RAMMode = "fixed"
)

func (m RAMMode) valid() bool {
	return m == RAMAuto || m == RAMFixed
}

// Config is the watcher configuration. A Config returned by LoadConfig always
// holds legal values; consumers treat it as read-only.
type Config struct {
	RAMMode             RAMMode  `json:"ram_mode"`
	FixedRAMGB          int      `json:"fixed_ram_gb"`
	RAMFraction         float64  `json:"ram_fraction"`
	MaxRAMGB            *int     `json:"max_ram_gb"` // nil for no ceiling
	UseRecommendedFlags bool     `json:"use_recommended_flags"`
	ExtraArgs           []string `json:"extra_java_args"`
	IgnorePatterns      []string `json:"ignore_jars"` // lower-cased
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		RAMMode:             RAMAuto,
		FixedRAMGB:          4,
		RAMFraction:         0.25,
		MaxRAMGB:            nil,
		UseRecommendedFlags: true,
		ExtraArgs:           []string{},
		IgnorePatterns:      []string{},
	}
}

// LoadConfig reads the JSON configuration file at path and merges it over
// DefaultConfig. A missing file is not an error.
//
// The returned Config is always usable. If the file cannot be read or parsed,
// all defaults are returned with a *ConfigLoadError. If individual fields are
// illegal, only those keep their defaults, and the *ConfigLoadError lists
// them.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, &ConfigLoadError{File: path, Err: err}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return cfg, &ConfigLoadError{
			File: path,
			Err:  errors.Wrap(err, "failed to parse config"),
		}
	}

	var invalid []string
	reject := func(key string) { invalid = append(invalid, key) }

	if raw := v.Get("ram_mode"); raw != nil {
		s, ok := raw.(string)
		mode := RAMMode(strings.ToLower(strings.TrimSpace(s)))
		if ok && mode.valid() {
			cfg.RAMMode = mode
		} else {
			reject("ram_mode")
		}
	}

	if raw := v.Get("fixed_ram_gb"); raw != nil {
		if n, err := toInt(raw); err == nil && n >= 0 {
			cfg.FixedRAMGB = n
		} else {
			reject("fixed_ram_gb")
		}
	}

	if raw := v.Get("ram_fraction"); raw != nil {
		f, err := toFloat(raw)
		if err == nil && f > 0 && f <= 1 {
			cfg.RAMFraction = f
		} else {
			reject("ram_fraction")
		}
	}

	// An explicit null means no ceiling, which is also the default.
	if raw := v.Get("max_ram_gb"); raw != nil {
		if n, err := toInt(raw); err == nil && n >= 1 {
			cfg.MaxRAMGB = &n
		} else {
			reject("max_ram_gb")
		}
	}

	// use_aikar_flags is the historical name of the same switch.
	for _, key := range []string{"use_aikar_flags", "use_recommended_flags"} {
		raw := v.Get(key)
		if raw == nil {
			continue
		}
		if b, err := cast.ToBoolE(raw); err == nil {
			cfg.UseRecommendedFlags = b
		} else {
			reject(key)
		}
	}

	if raw := v.Get("extra_java_args"); raw != nil {
		if args, err := toStrings(raw); err == nil {
			cfg.ExtraArgs = args
		} else {
			reject("extra_java_args")
		}
	}

	if raw := v.Get("ignore_jars"); raw != nil {
		if patterns, err := toStrings(raw); err == nil {
			for i, pattern := range patterns {
				patterns[i] = strings.ToLower(pattern)
			}
			cfg.IgnorePatterns = patterns
		} else {
			reject("ignore_jars")
		}
	}

	if len(invalid) > 0 {
		return cfg, &ConfigLoadError{File: path, Fields: invalid}
	}

	return cfg, nil
}

// toInt truncates JSON numbers towards zero. Booleans are rejected even though
// cast would turn them into 0 or 1.
func toInt(raw interface{}) (int, error) {
	if _, ok := raw.(bool); ok {
		return 0, errors.New("boolean is not a number")
	}

	f, err := toFloat(raw)
	if err != nil {
		return 0, err
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, errors.New("number out of range")
	}

	return int(f), nil
}

func toFloat(raw interface{}) (float64, error) {
	if _, ok := raw.(bool); ok {
		return 0, errors.New("boolean is not a number")
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("number is not finite")
	}

	return f, nil
}

// toStrings only accepts a JSON array of strings. cast.ToStringSliceE would
// split a plain string on whitespace, which is not what an operator means.
func toStrings(raw interface{}) ([]string, error) {
	list, ok := raw.([]interface{})
	if !ok {
		return nil, errors.Errorf("expected array, got %T", raw)
	}

	strs := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errors.Errorf("item %d is %T, not a string", i, item)
		}
		strs[i] = s
	}

	return strs, nil
}
