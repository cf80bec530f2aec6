package pwatcher

import "math"

// Allocate computes the heap size in whole gibibytes for a host with totalGB
// of memory. The result is never below 1 and never above cfg.MaxRAMGB when a
// ceiling is set.
//
// It does not check the result against the memory actually available.
func Allocate(totalGB int, cfg Config) (int, error) {
	if err := validateAllocation(cfg); err != nil {
		return 0, err
	}

	var alloc int

	switch cfg.RAMMode {
	case RAMFixed:
		alloc = cfg.FixedRAMGB
	default:
		alloc = int(math.Floor(float64(totalGB) * cfg.RAMFraction))
		if alloc < 1 {
			alloc = 1
		}
	}

	if cfg.MaxRAMGB != nil && alloc > *cfg.MaxRAMGB {
		alloc = *cfg.MaxRAMGB
	}

	if alloc < 1 {
		alloc = 1
	}

	return alloc, nil
}

func validateAllocation(cfg Config) error {
	var fields []string

	switch cfg.RAMMode {
	case RAMFixed:
	case RAMAuto:
		f := cfg.RAMFraction
		if math.IsNaN(f) || f <= 0 || f > 1 {
			fields = append(fields, "ram_fraction")
		}
	default:
		fields = append(fields, "ram_mode")
	}

	if cfg.MaxRAMGB != nil && *cfg.MaxRAMGB < 1 {
		fields = append(fields, "max_ram_gb")
	}

	if len(fields) > 0 {
		return &InvalidConfigError{Fields: fields}
	}

	return nil
}
