package pwatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestAllocate(t *testing.T) {
	type test struct {
		name   string
		total  int
		mutate func(*Config)
		expect int
	}

	tests := []test{
		{"auto quarter", 16, func(c *Config) {}, 4},
		{"auto floors", 15, func(c *Config) {}, 3},
		{"auto minimum", 2, func(c *Config) {}, 1},
		{"auto zero memory", 0, func(c *Config) {}, 1},
		{"auto full", 8, func(c *Config) { c.RAMFraction = 1 }, 8},
		{"auto clamped", 64, func(c *Config) { c.MaxRAMGB = intPtr(10) }, 10},
		{"fixed", 16, func(c *Config) { c.RAMMode = RAMFixed; c.FixedRAMGB = 8 }, 8},
		{"fixed clamped", 16, func(c *Config) {
			c.RAMMode = RAMFixed
			c.FixedRAMGB = 8
			c.MaxRAMGB = intPtr(6)
		}, 6},
		{"fixed zero", 16, func(c *Config) { c.RAMMode = RAMFixed; c.FixedRAMGB = 0 }, 1},
		{"fixed ignores host", 1, func(c *Config) { c.RAMMode = RAMFixed; c.FixedRAMGB = 12 }, 12},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.mutate(&cfg)

			alloc, err := Allocate(test.total, cfg)
			require.NoError(t, err)
			assert.Equal(t, test.expect, alloc)
		})
	}
}

func TestAllocateBounds(t *testing.T) {
	fractions := []float64{0.01, 0.1, 0.25, 0.333, 0.5, 0.75, 1}
	ceilings := []*int{nil, intPtr(1), intPtr(3), intPtr(32)}

	for total := 0; total <= 128; total++ {
		for _, f := range fractions {
			for _, ceiling := range ceilings {
				cfg := DefaultConfig()
				cfg.RAMFraction = f
				cfg.MaxRAMGB = ceiling

				alloc, err := Allocate(total, cfg)
				require.NoError(t, err)
				require.GreaterOrEqual(t, alloc, 1)

				if ceiling != nil {
					require.LessOrEqual(t, alloc, *ceiling)
					continue
				}

				expect := int(float64(total) * f)
				if expect < 1 {
					expect = 1
				}
				require.Equal(t, expect, alloc, "total=%d fraction=%v", total, f)
			}
		}
	}

	for fixed := -2; fixed <= 16; fixed++ {
		cfg := DefaultConfig()
		cfg.RAMMode = RAMFixed
		cfg.FixedRAMGB = fixed
		cfg.MaxRAMGB = intPtr(8)

		alloc, err := Allocate(64, cfg)
		require.NoError(t, err)
		require.GreaterOrEqual(t, alloc, 1)
		require.LessOrEqual(t, alloc, 8)
	}
}

func TestAllocateInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RAMMode = "huge"
	cfg.MaxRAMGB = intPtr(0)

	_, err := Allocate(16, cfg)

	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"ram_mode", "max_ram_gb"}, invalid.Fields)

	cfg = DefaultConfig()
	cfg.RAMFraction = 1.5

	_, err = Allocate(16, cfg)
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"ram_fraction"}, invalid.Fields)

	// The fraction doesn't matter in fixed mode.
	cfg.RAMMode = RAMFixed
	_, err = Allocate(16, cfg)
	assert.NoError(t, err)
}
