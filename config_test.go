package gridding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sookie3mo/ASC15-Gridding/codec"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 160000, cfg.Samples)
	assert.Equal(t, 4096, cfg.GridSize)
	assert.Equal(t, 33, cfg.WPlanes)
}

func TestConfigFrequencies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = 4
	freq := cfg.Frequencies()
	require.Len(t, freq, 4)
	assert.InDelta(t, 1.4e9/2.998e8, freq[0], 1e-12)
	assert.InDelta(t, (1.4e9-2e5*3.0/4)/2.998e8, freq[3], 1e-12)
	for i := 1; i < len(freq); i++ {
		assert.Less(t, freq[i], freq[i-1])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"samples", func(c *Config) { c.Samples = 0 }},
		{"channels", func(c *Config) { c.Channels = -1 }},
		{"grid size", func(c *Config) { c.GridSize = 0 }},
		{"cell size", func(c *Config) { c.CellSize = 0 }},
		{"w-planes", func(c *Config) { c.WPlanes = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

			_, err := New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	for _, c := range []codec.Codec{nil, codec.JSON{}, codec.GoJSON{}} {
		cfg, err := LoadConfig(strings.NewReader(`{"samples": 1000, "grid_size": 512}`), c)
		require.NoError(t, err)

		want := DefaultConfig()
		want.Samples = 1000
		want.GridSize = 512
		assert.Equal(t, want, cfg)
	}

	_, err := LoadConfig(strings.NewReader(`{"samples": "many"}`), codec.JSON{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadConfig(strings.NewReader(`{"w_planes": 0}`), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
