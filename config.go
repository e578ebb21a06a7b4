package gridding

import (
	"fmt"
	"io"

	"github.com/Sookie3mo/ASC15-Gridding/codec"
)

// Config is the benchmark geometry.
type Config struct {
	// Samples is the number of (u, v, w) points.
	Samples int `json:"samples"`

	// Channels is the number of frequency channels per point.
	Channels int `json:"channels"`

	// GridSize is the side length of the square output grid.
	GridSize int `json:"grid_size"`

	// Baseline is the maximum baseline in meters.
	Baseline float64 `json:"baseline"`

	// CellSize is the grid cell size in wavelengths.
	CellSize float64 `json:"cell_size"`

	// WPlanes is the number of w-planes in the convolution table.
	WPlanes int `json:"w_planes"`
}

// DefaultConfig returns the reference benchmark configuration.
func DefaultConfig() Config {
	return Config{
		Samples:  160000,
		Channels: 1,
		GridSize: 4096,
		Baseline: 2000,
		CellSize: 5,
		WPlanes:  33,
	}
}

// Validate reports a configuration that cannot run.
func (c Config) Validate() error {
	switch {
	case c.Samples <= 0:
		return fmt.Errorf("%w: samples %d", ErrInvalidConfig, c.Samples)
	case c.Channels <= 0:
		return fmt.Errorf("%w: channels %d", ErrInvalidConfig, c.Channels)
	case c.GridSize <= 0:
		return fmt.Errorf("%w: grid size %d", ErrInvalidConfig, c.GridSize)
	case !(c.CellSize > 0):
		return fmt.Errorf("%w: cell size %g", ErrInvalidConfig, c.CellSize)
	case c.WPlanes <= 0:
		return fmt.Errorf("%w: w-planes %d", ErrInvalidConfig, c.WPlanes)
	}
	return nil
}

// Frequencies returns the channel frequencies in inverse wavelengths:
// 1.4 GHz stepping down by 200 kHz over the band.
func (c Config) Frequencies() []float64 {
	freq := make([]float64, c.Channels)
	for i := range freq {
		freq[i] = (1.4e9 - 2.0e5*float64(i)/float64(c.Channels)) / 2.998e8
	}
	return freq
}

// LoadConfig decodes a configuration from r. Fields absent from the input
// keep their DefaultConfig values. If c is nil, codec.Default is used.
func LoadConfig(r io.Reader, c codec.Codec) (Config, error) {
	if c == nil {
		c = codec.Default
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := c.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, c.Name(), err)
	}
	return cfg, cfg.Validate()
}
