package testutil

import (
	"math/rand"
	"sync"

	"github.com/Sookie3mo/ASC15-Gridding/convolution"
	"github.com/Sookie3mo/ASC15-Gridding/grid"
	"github.com/Sookie3mo/ASC15-Gridding/visibility"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float64, minVal, maxVal float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float64()*span
	}
}

// ComplexValues returns n values with real and imaginary parts in [-1, 1).
func (r *RNG) ComplexValues(n int) []complex128 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]complex128, n)
	for i := range out {
		out[i] = complex(r.rand.Float64()*2-1, r.rand.Float64()*2-1)
	}
	return out
}

// SampleSet returns a set whose u, v and w are uniform in
// [-extent/2, extent/2) and whose data are random complex values.
func (r *RNG) SampleSet(numPoints, numChannels int, extent float64) *visibility.Set {
	set := visibility.NewSet(numPoints, numChannels)
	r.FillUniformRange(set.U, -extent/2, extent/2)
	r.FillUniformRange(set.V, -extent/2, extent/2)
	r.FillUniformRange(set.W, -extent/2, extent/2)
	for i, d := range r.ComplexValues(len(set.Samples)) {
		set.Samples[i].Data = d
	}
	return set
}

// ReferenceGrid grids samples sequentially with explicit complex
// arithmetic. Offsets must already be computed and in range.
func ReferenceGrid(samples []visibility.Sample, table *convolution.Table, gridSize int) *grid.Grid {
	g, err := grid.New(gridSize)
	if err != nil {
		panic(err)
	}
	support := table.Support
	size := table.KernelSize()

	for _, s := range samples {
		dr, di := real(s.Data), imag(s.Data)
		for dv := range size {
			for du := range size {
				c := table.Values[s.COffset+du+size*dv]
				idx := g.Index(s.IU-support+du, s.IV-support+dv)
				cell := g.Cells[idx]
				g.Cells[idx] = complex(
					real(cell)+dr*real(c)-di*imag(c),
					imag(cell)+dr*imag(c)+di*real(c),
				)
			}
		}
	}
	return g
}
