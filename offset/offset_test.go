package offset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sookie3mo/ASC15-Gridding/convolution"
	"github.com/Sookie3mo/ASC15-Gridding/visibility"
)

func testGeometry() Geometry {
	return Geometry{
		CellSize:   1,
		WCellSize:  2,
		GridSize:   128,
		Support:    3,
		Oversample: 8,
		WPlanes:    5,
	}
}

func TestLocate(t *testing.T) {
	g := testGeometry()
	tests := []struct {
		name    string
		u, v, w float64
		freq    float64
		want    Location
	}{
		{"center", 0, 0, 0, 1, Location{IU: 64, IV: 64, WPlane: 2}},
		{"fraction", 1.5, 2.25, 0, 1, Location{IU: 65, IV: 66, FracU: 4, FracV: 2, WPlane: 2}},
		{"negative floors down", -1.5, -0.125, 0, 1, Location{IU: 62, IV: 63, FracU: 4, FracV: 7, WPlane: 2}},
		{"frequency scales", 1, 1, 0, 2.5, Location{IU: 66, IV: 66, FracU: 4, FracV: 4, WPlane: 2}},
		{"w truncates toward zero", 0, 0, 3.9, 1, Location{IU: 64, IV: 64, WPlane: 3}},
		{"negative w truncates toward zero", 0, 0, -3.9, 1, Location{IU: 64, IV: 64, WPlane: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			want := tc.want
			want.COffset = 49 * (want.FracU + 8*(want.FracV+8*want.WPlane))
			assert.Equal(t, want, Locate(tc.u, tc.v, tc.w, tc.freq, g))
		})
	}
}

func TestLocateTinyNegativeStaysInSubTable(t *testing.T) {
	loc := Locate(-1e-17, 0, 0, 1, testGeometry())
	assert.Equal(t, 63, loc.IU)
	assert.Less(t, loc.FracU, 8)
}

func TestLocateDeterministic(t *testing.T) {
	g := testGeometry()
	first := Locate(12.34, -56.78, 1.7, 1.3, g)
	for range 100 {
		assert.Equal(t, first, Locate(12.34, -56.78, 1.7, 1.3, g))
	}
}

func TestComputeBoundary(t *testing.T) {
	g := testGeometry()
	set := visibility.NewSet(2, 1)
	// Footprint 0..6 and 121..127.
	set.U[0], set.V[0] = -61, -61
	set.U[1], set.V[1] = 60, 60
	set.Samples[0].Data = 1
	set.Samples[1].Data = 1

	require.NoError(t, Compute(set, []float64{1}, g))

	assert.Equal(t, 3, set.Samples[0].IU)
	assert.Equal(t, 3, set.Samples[0].IV)
	assert.Equal(t, 0, set.Samples[0].IU-g.Support)
	assert.Equal(t, 124, set.Samples[1].IU)
	assert.Equal(t, g.GridSize-1, set.Samples[1].IV+g.Support)
	assert.Equal(t, 49*8*8*2, set.Samples[0].COffset)
}

func TestComputeOutOfRange(t *testing.T) {
	g := testGeometry()
	tests := []struct {
		name    string
		u, v, w float64
		axis    Axis
		value   int
	}{
		{"u below", -61.5, 0, 0, AxisU, 2},
		{"u above", 61, 0, 0, AxisU, 125},
		{"v below", 0, -62, 0, AxisV, 2},
		{"w above", 0, 0, 6, AxisW, 5},
		{"w below", 0, 0, -6, AxisW, -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set := visibility.NewSet(2, 1)
			set.U[1], set.V[1], set.W[1] = tc.u, tc.v, tc.w

			err := Compute(set, []float64{1}, g)
			require.ErrorIs(t, err, ErrOutOfRange)

			var oor *OutOfRangeError
			require.True(t, errors.As(err, &oor))
			assert.Equal(t, 1, oor.Point)
			assert.Equal(t, tc.axis, oor.Axis)
			assert.Equal(t, tc.value, oor.Value)
		})
	}
}

func TestComputeMultiChannel(t *testing.T) {
	g := testGeometry()
	set := visibility.NewSet(1, 2)
	set.U[0], set.V[0] = 10, -10
	require.NoError(t, Compute(set, []float64{1, 2}, g))

	assert.Equal(t, 74, set.At(0, 0).IU)
	assert.Equal(t, 54, set.At(0, 0).IV)
	assert.Equal(t, 84, set.At(0, 1).IU)
	assert.Equal(t, 44, set.At(0, 1).IV)
}

func TestComputeRejectsBadInput(t *testing.T) {
	g := testGeometry()

	assert.ErrorIs(t, Compute(&visibility.Set{NumChannels: 1}, []float64{1}, g), visibility.ErrIncompleteSet)

	set := visibility.NewSet(1, 1)
	assert.ErrorIs(t, Compute(set, []float64{1, 2}, g), ErrInvalidGeometry)

	bad := g
	bad.GridSize = 0
	assert.ErrorIs(t, Compute(set, []float64{1}, bad), ErrInvalidGeometry)
}

func TestGeometryFor(t *testing.T) {
	tbl, err := convolution.Build(context.Background(), convolution.Params{
		Frequencies: []float64{1},
		CellSize:    1,
		Baseline:    5,
		WPlanes:     5,
	})
	require.NoError(t, err)

	g := GeometryFor(tbl, 1, 128)
	assert.Equal(t, testGeometry(), g)
}
