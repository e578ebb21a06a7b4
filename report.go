package gridding

import (
	"context"

	"github.com/Sookie3mo/ASC15-Gridding/blobstore"
	"github.com/Sookie3mo/ASC15-Gridding/codec"
	"github.com/Sookie3mo/ASC15-Gridding/engine"
	"github.com/Sookie3mo/ASC15-Gridding/internal/simd"
)

// Report summarizes the last gridding pass for machine consumption.
type Report struct {
	Config     Config         `json:"config"`
	Support    int            `json:"support"`
	Oversample int            `json:"oversample"`
	WCellSize  float64        `json:"w_cell_size"`
	Kernel     string         `json:"kernel"`
	CPU        string         `json:"cpu"`
	Partitions int            `json:"partitions"`
	Executors  []string       `json:"executors"`
	Ranges     []engine.Range `json:"ranges"`

	ScratchBytes      int64   `json:"scratch_bytes"`
	PeakMemoryBytes   int64   `json:"peak_memory_bytes"`
	IOBytes           int64   `json:"io_bytes"`
	TransferInBytes   int64   `json:"transfer_in_bytes"`
	TransferOutBytes  int64   `json:"transfer_out_bytes"`
	AccumulateSeconds float64 `json:"accumulate_seconds"`
	ReduceSeconds     float64 `json:"reduce_seconds"`

	// GridOpsPerSecond counts one complex multiply-add per kernel tap.
	GridOpsPerSecond float64 `json:"grid_ops_per_second"`

	// SumReal and SumImag are the sum of all grid cells, a cheap checksum
	// for comparing runs.
	SumReal float64 `json:"sum_real"`
	SumImag float64 `json:"sum_imag"`
}

// Report returns a summary of the last gridding pass.
func (b *Benchmark) Report() Report {
	r := Report{
		Config:            b.cfg,
		Kernel:            string(simd.ActiveVariant()),
		CPU:               simd.ActiveISA().String(),
		Partitions:        b.stats.Partitions,
		Executors:         b.stats.Executors,
		Ranges:            b.stats.Ranges,
		ScratchBytes:      b.stats.ScratchBytes,
		AccumulateSeconds: b.stats.Accumulate.Seconds(),
		ReduceSeconds:     b.stats.Reduce.Seconds(),
		TransferInBytes:   b.stats.TransferIn,
		TransferOutBytes:  b.stats.TransferOut,
	}
	u := b.rc.Usage()
	r.PeakMemoryBytes, r.IOBytes = u.MemoryPeak, u.IOBytes
	if b.table != nil {
		r.Support = b.table.Support
		r.Oversample = b.table.Oversample
		r.WCellSize = b.table.WCellSize
		if s := r.AccumulateSeconds + r.ReduceSeconds; s > 0 {
			taps := float64(b.table.KernelSize() * b.table.KernelSize())
			r.GridOpsPerSecond = float64(b.stats.Samples) * taps / s
		}
	}
	if b.grid != nil {
		sum := b.grid.Sum()
		r.SumReal, r.SumImag = real(sum), imag(sum)
	}
	return r
}

// WriteReport stores the report of the last pass as indented JSON.
// If c is nil, codec.Default is used.
func (b *Benchmark) WriteReport(ctx context.Context, store blobstore.BlobStore, name string, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	return b.phase(ctx, PhaseWrite, func() error {
		data, err := codec.Pretty(c, b.Report())
		if err != nil {
			return err
		}
		return store.Put(ctx, name, data)
	})
}
