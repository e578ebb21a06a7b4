package codec

import (
	"testing"
)

func benchReport() testReport {
	return testReport{
		Phase:      "gridding",
		Samples:    160000,
		Seconds:    0.75,
		Partitions: []int{40000, 40000, 40000, 40000},
		Extra:      map[string]float64{"accumulate": 0.7, "reduce": 0.05},
	}
}

func benchmarkMarshal(b *testing.B, c Codec) {
	v := benchReport()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := c.Marshal(v); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkUnmarshal(b *testing.B, c Codec) {
	data, err := c.Marshal(benchReport())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	for b.Loop() {
		var out testReport
		if err := c.Unmarshal(data, &out); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarshal_JSON(b *testing.B)     { benchmarkMarshal(b, JSON{}) }
func BenchmarkMarshal_GoJSON(b *testing.B)   { benchmarkMarshal(b, GoJSON{}) }
func BenchmarkUnmarshal_JSON(b *testing.B)   { benchmarkUnmarshal(b, JSON{}) }
func BenchmarkUnmarshal_GoJSON(b *testing.B) { benchmarkUnmarshal(b, GoJSON{}) }
