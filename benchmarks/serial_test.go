package benchmarks

import (
	"fmt"
	"testing"

	"github.com/randalmurphal/facets/pkg/facets/identity"
	"github.com/randalmurphal/facets/pkg/facets/serial"
)

// buildGraph creates n records that all reference one shared owner.
func buildGraph(n int) map[string]any {
	owner := map[string]any{"name": "owner", "tags": serial.NewSet("a", "b")}
	records := make([]any, n)
	index := serial.NewMap()
	for i := range records {
		rec := map[string]any{
			"id":    fmt.Sprintf("rec-%d", i),
			"value": float64(i),
			"owner": owner,
		}
		records[i] = rec
		index.Set(i, rec)
	}
	return map[string]any{"owner": owner, "records": records, "index": index}
}

func benchmarkMarshal(b *testing.B, n int) {
	graph := buildGraph(n)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = serial.Marshal(graph)
	}
}

func benchmarkUnmarshal(b *testing.B, n int) {
	data, err := serial.Marshal(buildGraph(n))
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = serial.Unmarshal(data)
	}
}

// BenchmarkMarshal_10 encodes a graph of 10 records.
func BenchmarkMarshal_10(b *testing.B) { benchmarkMarshal(b, 10) }

// BenchmarkMarshal_1000 encodes a graph of 1000 records.
func BenchmarkMarshal_1000(b *testing.B) { benchmarkMarshal(b, 1000) }

// BenchmarkUnmarshal_10 decodes a graph of 10 records.
func BenchmarkUnmarshal_10(b *testing.B) { benchmarkUnmarshal(b, 10) }

// BenchmarkUnmarshal_1000 decodes a graph of 1000 records.
func BenchmarkUnmarshal_1000(b *testing.B) { benchmarkUnmarshal(b, 1000) }

// BenchmarkIdentity_New generates identifiers from the shared generator.
func BenchmarkIdentity_New(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = identity.New()
	}
}

// BenchmarkIdentity_Parallel generates identifiers from many goroutines.
func BenchmarkIdentity_Parallel(b *testing.B) {
	g := identity.NewGenerator()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = g.New()
		}
	})
}
