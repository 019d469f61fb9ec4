// File: internal/concurrency/stack_bench_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"sync/atomic"
	"testing"
)

// BenchmarkStackPushPop measures a contended pop/push cycle over a fixed
// index population.
func BenchmarkStackPushPop(b *testing.B) {
	const population = 1024
	links := make(sliceLinks, population)
	s := NewStack(links)
	for i := uint32(0); i < population; i++ {
		s.Push(i)
	}
	var misses atomic.Int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			idx, ok := s.Pop()
			if !ok {
				misses.Add(1)
				continue
			}
			s.Push(idx)
		}
	})
	b.ReportMetric(float64(s.Retries())/float64(b.N), "retries/op")
	b.ReportMetric(float64(misses.Load())/float64(b.N), "misses/op")
}
