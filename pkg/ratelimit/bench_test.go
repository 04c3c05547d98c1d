package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func BenchmarkMemoryLimiter_Allow(b *testing.B) {
	for _, strategy := range []string{StrategyTokenBucket, StrategySlidingWindow} {
		b.Run(strategy, func(b *testing.B) {
			opts := DefaultOptions()
			opts.Strategy = strategy
			opts.Requests = 1 << 30
			opts.Window = time.Minute
			l := NewMemoryLimiter(opts)
			defer l.Close()

			ctx := context.Background()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = l.Allow(ctx, "client")
			}
		})
	}
}

func BenchmarkMemoryLimiter_Allow_Parallel(b *testing.B) {
	opts := DefaultOptions()
	opts.Requests = 1 << 30
	l := NewMemoryLimiter(opts)
	defer l.Close()

	ctx := context.Background()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = l.Allow(ctx, fmt.Sprintf("client-%d", i%64))
			i++
		}
	})
}
