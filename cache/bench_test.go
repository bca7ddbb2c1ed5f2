package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// BenchmarkMemoryStore_Get_Hit measures cache hit performance.
func BenchmarkMemoryStore_Get_Hit(b *testing.B) {
	s := NewMemoryStore(DefaultPolicy())
	_ = s.Set("health_ollama", "v", time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Get("health_ollama")
	}
}

// BenchmarkMemoryStore_Get_Miss measures cache miss performance.
func BenchmarkMemoryStore_Get_Miss(b *testing.B) {
	s := NewMemoryStore(DefaultPolicy())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Get("health_missing")
	}
}

// BenchmarkMemoryStore_Set measures write performance.
func BenchmarkMemoryStore_Set(b *testing.B) {
	s := NewMemoryStore(DefaultPolicy())
	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("health_%d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Set(keys[i%len(keys)], i, 0)
	}
}

// BenchmarkMemoryStore_Concurrent_ReadHeavy measures contention on the single lock.
func BenchmarkMemoryStore_Concurrent_ReadHeavy(b *testing.B) {
	s := NewMemoryStore(DefaultPolicy())
	for i := 0; i < 100; i++ {
		_ = s.Set(fmt.Sprintf("health_%d", i), i, time.Hour)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("health_%d", i%100)
			if i%10 == 0 {
				_ = s.Set(key, i, time.Hour)
			} else {
				_, _ = s.Get(key)
			}
			i++
		}
	})
}

// BenchmarkMemoryStore_SweepExpired measures a sweep over a mixed store.
func BenchmarkMemoryStore_SweepExpired(b *testing.B) {
	now := time.Now()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		s := NewMemoryStore(DefaultPolicy(), WithClock(func() time.Time { return now }))
		for j := 0; j < 1000; j++ {
			_ = s.Set(fmt.Sprintf("health_%d", j), j, time.Duration(j%2+1)*time.Second)
		}
		b.StartTimer()
		s.SweepExpired(now.Add(1500 * time.Millisecond))
	}
}

// BenchmarkAccessor_GetOrFetch_Hit measures the accessor fast path.
func BenchmarkAccessor_GetOrFetch_Hit(b *testing.B) {
	a := NewAccessor(NewMemoryStore(DefaultPolicy()))
	ctx := context.Background()
	fetch := func(context.Context) (any, error) { return "v", nil }
	_, _ = a.GetOrFetch(ctx, "health_ollama", time.Hour, fetch)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.GetOrFetch(ctx, "health_ollama", time.Hour, fetch)
	}
}

// BenchmarkDefaultKeyer_Key measures key derivation.
func BenchmarkDefaultKeyer_Key(b *testing.B) {
	k := NewDefaultKeyer()
	filters := map[string]string{"category": "ai", "layer": "core"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = k.Key("services", filters)
	}
}

// BenchmarkValidateKey measures key validation.
func BenchmarkValidateKey(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = ValidateKey("health_open_webui")
	}
}
