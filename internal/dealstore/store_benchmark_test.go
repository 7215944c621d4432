package dealstore

import (
	"strconv"
	"testing"
	"time"

	"github.com/mgirard/rentadesk/internal/rentab"
)

func BenchmarkWrite(b *testing.B) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore(Config{
		MaxChangeEvents: 1000,
		Clock: func() time.Time {
			return now
		},
	})
	snap := testSnapshot()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Write("deal-"+strconv.Itoa(i%100), snap); err != nil {
			b.Fatalf("write failed at i=%d: %v", i, err)
		}
	}
}

func BenchmarkReadWithSubscribers(b *testing.B) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStore(Config{
		Clock: func() time.Time {
			return now
		},
	})
	if _, err := s.Write("deal-1", testSnapshot()); err != nil {
		b.Fatalf("seed write: %v", err)
	}
	for i := 0; i < 8; i++ {
		unsub, err := s.Subscribe("deal-1", func(*rentab.Snapshot) {})
		if err != nil {
			b.Fatalf("subscribe %d: %v", i, err)
		}
		defer unsub()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Read("deal-1"); err != nil {
			b.Fatalf("read failed at i=%d: %v", i, err)
		}
	}
}
