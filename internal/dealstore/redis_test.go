package dealstore

import (
	"os"
	"testing"
	"time"
)

// Redis tests run only when a reachable instance is provided, e.g.
// RENTADESK_TEST_REDIS=localhost:6379 go test ./internal/dealstore
func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("RENTADESK_TEST_REDIS")
	if addr == "" {
		t.Skip("RENTADESK_TEST_REDIS not set")
	}
	return addr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := redisAddr(t)
	prefix := "rentadesk-test:" + time.Now().UTC().Format("150405.000000000") + ":"

	s, err := NewRedisStore(addr, Config{KeyPrefix: prefix})
	if err != nil {
		t.Fatalf("new redis store: %v", err)
	}
	t.Cleanup(func() {
		s.Clear("deal-1")
		s.Close()
	})

	written, err := s.Write("deal-1", testSnapshot())
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	reopened, err := NewRedisStore(addr, Config{KeyPrefix: prefix})
	if err != nil {
		t.Fatalf("reopen redis store: %v", err)
	}
	t.Cleanup(func() { reopened.Close() })

	got, err := reopened.Read("deal-1")
	if err != nil {
		t.Fatalf("read after reopen: %v", err)
	}
	if got == nil {
		t.Fatal("snapshot not visible from second store")
	}
	if got.Scenarios.Base.TotalCost != written.Scenarios.Base.TotalCost {
		t.Fatalf("total cost drifted through redis: got %v want %v",
			got.Scenarios.Base.TotalCost, written.Scenarios.Base.TotalCost)
	}

	if err := s.Clear("deal-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	third, err := NewRedisStore(addr, Config{KeyPrefix: prefix})
	if err != nil {
		t.Fatalf("third open: %v", err)
	}
	t.Cleanup(func() { third.Close() })
	if got, _ := third.Read("deal-1"); got != nil {
		t.Fatalf("cleared snapshot still in redis: %+v", got)
	}
}
