package ratelimiter

import (
	"testing"
	"time"
)

func TestFixedWindowLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewFixedWindowLimiter(2, 5*time.Second)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if ok, _ := rl.Allow("1.1.1.1"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	now = now.Add(time.Second)
	ok, retry := rl.Allow("1.1.1.1")
	if ok {
		t.Fatal("third request in window should be limited")
	}
	if retry != 4*time.Second {
		t.Fatalf("retry after = %v, want 4s", retry)
	}

	if ok, _ := rl.Allow("2.2.2.2"); !ok {
		t.Fatal("other clients have their own window")
	}

	now = now.Add(4 * time.Second)
	if ok, _ := rl.Allow("1.1.1.1"); !ok {
		t.Fatal("window should have reset")
	}
}
