package ratelimit

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(mr.Addr(), "", "", 3, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}

	for i := 0; i < 3; i++ {
		if !limiter.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if limiter.Allow("1.2.3.4") {
		t.Fatal("fourth request in the window should be denied")
	}
	// Another key has its own window.
	if !limiter.Allow("5.6.7.8") {
		t.Fatal("a different key should not be affected")
	}
}

func TestFixedWindowLimiterFailsClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(mr.Addr(), "", "", 3, time.Minute)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	mr.Close()
	if limiter.Allow("1.2.3.4") {
		t.Fatal("limiter should deny when redis is unreachable")
	}
}

func TestFixedWindowLimiterValidation(t *testing.T) {
	if _, err := NewRedisFixedWindowLimiter("localhost:6379", "", "", 0, time.Minute); err == nil {
		t.Fatal("zero limit should be rejected")
	}
	if _, err := NewRedisFixedWindowLimiter("", "", "", 3, time.Minute); err == nil {
		t.Fatal("empty addr should be rejected")
	}
}
