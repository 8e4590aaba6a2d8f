package server

import (
	"testing"
	"time"
)

func TestRateLimiterEnforcesWindowLimit(t *testing.T) {
	limiter := newRateLimiter(2, time.Minute)

	for i := 0; i < 2; i++ {
		if !limiter.Allow("account-1") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if limiter.Allow("account-1") {
		t.Fatal("third request in the window should be rejected")
	}

	// Other keys have their own budget.
	if !limiter.Allow("account-2") {
		t.Fatal("separate key should be allowed")
	}

	if limiter.Allow("") {
		t.Fatal("empty key should be rejected")
	}
}

func TestRateLimiterResetsAfterWindow(t *testing.T) {
	limiter := newRateLimiter(1, time.Nanosecond)

	if !limiter.Allow("account-1") {
		t.Fatal("first request should be allowed")
	}
	time.Sleep(time.Millisecond)
	if !limiter.Allow("account-1") {
		t.Fatal("request in a fresh window should be allowed")
	}
}
