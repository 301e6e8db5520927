package services

import (
	"errors"
	"testing"
	"time"
)

// 限速器保证两次调用之间至少间隔 1/callsPerSecond 秒
func TestRateLimiterSpacesCalls(t *testing.T) {
	limiter := NewRateLimiter(20) // 50ms 间隔

	start := time.Now()
	limiter.Wait()
	limiter.Wait()
	limiter.Wait()
	elapsed := time.Since(start)

	// 第一次不等待，后两次各等 50ms
	if elapsed < 90*time.Millisecond {
		t.Errorf("3 calls finished in %s, expected at least ~100ms", elapsed)
	}
}

func TestRateLimiterUnlimited(t *testing.T) {
	limiter := NewRateLimiter(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		limiter.Wait()
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("unlimited limiter slept: %s", elapsed)
	}
}

// 瞬时错误（429/5xx/超时）重试，非瞬时错误立刻放弃
func TestIsTransient(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&httpStatusError{StatusCode: 429, URL: "https://example.com"}, true},
		{&httpStatusError{StatusCode: 503, URL: "https://example.com"}, true},
		{&httpStatusError{StatusCode: 404, URL: "https://example.com"}, false},
		{&httpStatusError{StatusCode: 401, URL: "https://example.com"}, false},
		{errors.New("validation failed"), false},
	}
	for _, c := range cases {
		if got := isTransient(c.err); got != c.want {
			t.Errorf("isTransient(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := retryOnFailure(3, time.Millisecond, 4*time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return &httpStatusError{StatusCode: 500, URL: "https://example.com"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryGivesUpOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := &httpStatusError{StatusCode: 404, URL: "https://example.com"}
	err := retryOnFailure(3, time.Millisecond, 4*time.Millisecond, func() error {
		attempts++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected the permanent error back, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("permanent error must not be retried, got %d attempts", attempts)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := retryOnFailure(3, time.Millisecond, 4*time.Millisecond, func() error {
		attempts++
		return &httpStatusError{StatusCode: 429, URL: "https://example.com"}
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}
