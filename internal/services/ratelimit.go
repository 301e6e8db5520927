package services

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/url"
	"sync"
	"time"
)

// RateLimiter 控制对外部平台的请求频率
//
// 由每秒调用数折算出最小调用间隔，距上次调用不足间隔时睡够剩余
// 时间。可被多个 goroutine 共用。
type RateLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastCall    time.Time
}

// NewRateLimiter callsPerSecond <= 0 表示不限速
func NewRateLimiter(callsPerSecond float64) *RateLimiter {
	var interval time.Duration
	if callsPerSecond > 0 {
		interval = time.Duration(float64(time.Second) / callsPerSecond)
	}
	return &RateLimiter{minInterval: interval}
}

// Wait 必要时阻塞到允许下一次调用为止
func (r *RateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.minInterval <= 0 {
		return
	}
	if !r.lastCall.IsZero() {
		if elapsed := time.Since(r.lastCall); elapsed < r.minInterval {
			time.Sleep(r.minInterval - elapsed)
		}
	}
	r.lastCall = time.Now()
}

// httpStatusError 外部平台返回的非 2xx 状态
type httpStatusError struct {
	StatusCode int
	URL        string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// isTransient 判断错误是否值得重试
// 只重试超时、连接失败和 429/5xx；校验和鉴权类失败不重试
func isTransient(err error) bool {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == 429 || statusErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// retryOnFailure 有界重试 + 指数退避，仅针对瞬时错误
func retryOnFailure(maxAttempts int, minWait, maxWait time.Duration, fn func() error) error {
	var err error
	wait := minWait
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !isTransient(err) || attempt == maxAttempts {
			return err
		}
		log.Printf("Transient failure (attempt %d/%d), retrying in %s: %v", attempt, maxAttempts, wait, err)
		time.Sleep(wait)
		wait *= 2
		if wait > maxWait {
			wait = maxWait
		}
	}
	return err
}
