// Package ratelimit implements a fixed-window per-client request limiter.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

const window = time.Minute

// Limiter counts requests per client in one-minute windows.
type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	now          func() time.Time

	requestsPerMinute int
	cleanupInterval   time.Duration
	methods           map[string]struct{}
	rejected          int64
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
	// Methods limits only these HTTP methods; empty limits every request.
	Methods []string
	// Now replaces time.Now.
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter starts the background cleanup; call Stop to end it.
func NewLimiter(config Config) *Limiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	rl := &Limiter{
		clients:           make(map[string]*clientInfo),
		stopCleanup:       make(chan struct{}),
		now:               config.Now,
		requestsPerMinute: config.RequestsPerMinute,
		cleanupInterval:   config.CleanupInterval,
	}
	if len(config.Methods) > 0 {
		rl.methods = make(map[string]struct{}, len(config.Methods))
		for _, m := range config.Methods {
			rl.methods[m] = struct{}{}
		}
	}
	go rl.startCleanup()
	return rl
}

// Allow records a request from clientIP and reports whether it is within
// the limit.
func (rl *Limiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, exists := rl.clients[clientIP]
	if !exists || now.Sub(client.lastRequest) > window {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	client.requests++
	client.lastRequest = now
	if client.requests > rl.requestsPerMinute {
		rl.rejected++
		return false
	}
	return true
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes
func (rl *Limiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	removed := 0
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Rejected returns how many requests were refused since start.
func (rl *Limiter) Rejected() int64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.rejected
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *Limiter) limits(method string) bool {
	if rl.methods == nil {
		return true
	}
	_, ok := rl.methods[method]
	return ok
}

// Middleware refuses over-limit requests with 429. onLimit may replace the
// default response.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.limits(r.Method) && !rl.Allow(extractIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
