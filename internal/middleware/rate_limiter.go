package middleware

import (
	"net/http"
	"sync"
	"time"

	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	ips  map[string]*visitor
	mu   sync.Mutex
	r    rate.Limit
	b    int
	stop chan struct{}
	once sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter starts a sweeper that forgets idle IPs; call Stop to end it.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		ips:  make(map[string]*visitor),
		r:    r,
		b:    b,
		stop: make(chan struct{}),
	}
	go i.cleanupVisitors()
	return i
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, exists := i.ips[ip]
	if !exists {
		// First request from this IP: give it a full bucket.
		limiter := rate.NewLimiter(i.r, i.b)
		i.ips[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	// Known IP: refresh lastSeen so the sweeper keeps it.
	v.lastSeen = time.Now()
	return v.limiter
}

func (i *IPRateLimiter) Stop() {
	i.once.Do(func() { close(i.stop) })
}

func (i *IPRateLimiter) cleanupVisitors() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-i.stop:
			return
		case <-ticker.C:
			i.sweep(time.Now())
		}
	}
}

// sweep forgets IPs idle for longer than visitorTTL.
func (i *IPRateLimiter) sweep(now time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for ip, v := range i.ips {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(i.ips, ip)
		}
	}
}

func (i *IPRateLimiter) size() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}

// RateLimitMiddleware answers 429 once an IP has spent its burst.
// The bucket refills at r tokens per second, so a well-behaved client that
// paces itself never sees a 429, while a script hammering the API stops
// after b requests.
func RateLimitMiddleware(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, utils.Response{
				Success: false,
				Message: "Too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
