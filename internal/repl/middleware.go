package repl

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientTTL is how long an idle client keeps its limiter.
const clientTTL = 10 * time.Minute

// RateLimit creates a per-client rate limiting middleware.
func RateLimit(rps, burst int) gin.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
		swept   time.Time
	)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		if now.Sub(swept) > clientTTL {
			for key, cl := range clients {
				if now.Sub(cl.lastSeen) > clientTTL {
					delete(clients, key)
				}
			}
			swept = now
		}
		cl, exists := clients[ip]
		if !exists {
			cl = &client{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		limiter := cl.limiter
		mu.Unlock()

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// OriginPolicy decides which browser origins may reach the server.
// Requests without an Origin header come from non-browser clients and are
// always allowed, as are same-origin requests.
type OriginPolicy struct {
	allowed map[string]struct{}
}

// NewOriginPolicy allows the listed origins in addition to same-origin.
func NewOriginPolicy(origins []string) OriginPolicy {
	p := OriginPolicy{allowed: make(map[string]struct{}, len(origins))}
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			p.allowed[strings.ToLower(o)] = struct{}{}
		}
	}
	return p
}

// Allows reports whether origin is on the allow-list.
func (p OriginPolicy) Allows(origin string) bool {
	_, ok := p.allowed[strings.ToLower(origin)]
	return ok
}

// Check reports whether r may be served.
func (p OriginPolicy) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host != "" && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return p.Allows(origin)
}

// OriginGuard rejects requests from browser origins the policy does not
// allow, including simple requests that skip the CORS preflight.
func OriginGuard(policy OriginPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.Check(c.Request) {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "origin not allowed",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CORS answers preflights for the allowed origins.
func CORS(policy OriginPolicy) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc: policy.Allows,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Accept", "Origin"},
		MaxAge:          12 * time.Hour,
	})
}
