package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ServiceLimiter rate-limits outbound calls per upstream service so a burst
// of searches cannot starve the booking and payment collaborators.
type ServiceLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

func NewServiceLimiter(config Config) *ServiceLimiter {
	return &ServiceLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func NewServiceLimiterWithDefaults() *ServiceLimiter {
	return NewServiceLimiter(DefaultConfig())
}

func (s *ServiceLimiter) GetLimiter(service string) *rate.Limiter {
	s.mu.RLock()
	limiter, exists := s.limiters[service]
	s.mu.RUnlock()

	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, exists = s.limiters[service]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(s.defaults.RequestsPerSecond), s.defaults.BurstSize)
	s.limiters[service] = limiter
	return limiter
}

func (s *ServiceLimiter) SetServiceLimit(service string, rps float64, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.limiters[service] = rate.NewLimiter(rate.Limit(rps), burst)
}

func (s *ServiceLimiter) Wait(ctx context.Context, service string) error {
	return s.GetLimiter(service).Wait(ctx)
}
