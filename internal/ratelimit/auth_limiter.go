package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"

	"github.com/smallbiznis/livescan/internal/config"
)

const (
	keyAuthLogin = "auth:login:%s"
	keyAuthReset = "auth:reset:%s"
)

// AuthLimiter throttles credential guessing on the login and password
// reset endpoints, keyed by client IP. A nil limiter allows everything,
// so callers never need to branch on whether limiting is configured.
type AuthLimiter struct {
	enabled bool

	bucket *TokenBucket

	loginRate  float64
	loginBurst int
	resetRate  float64
	resetBurst int
}

func NewAuthLimiter(cfg config.Config) (*AuthLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.LoginRate <= 0 || limitCfg.LoginBurst <= 0 {
		return nil, errors.New("login rate limit must be positive")
	}
	if limitCfg.ResetRate <= 0 || limitCfg.ResetBurst <= 0 {
		return nil, errors.New("reset rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})

	return &AuthLimiter{
		enabled:    true,
		bucket:     NewTokenBucket(client),
		loginRate:  limitCfg.LoginRate,
		loginBurst: limitCfg.LoginBurst,
		resetRate:  limitCfg.ResetRate,
		resetBurst: limitCfg.ResetBurst,
	}, nil
}

func (l *AuthLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *AuthLimiter) AllowLogin(ctx context.Context, clientIP string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAuthLogin, strings.TrimSpace(clientIP)), l.loginRate, l.loginBurst)
}

func (l *AuthLimiter) AllowPasswordReset(ctx context.Context, clientIP string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	return l.bucket.Allow(ctx, fmt.Sprintf(keyAuthReset, strings.TrimSpace(clientIP)), l.resetRate, l.resetBurst)
}
