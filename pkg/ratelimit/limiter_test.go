package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/smartclaim/backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:       true,
		WindowSeconds: 60,
		DefaultLimit:  3,
		RedisPrefix:   "rl",
	}
}

func TestNewLimiter_Defaults(t *testing.T) {
	client, _ := redismock.NewClientMock()

	limiter := NewLimiter(client, config.RateLimitConfig{Enabled: true, DefaultLimit: 10})

	assert.Equal(t, 60, limiter.cfg.WindowSeconds)
	assert.Equal(t, "rl", limiter.cfg.RedisPrefix)
	assert.NotNil(t, limiter.now)
}

func TestAllow_DisabledBypassesRedis(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cfg := testConfig()
	cfg.Enabled = false

	limiter := NewLimiter(client, cfg)

	result, err := limiter.Allow(context.Background(), "/api/v1/claims", "user-1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_FirstRequestSetsExpiry(t *testing.T) {
	client, mock := redismock.NewClientMock()
	fixed := time.Date(2026, 6, 15, 12, 0, 30, 0, time.UTC)

	limiter := NewLimiter(client, testConfig()).WithNow(func() time.Time { return fixed })

	key := "rl:/api/v1/claims:user-1:29692080"
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)

	result, err := limiter.Allow(context.Background(), "/api/v1/claims", "user-1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, int64(1), result.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_OverLimitRejectedWithRetry(t *testing.T) {
	client, mock := redismock.NewClientMock()
	fixed := time.Date(2026, 6, 15, 12, 0, 30, 0, time.UTC)

	limiter := NewLimiter(client, testConfig()).WithNow(func() time.Time { return fixed })

	key := "rl:/api/v1/claims:user-1:29692080"
	mock.ExpectIncr(key).SetVal(4)

	result, err := limiter.Allow(context.Background(), "/api/v1/claims", "user-1")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, int64(4), result.Count)
	// Window closes at 12:01:00, 30s after the fixed clock
	assert.Equal(t, int64(30000), result.RetryMsec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_UnderLimitAllowed(t *testing.T) {
	client, mock := redismock.NewClientMock()
	fixed := time.Date(2026, 6, 15, 12, 0, 30, 0, time.UTC)

	limiter := NewLimiter(client, testConfig()).WithNow(func() time.Time { return fixed })

	key := "rl:/api/v1/claims:user-1:29692080"
	mock.ExpectIncr(key).SetVal(2)

	result, err := limiter.Allow(context.Background(), "/api/v1/claims", "user-1")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
