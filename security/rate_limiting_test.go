package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow_FirstAttemptStartsWindow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	limiter := NewRateLimiter(db, 10)

	mock.ExpectIncr("ratelimit:register:user:u1").SetVal(1)
	mock.ExpectExpire("ratelimit:register:user:u1", time.Minute).SetVal(true)

	ok, err := limiter.Allow(context.Background(), "user:u1")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiter_Allow_UnderLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	limiter := NewRateLimiter(db, 10)

	mock.ExpectIncr("ratelimit:register:user:u1").SetVal(10)

	ok, err := limiter.Allow(context.Background(), "user:u1")

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_Allow_OverLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	limiter := NewRateLimiter(db, 10)

	mock.ExpectIncr("ratelimit:register:user:u1").SetVal(11)

	ok, err := limiter.Allow(context.Background(), "user:u1")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateLimiter_Allow_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	limiter := NewRateLimiter(db, 10)

	mock.ExpectIncr("ratelimit:register:203.0.113.7").SetErr(errors.New("connection refused"))

	_, err := limiter.Allow(context.Background(), "203.0.113.7")

	assert.Error(t, err)
}
