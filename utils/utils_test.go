package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_PassesThroughWhenClosed(t *testing.T) {
	cb := NewCircuitBreaker("test")

	result, err := cb.Execute(context.Background(), func() (any, error) {
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_PropagatesFailures(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("smtp unreachable")

	_, err := cb.Execute(context.Background(), func() (any, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("smtp unreachable")

	for i := 0; i < 5; i++ {
		cb.Execute(context.Background(), func() (any, error) {
			return nil, boom
		})
	}

	assert.Equal(t, BreakerOpen, cb.State())

	_, err := cb.Execute(context.Background(), func() (any, error) {
		t.Fatal("request must not run while the breaker is open")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrBreakerOpen)
}

func TestCircuitBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker("test")
	boom := errors.New("smtp unreachable")

	for i := 0; i < 4; i++ {
		cb.Execute(context.Background(), func() (any, error) {
			return nil, boom
		})
	}
	cb.Execute(context.Background(), func() (any, error) {
		return nil, nil
	})
	cb.Execute(context.Background(), func() (any, error) {
		return nil, boom
	})

	assert.Equal(t, BreakerClosed, cb.State())
}

func TestCircuitBreaker_RespectsCancelledContext(t *testing.T) {
	cb := NewCircuitBreaker("test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cb.Execute(ctx, func() (any, error) {
		t.Fatal("request must not run with a cancelled context")
		return nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisHealthCheck_Success(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	mock.ExpectPing().SetVal("PONG")

	assert.NoError(t, RedisHealthCheck(db))
}

func TestRedisHealthCheck_Failure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	mock.ExpectPing().SetErr(errors.New("connection refused"))

	assert.Error(t, RedisHealthCheck(db))
}

func TestRedisHealthCheck_Timeout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	mock.ExpectPing().SetErr(context.DeadlineExceeded)

	start := time.Now()
	err := RedisHealthCheck(db)

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
