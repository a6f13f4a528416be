package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("turn failed: %w", RemoteService(cause))

	assert.ErrorIs(t, err, ErrRemoteService)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestConstructors(t *testing.T) {
	testCases := []struct {
		name string
		err  *AppError
		kind error
	}{
		{name: "configuration", err: Configuration(errors.New("missing key")), kind: ErrConfiguration},
		{name: "not found", err: NotFound("SKU-999"), kind: ErrNotFound},
		{name: "loop limit", err: LoopLimitExceeded(5), kind: ErrLoopLimitExceeded},
		{name: "unknown function", err: UnknownFunction("buy_now"), kind: ErrUnknownFunction},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.kind)
			assert.NotEmpty(t, tc.err.Error())
		})
	}
	assert.Contains(t, NotFound("SKU-999").Error(), "SKU-999")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, RemoteServiceMessage, UserMessage(RemoteService(errors.New("timeout"))))
	assert.Equal(t, LoopLimitMessage, UserMessage(fmt.Errorf("wrap: %w", LoopLimitExceeded(5))))
	assert.Equal(t, SystemErrorMessage, UserMessage(errors.New("boom")))
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis("hgetall", "catalog:products", nil))

	err := WrapRedis("hgetall", "catalog:products", redis.Nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, redis.Nil)
	assert.Contains(t, err.Error(), "catalog:products")
	assert.Equal(t, RedisNotFoundMessage, UserMessage(err))

	err = WrapRedis("ping", "", errors.New("i/o timeout"))
	assert.ErrorIs(t, err, ErrRemoteService)
	assert.Contains(t, err.Error(), "redis ping")
}
