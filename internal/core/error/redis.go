package errx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis classifies a failed Redis operation on key. A missing key (redis.Nil)
// is NotFound; anything else means Redis itself could not serve the request.
func WrapRedis(op, key string, err error) error {
	if err == nil {
		return nil
	}

	cause := err
	if key != "" {
		cause = fmt.Errorf("redis %s %q: %w", op, key, err)
	} else if op != "" {
		cause = fmt.Errorf("redis %s: %w", op, err)
	}

	if errors.Is(err, redis.Nil) {
		return New(ErrNotFound, cause, http.StatusNotFound, RedisNotFoundMessage)
	}
	return New(ErrRemoteService, cause, http.StatusBadGateway, RedisErrorMessage)
}
